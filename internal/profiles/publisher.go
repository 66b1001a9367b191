package profiles

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/techwomen-moldova/mentordesk/internal/common"
	"github.com/techwomen-moldova/mentordesk/internal/logging"
	"github.com/techwomen-moldova/mentordesk/pkg/schema"
)

var (
	// ErrMissingFields rejects an add without name or email.
	ErrMissingFields = common.Errorf(common.ErrValidation, "Profile name and email are required")

	errMissingProfileRole = common.Errorf(common.ErrBadRequest, "Profile and role are required")
	errInvalidRole        = common.Errorf(common.ErrBadRequest, "Role must be mentor or mentee")
)

// Publisher applies add/update/delete actions to a Repository.
type Publisher struct {
	repo Repository
	log  logging.Logger
	now  func() time.Time
}

// NewPublisher returns a Publisher writing to repo.
func NewPublisher(repo Repository, log logging.Logger) *Publisher {
	return &Publisher{repo: repo, log: log, now: time.Now}
}

// Repository exposes the backing store for read-only endpoints.
func (p *Publisher) Repository() Repository {
	return p.repo
}

// Apply validates req and dispatches on its action (add when empty).
func (p *Publisher) Apply(ctx context.Context, req schema.PublishRequest) (*schema.PublishResult, error) {
	if req.Profile == nil || req.Role == "" {
		return nil, errMissingProfileRole
	}
	role, ok := schema.ParseRole(string(req.Role))
	if !ok {
		return nil, errInvalidRole
	}

	action := req.Action
	if action == "" {
		action = schema.ActionAdd
	}

	switch action {
	case schema.ActionAdd:
		return p.add(ctx, role, req.Profile)
	case schema.ActionUpdate:
		return p.update(ctx, role, req.Profile)
	case schema.ActionDelete:
		return p.delete(ctx, role, req.Profile)
	default:
		return nil, common.Errorf(common.ErrBadRequest, "Unsupported action: %s", action)
	}
}

func (p *Publisher) add(ctx context.Context, role schema.Role, fields map[string]any) (*schema.PublishResult, error) {
	profile, err := schema.ProfileFromFields(fields)
	if err != nil {
		return nil, common.Wrap(common.ErrValidation, err, "Invalid profile")
	}
	profile.Name = strings.TrimSpace(profile.Name)
	profile.Email = strings.TrimSpace(profile.Email)
	if profile.Name == "" || profile.Email == "" {
		return nil, ErrMissingFields
	}

	ApplyDefaults(&profile, p.now())

	total, err := p.repo.Add(ctx, role, profile)
	if err != nil {
		return nil, err
	}
	p.log.Info(ctx, "profile added", "role", role, "id", profile.ID, "name", profile.Name, "total", total)

	return &schema.PublishResult{
		Success:       true,
		Message:       "Profile added successfully",
		Profile:       &profile,
		TotalProfiles: &total,
	}, nil
}

func (p *Publisher) update(ctx context.Context, role schema.Role, fields map[string]any) (*schema.PublishResult, error) {
	id := profileID(fields)
	existing, err := p.repo.Get(ctx, role, id)
	if err != nil {
		return nil, err
	}

	merged, err := merge(existing, fields)
	if err != nil {
		return nil, common.Wrap(common.ErrValidation, err, "Invalid profile")
	}
	merged.ID = existing.ID
	merged.DateAdded = existing.DateAdded
	merged.DateUpdated = Date(p.now())

	if err := p.repo.Update(ctx, role, merged); err != nil {
		return nil, err
	}
	p.log.Info(ctx, "profile updated", "role", role, "id", merged.ID, "name", merged.Name)

	return &schema.PublishResult{
		Success: true,
		Message: "Profile updated successfully",
		Profile: &merged,
	}, nil
}

func (p *Publisher) delete(ctx context.Context, role schema.Role, fields map[string]any) (*schema.PublishResult, error) {
	id := profileID(fields)
	removed, total, err := p.repo.Delete(ctx, role, id)
	if err != nil {
		return nil, err
	}
	p.log.Info(ctx, "profile deleted", "role", role, "id", removed.ID, "name", removed.Name, "total", total)

	return &schema.PublishResult{
		Success:        true,
		Message:        "Profile deleted successfully",
		DeletedProfile: &removed,
		TotalProfiles:  &total,
	}, nil
}

// merge overlays the supplied fields on top of existing (shallow merge).
func merge(existing schema.Profile, fields map[string]any) (schema.Profile, error) {
	base := existing.Fields()
	for k, v := range fields {
		base[k] = v
	}
	out, err := schema.ProfileFromFields(base)
	if err != nil {
		return existing, err
	}
	return out, nil
}

// profileID reads the id field, accepting a number as well as a string.
func profileID(fields map[string]any) string {
	switch v := fields["id"].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
