// Package profiles publishes approved mentor and mentee profiles into their
// collections and owns every write to them.
package profiles

import (
	"context"
	"strings"

	"github.com/techwomen-moldova/mentordesk/internal/common"
	"github.com/techwomen-moldova/mentordesk/pkg/schema"
)

var (
	// ErrProfileNotFound is returned by update and delete for an unknown id.
	ErrProfileNotFound = common.Errorf(common.ErrNotFound, "Profile not found")
	// ErrDuplicateEmail rejects an add whose email is already in the collection.
	ErrDuplicateEmail = common.Errorf(common.ErrValidation, "Profile with this email already exists")
)

// Repository stores the two profile collections. How a collection is
// persisted (whole-file rewrite, log, database) is up to the implementation.
type Repository interface {
	// List returns the collection in insertion order.
	List(ctx context.Context, role schema.Role) ([]schema.Profile, error)
	// Get returns the profile with id or ErrProfileNotFound.
	Get(ctx context.Context, role schema.Role, id string) (schema.Profile, error)
	// Add appends p and returns the new collection size. It returns
	// ErrDuplicateEmail when another profile has p.Email (case-insensitive);
	// the check and the append are one step.
	Add(ctx context.Context, role schema.Role, p schema.Profile) (int, error)
	// Update replaces the profile sharing p.ID or returns ErrProfileNotFound.
	Update(ctx context.Context, role schema.Role, p schema.Profile) error
	// Delete removes the profile with id and returns it with the new size.
	Delete(ctx context.Context, role schema.Role, id string) (schema.Profile, int, error)
}

func indexOf(list []schema.Profile, id string) int {
	for i, p := range list {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// emailTaken reports whether email is already used in list. A blank email
// never matches.
func emailTaken(list []schema.Profile, email string) bool {
	if email == "" {
		return false
	}
	for _, p := range list {
		if strings.EqualFold(strings.TrimSpace(p.Email), email) {
			return true
		}
	}
	return false
}
