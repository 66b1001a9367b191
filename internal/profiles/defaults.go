package profiles

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/techwomen-moldova/mentordesk/pkg/schema"
)

const (
	// PlaceholderImage is shown for profiles submitted without a photo.
	PlaceholderImage = "/assets/images/defaults/profile-placeholder.jpg"
	// DefaultStatus is the status stamped on newly published profiles.
	DefaultStatus = "approved"

	dateLayout = "2006-01-02"
)

// NewID returns "<unix millis>-<9 random chars>".
func NewID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%d-%s", now.UnixMilli(), random[:9])
}

// SubmissionID returns the id of a profile derived from a submission:
// "<role>-<unix millis>".
func SubmissionID(role schema.Role, now time.Time) string {
	return fmt.Sprintf("%s-%d", role, now.UnixMilli())
}

// Date formats t the way collection files store dates.
func Date(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// ApplyDefaults fills every unset optional field and stamps dateUpdated.
func ApplyDefaults(p *schema.Profile, now time.Time) {
	if p.ID == "" {
		p.ID = NewID(now)
	}
	if p.Year == "" {
		p.Year = strconv.Itoa(now.UTC().Year())
	}
	if p.Image == "" {
		p.Image = PlaceholderImage
	}
	if p.Status == "" {
		p.Status = DefaultStatus
	}
	if p.DateAdded == "" {
		p.DateAdded = Date(now)
	}
	p.DateUpdated = Date(now)
}

// FromSubmission builds the profile an approval publishes.
func FromSubmission(sub schema.Submission, role schema.Role, now time.Time) schema.Profile {
	bio := sub.FirstField("bio", "message")
	p := schema.Profile{
		ID:           SubmissionID(role, now),
		Name:         sub.Field("name"),
		Title:        sub.Field("title"),
		Company:      sub.Field("company"),
		Year:         sub.Field("year"),
		Domain:       sub.Field("domain"),
		LinkedIn:     sub.Field("linkedin"),
		Email:        sub.Field("email"),
		Bio:          bio,
		Image:        sub.Field("image"),
		SubmissionID: sub.ID,
	}
	if !sub.CreatedAt.IsZero() {
		p.SubmittedAt = sub.CreatedAt.UTC().Format(time.RFC3339)
	}
	if role == schema.RoleMentee {
		p.Story = sub.FirstField("story", "bio", "message")
		p.Mentor = sub.Field("mentor")
	}
	ApplyDefaults(&p, now)
	return p
}
