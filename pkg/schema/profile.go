package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Role selects the collection a profile belongs to.
type Role string

const (
	RoleMentor Role = "mentor"
	RoleMentee Role = "mentee"
)

// ParseRole accepts "mentor"/"mentee" in any case.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleMentor:
		return RoleMentor, true
	case RoleMentee:
		return RoleMentee, true
	}
	return "", false
}

// FileName is the collection file backing the role.
func (r Role) FileName() string {
	return fmt.Sprintf("%ss.json", r)
}

// Profile is the canonical published record for a mentor or a mentee.
type Profile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Year        string `json:"year"`
	Domain      string `json:"domain"`
	LinkedIn    string `json:"linkedin"`
	Email       string `json:"email"`
	Bio         string `json:"bio"`
	Story       string `json:"story"`
	Mentor      string `json:"mentor"`
	Image       string `json:"image"`
	Status      string `json:"status"`
	DateAdded   string `json:"dateAdded"`
	DateUpdated string `json:"dateUpdated"`

	SubmissionID string `json:"submissionId,omitempty"`
	SubmittedAt  string `json:"submittedAt,omitempty"`
}

// Fields returns the profile as a generic field map, the shape the publish
// endpoint accepts.
func (p Profile) Fields() map[string]any {
	b, _ := json.Marshal(p)
	var out map[string]any
	_ = json.Unmarshal(b, &out)
	return out
}

// ProfileFromFields decodes a generic field map into a Profile. Numbers and
// booleans are accepted for any field and stored as text ("year": 2024).
func ProfileFromFields(fields map[string]any) (Profile, error) {
	var p Profile
	b, err := json.Marshal(NormalizeFields(fields))
	if err != nil {
		return p, err
	}
	err = json.Unmarshal(b, &p)
	return p, err
}

// UnmarshalJSON decodes a profile leniently: scalar numbers and booleans in
// any field are kept as their text, so hand-edited collection files with
// "year": 2025 still load.
func (p *Profile) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return err
	}
	norm, err := json.Marshal(NormalizeFields(fields))
	if err != nil {
		return err
	}
	type plain Profile
	var out plain
	if err := json.Unmarshal(norm, &out); err != nil {
		return err
	}
	*p = Profile(out)
	return nil
}

// NormalizeFields returns a copy of fields with numbers and booleans turned
// into strings. Other values are left for the decoder to accept or reject.
func NormalizeFields(fields map[string]any) map[string]any {
	norm := make(map[string]any, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case json.Number:
			norm[k] = val.String()
		case float64, float32, int, int64, bool:
			norm[k] = fmt.Sprint(val)
		default:
			norm[k] = v
		}
	}
	return norm
}
