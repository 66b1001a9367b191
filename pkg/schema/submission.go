// Package schema defines the data structures shared by the mentordesk daemon,
// the dashboard and the SDK.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Submission is one entry collected by the public form and fetched from the
// forms API. It is read-only to mentordesk.
type Submission struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	FormName  string         `json:"form_name"`
	Data      map[string]any `json:"data"`
}

// UnmarshalJSON accepts a numeric id and a blank or unparseable created_at,
// which decodes as the zero time, so one odd entry does not fail a batch.
func (s *Submission) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID        json.RawMessage `json:"id"`
		CreatedAt json.RawMessage `json:"created_at"`
		FormName  string          `json:"form_name"`
		Data      map[string]any  `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*s = Submission{FormName: raw.FormName, Data: raw.Data}
	s.ID = rawScalar(raw.ID)
	if ts := rawScalar(raw.CreatedAt); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			s.CreatedAt = t
		}
	}
	return nil
}

// rawScalar returns a JSON string's contents or a number's literal text.
// Null, objects and arrays read as "".
func rawScalar(r json.RawMessage) string {
	var str string
	if err := json.Unmarshal(r, &str); err == nil {
		return strings.TrimSpace(str)
	}
	var n json.Number
	if err := json.Unmarshal(r, &n); err == nil {
		return n.String()
	}
	return ""
}

// Field returns a data value as a trimmed string. Missing and null values read
// as "", other scalars are formatted.
func (s Submission) Field(name string) string {
	v, ok := s.Data[name]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return ""
	}
}

// FirstField returns the first non-empty value among names.
func (s Submission) FirstField(names ...string) string {
	for _, n := range names {
		if v := s.Field(n); v != "" {
			return v
		}
	}
	return ""
}
