package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/techwomen-moldova/mentordesk/pkg/schema"
)

// ExportNote is attached to every export.
const ExportNote = "Credentials not included for security"

// Export is the document written by Controller.Export.
type Export struct {
	ApprovedProfiles []schema.Profile `json:"approvedProfiles"`
	ExportDate       time.Time        `json:"exportDate"`
	Note             string           `json:"note"`
}

// ExportFileName is the default export file name for the given day.
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("techwomen-dashboard-export-%s.json", now.UTC().Format(time.DateOnly))
}

// Export writes the profiles approved in this session. Settings are never
// included.
func (c *Controller) Export(w io.Writer) error {
	c.mu.Lock()
	doc := Export{
		ApprovedProfiles: append([]schema.Profile{}, c.approved...),
		ExportDate:       c.now().UTC(),
		Note:             ExportNote,
	}
	c.mu.Unlock()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return c.fail(err)
	}
	return nil
}
