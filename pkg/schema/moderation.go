package schema

import "time"

// ModerationStatus is the operator's decision on a submission.
type ModerationStatus string

const (
	StatusApproved ModerationStatus = "approved"
	StatusRejected ModerationStatus = "rejected"
)

// Valid reports whether s is a known decision.
func (s ModerationStatus) Valid() bool {
	return s == StatusApproved || s == StatusRejected
}

// StatusEntry is one value of the persisted submissionStatus map.
type StatusEntry struct {
	Status      ModerationStatus `json:"status"`
	Timestamp   time.Time        `json:"timestamp"`
	ProcessedBy string           `json:"processedBy"`
}

// ModerationRecord is the assembled view of a decision on one submission.
type ModerationRecord struct {
	SubmissionID string           `json:"submissionId"`
	Status       ModerationStatus `json:"status"`
	Timestamp    time.Time        `json:"timestamp"`
	ProcessedBy  string           `json:"processedBy"`
	Reason       string           `json:"reason,omitempty"`
}
