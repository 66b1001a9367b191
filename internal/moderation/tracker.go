// Package moderation records which form submissions the operator has already
// approved or rejected.
package moderation

import (
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/techwomen-moldova/mentordesk/internal/common"
	"github.com/techwomen-moldova/mentordesk/pkg/schema"
	"github.com/techwomen-moldova/mentordesk/pkg/sdk"
)

// Keys used in the backing store.
const (
	KeyProcessed = "processedSubmissions"
	KeyStatus    = "submissionStatus"
	KeyReasons   = "rejectionReasons"
)

// ProcessedBy labels every decision. There is a single operator.
const ProcessedBy = "admin"

// Counts holds decision totals.
type Counts struct {
	Approved int
	Rejected int
}

// Tracker is the Moderation State Tracker. The three keys are written one
// after another without a transaction; a crash between writes can leave an id
// in the processed set without a status entry.
type Tracker struct {
	mu    sync.Mutex
	store sdk.KeyValueStore
	now   func() time.Time
}

func NewTracker(store sdk.KeyValueStore) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

func (t *Tracker) processed() ([]string, error) {
	return sdk.GetOr(t.store, KeyProcessed, []string{})
}

func (t *Tracker) statuses() (map[string]schema.StatusEntry, error) {
	m, err := sdk.GetOr(t.store, KeyStatus, map[string]schema.StatusEntry{})
	if m == nil {
		m = map[string]schema.StatusEntry{}
	}
	return m, err
}

func (t *Tracker) reasons() (map[string]string, error) {
	m, err := sdk.GetOr(t.store, KeyReasons, map[string]string{})
	if m == nil {
		m = map[string]string{}
	}
	return m, err
}

// IsProcessed reports whether id has a recorded decision.
func (t *Tracker) IsProcessed(id string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids, err := t.processed()
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, id), nil
}

// ProcessedSet returns every processed id as a set.
func (t *Tracker) ProcessedSet() (map[string]bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids, err := t.processed()
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// MarkProcessed records a decision. Repeating the same decision is a no-op;
// a conflicting one fails, since decisions are never rewritten.
func (t *Tracker) MarkProcessed(id string, status schema.ModerationStatus, reason string) error {
	if id == "" {
		return common.Errorf(common.ErrValidation, "Submission id is required")
	}
	if !status.Valid() {
		return common.Errorf(common.ErrValidation, "Unknown moderation status: %s", status)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	statuses, err := t.statuses()
	if err != nil {
		return err
	}
	if prev, ok := statuses[id]; ok {
		if prev.Status == status {
			return nil
		}
		return common.Errorf(common.ErrValidation, "Submission %s was already %s", id, prev.Status)
	}

	ids, err := t.processed()
	if err != nil {
		return err
	}
	if !slices.Contains(ids, id) {
		ids = append(slices.Clone(ids), id)
		if err := t.store.Set(KeyProcessed, ids); err != nil {
			return err
		}
	}

	next := make(map[string]schema.StatusEntry, len(statuses)+1)
	for k, v := range statuses {
		next[k] = v
	}
	next[id] = schema.StatusEntry{
		Status:      status,
		Timestamp:   t.now().UTC(),
		ProcessedBy: ProcessedBy,
	}
	if err := t.store.Set(KeyStatus, next); err != nil {
		return err
	}

	if status != schema.StatusRejected {
		return nil
	}
	reasons, err := t.reasons()
	if err != nil {
		return err
	}
	nextReasons := make(map[string]string, len(reasons)+1)
	for k, v := range reasons {
		nextReasons[k] = v
	}
	nextReasons[id] = reason
	return t.store.Set(KeyReasons, nextReasons)
}

// ClearAll forgets every decision.
func (t *Tracker) ClearAll() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs []error
	for _, k := range []string{KeyProcessed, KeyStatus, KeyReasons} {
		if err := t.store.Delete(k); err != nil && !errors.Is(err, sdk.ErrKeyNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Record returns the decision on id, if any.
func (t *Tracker) Record(id string) (schema.ModerationRecord, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	statuses, err := t.statuses()
	if err != nil {
		return schema.ModerationRecord{}, false, err
	}
	entry, ok := statuses[id]
	if !ok {
		return schema.ModerationRecord{}, false, nil
	}
	reasons, err := t.reasons()
	if err != nil {
		return schema.ModerationRecord{}, false, err
	}
	return toRecord(id, entry, reasons), true, nil
}

// Records returns every decision, oldest first.
func (t *Tracker) Records() ([]schema.ModerationRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	statuses, err := t.statuses()
	if err != nil {
		return nil, err
	}
	reasons, err := t.reasons()
	if err != nil {
		return nil, err
	}

	out := make([]schema.ModerationRecord, 0, len(statuses))
	for id, entry := range statuses {
		out = append(out, toRecord(id, entry, reasons))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].SubmissionID < out[j].SubmissionID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// Reasons returns the rejection reasons by submission id.
func (t *Tracker) Reasons() (map[string]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reasons()
}

// Counts totals the recorded decisions.
func (t *Tracker) Counts() (Counts, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	statuses, err := t.statuses()
	if err != nil {
		return Counts{}, err
	}
	var c Counts
	for _, e := range statuses {
		switch e.Status {
		case schema.StatusApproved:
			c.Approved++
		case schema.StatusRejected:
			c.Rejected++
		}
	}
	return c, nil
}

func toRecord(id string, e schema.StatusEntry, reasons map[string]string) schema.ModerationRecord {
	r := schema.ModerationRecord{
		SubmissionID: id,
		Status:       e.Status,
		Timestamp:    e.Timestamp,
		ProcessedBy:  e.ProcessedBy,
	}
	if e.Status == schema.StatusRejected {
		r.Reason = reasons[id]
	}
	return r
}
