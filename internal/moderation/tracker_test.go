package moderation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techwomen-moldova/mentordesk/internal/common"
	"github.com/techwomen-moldova/mentordesk/internal/engine"
	"github.com/techwomen-moldova/mentordesk/pkg/schema"
	"github.com/techwomen-moldova/mentordesk/pkg/sdk"
)

func newTracker(t *testing.T) (*Tracker, *engine.MemStore) {
	t.Helper()
	store := engine.NewMemStore(nil, nil)
	tr := NewTracker(store)
	tr.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return tr, store
}

func TestMarkProcessed_Reject(t *testing.T) {
	tr, store := newTracker(t)

	require.NoError(t, tr.MarkProcessed("sub-42", schema.StatusRejected, "incomplete"))

	ok, err := tr.IsProcessed("sub-42")
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err := sdk.Get[[]string](store, KeyProcessed)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-42"}, ids)

	statuses, err := sdk.Get[map[string]schema.StatusEntry](store, KeyStatus)
	require.NoError(t, err)
	assert.Equal(t, schema.StatusRejected, statuses["sub-42"].Status)
	assert.Equal(t, "admin", statuses["sub-42"].ProcessedBy)

	reasons, err := tr.Reasons()
	require.NoError(t, err)
	assert.Equal(t, "incomplete", reasons["sub-42"])
}

func TestMarkProcessed_ApproveWritesNoReason(t *testing.T) {
	tr, store := newTracker(t)

	require.NoError(t, tr.MarkProcessed("sub-1", schema.StatusApproved, "ignored"))

	_, err := store.Get(KeyReasons)
	assert.ErrorIs(t, err, common.ErrKeyNotFound)

	rec, ok, err := tr.Record("sub-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, schema.StatusApproved, rec.Status)
	assert.Empty(t, rec.Reason)
}

func TestMarkProcessed_Idempotent(t *testing.T) {
	tr, store := newTracker(t)

	require.NoError(t, tr.MarkProcessed("sub-1", schema.StatusApproved, ""))
	require.NoError(t, tr.MarkProcessed("sub-1", schema.StatusApproved, ""))

	ids, err := sdk.Get[[]string](store, KeyProcessed)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-1"}, ids)
}

func TestMarkProcessed_Conflict(t *testing.T) {
	tr, _ := newTracker(t)

	require.NoError(t, tr.MarkProcessed("sub-1", schema.StatusApproved, ""))
	err := tr.MarkProcessed("sub-1", schema.StatusRejected, "changed my mind")
	assert.ErrorIs(t, err, common.ErrValidation)

	rec, _, err := tr.Record("sub-1")
	require.NoError(t, err)
	assert.Equal(t, schema.StatusApproved, rec.Status)
}

func TestMarkProcessed_Invalid(t *testing.T) {
	tr, _ := newTracker(t)

	assert.ErrorIs(t, tr.MarkProcessed("", schema.StatusApproved, ""), common.ErrValidation)
	assert.ErrorIs(t, tr.MarkProcessed("sub-1", "pending", ""), common.ErrValidation)
}

func TestClearAll(t *testing.T) {
	tr, store := newTracker(t)

	require.NoError(t, tr.MarkProcessed("a", schema.StatusApproved, ""))
	require.NoError(t, tr.MarkProcessed("b", schema.StatusRejected, "spam"))
	require.NoError(t, store.Set("adminSecureSettings", map[string]any{"formId": "f"}))

	require.NoError(t, tr.ClearAll())

	for _, id := range []string{"a", "b"} {
		ok, err := tr.IsProcessed(id)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	keys, _ := store.Keys()
	assert.Equal(t, []string{"adminSecureSettings"}, keys)

	// clearing an empty store is fine
	assert.NoError(t, tr.ClearAll())
}

func TestRecordsAndCounts(t *testing.T) {
	tr, _ := newTracker(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"c", "a", "b"} {
		tr.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		status := schema.StatusApproved
		if id == "a" {
			status = schema.StatusRejected
		}
		require.NoError(t, tr.MarkProcessed(id, status, "dup"))
	}

	recs, err := tr.Records()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "c", recs[0].SubmissionID)
	assert.Equal(t, "a", recs[1].SubmissionID)
	assert.Equal(t, "dup", recs[1].Reason)
	assert.Equal(t, "b", recs[2].SubmissionID)

	counts, err := tr.Counts()
	require.NoError(t, err)
	assert.Equal(t, Counts{Approved: 2, Rejected: 1}, counts)
}

func TestTracker_SurvivesReload(t *testing.T) {
	dir := t.TempDir()
	store, err := sdk.OpenLocal(dir)
	require.NoError(t, err)
	require.NoError(t, NewTracker(store).MarkProcessed("sub-7", schema.StatusRejected, "no bio"))

	reopened, err := sdk.OpenLocal(dir)
	require.NoError(t, err)
	tr := NewTracker(reopened)

	ok, err := tr.IsProcessed("sub-7")
	require.NoError(t, err)
	assert.True(t, ok)

	rec, found, err := tr.Record("sub-7")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "no bio", rec.Reason)
	assert.Equal(t, ProcessedBy, rec.ProcessedBy)
}
