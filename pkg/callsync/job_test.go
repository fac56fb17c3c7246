package callsync

import (
	"context"
	"errors"
	"testing"

	"ai-voicedesk-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssistantLister struct {
	assistants []*entity.Assistant
	err        error
}

func (f *fakeAssistantLister) ListAssistants(ctx context.Context, assistantID, userID *uuid.UUID) ([]*entity.Assistant, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := f.assistants
	if assistantID != nil {
		filtered := out[:0:0]
		for _, a := range out {
			if a.Id == *assistantID {
				filtered = append(filtered, a)
			}
		}
		out = filtered
	}
	if userID != nil {
		filtered := out[:0:0]
		for _, a := range out {
			if a.UserId == *userID {
				filtered = append(filtered, a)
			}
		}
		out = filtered
	}
	return out, nil
}

type fakeCallLister struct {
	calls map[string][]map[string]interface{}
	errs  map[string]error
}

func (f *fakeCallLister) ListCalls(ctx context.Context, vapiAssistantID string, limit int) ([]map[string]interface{}, error) {
	if err := f.errs[vapiAssistantID]; err != nil {
		return nil, err
	}
	calls := f.calls[vapiAssistantID]
	if len(calls) > limit {
		calls = calls[:limit]
	}
	return calls, nil
}

func newJobFixture(assistants ...*entity.Assistant) (*Job, *fakeRecordStore, *fakeCallLister) {
	directory := &fakeDirectory{assistants: map[string]*entity.Assistant{}}
	for _, a := range assistants {
		directory.assistants[a.VapiAssistantId] = a
	}
	records := newFakeRecordStore()
	store := NewStore(records, directory, nopLogger{})
	calls := &fakeCallLister{calls: map[string][]map[string]interface{}{}, errs: map[string]error{}}
	job := NewJob(&fakeAssistantLister{assistants: assistants}, calls, store, records, nopLogger{})
	return job, records, calls
}

func apiCall(id, status string) map[string]interface{} {
	return map[string]interface{}{"id": id, "status": status}
}

func TestJobRunSyncsAllAssistants(t *testing.T) {
	a1 := testAssistant("va-1")
	a2 := testAssistant("va-2")
	job, records, calls := newJobFixture(a1, a2)
	calls.calls["va-1"] = []map[string]interface{}{apiCall("c1", "ended"), apiCall("c2", "in-progress")}
	calls.calls["va-2"] = []map[string]interface{}{apiCall("c3", "ended")}

	summary, err := job.Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Synced)
	assert.Equal(t, 0, summary.Errors)
	assert.Len(t, records.records, 3)
	assert.Equal(t, entity.CallStatusCompleted, records.records["c1"].Status)
	assert.Equal(t, a2.UserId, records.records["c3"].UserId)
}

func TestJobRunScopedToAssistant(t *testing.T) {
	a1 := testAssistant("va-1")
	a2 := testAssistant("va-2")
	job, records, calls := newJobFixture(a1, a2)
	calls.calls["va-1"] = []map[string]interface{}{apiCall("c1", "ended")}
	calls.calls["va-2"] = []map[string]interface{}{apiCall("c2", "ended")}

	summary, err := job.Run(context.Background(), Options{AssistantID: &a1.Id})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Synced)
	assert.Contains(t, records.records, "c1")
	assert.NotContains(t, records.records, "c2")
}

func TestJobRunPerCallErrorsDoNotAbort(t *testing.T) {
	a1 := testAssistant("va-1")
	job, records, calls := newJobFixture(a1)
	calls.calls["va-1"] = []map[string]interface{}{
		apiCall("c1", "ended"),
		{"status": "ended"}, // no id
		apiCall("c2", "ended"),
	}

	summary, err := job.Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Synced)
	assert.Equal(t, 1, summary.Errors)
	assert.Len(t, records.records, 2)
}

func TestJobRunUpstreamFailureCountsAndContinues(t *testing.T) {
	a1 := testAssistant("va-1")
	a2 := testAssistant("va-2")
	job, records, calls := newJobFixture(a1, a2)
	calls.errs["va-1"] = errors.New("upstream 503")
	calls.calls["va-2"] = []map[string]interface{}{apiCall("c1", "ended")}

	summary, err := job.Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Synced)
	assert.Equal(t, 1, summary.Errors)
	assert.Contains(t, records.records, "c1")
}

func TestJobRunUnprovisionedAssistantSkipped(t *testing.T) {
	a1 := testAssistant("va-1")
	bare := &entity.Assistant{Id: uuid.New(), UserId: uuid.New()} // never provisioned upstream
	job, _, calls := newJobFixture(a1)
	calls.calls["va-1"] = []map[string]interface{}{apiCall("c1", "ended")}

	lister := &fakeAssistantLister{assistants: []*entity.Assistant{a1, bare}}
	job.assistants = lister

	summary, err := job.Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Synced)
	assert.Equal(t, 1, summary.Skipped)
}

func TestJobRunDryRun(t *testing.T) {
	a1 := testAssistant("va-1")
	job, records, calls := newJobFixture(a1)
	calls.calls["va-1"] = []map[string]interface{}{apiCall("c1", "ended"), apiCall("c2", "ended")}

	// c1 already exists locally.
	seeded, _ := Apply(nil, &Patch{CallID: "c1", Status: entity.CallStatusInProgress})
	records.records["c1"] = seeded

	summary, err := job.Run(context.Background(), Options{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Synced)
	assert.Equal(t, 1, summary.WouldCreate)
	assert.Equal(t, 1, summary.WouldUpdate)
	// Nothing written, and the stale status is untouched.
	assert.Len(t, records.records, 1)
	assert.Equal(t, entity.CallStatusInProgress, records.records["c1"].Status)
}

func TestJobRunLimit(t *testing.T) {
	a1 := testAssistant("va-1")
	job, records, calls := newJobFixture(a1)
	calls.calls["va-1"] = []map[string]interface{}{
		apiCall("c1", "ended"), apiCall("c2", "ended"), apiCall("c3", "ended"),
	}

	summary, err := job.Run(context.Background(), Options{Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Synced)
	assert.Len(t, records.records, 2)
}

func TestJobRunListAssistantsFailure(t *testing.T) {
	job, _, _ := newJobFixture()
	job.assistants = &fakeAssistantLister{err: errors.New("db down")}

	_, err := job.Run(context.Background(), Options{})
	assert.Error(t, err)
}
