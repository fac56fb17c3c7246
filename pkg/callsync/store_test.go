package callsync

import (
	"context"
	"errors"
	"testing"

	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
func (nopLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}

// fakeRecordStore merges through Apply, so these tests exercise the same
// semantics the SQL upsert encodes.
type fakeRecordStore struct {
	records map[string]*entity.CallLog
	failing bool
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: map[string]*entity.CallLog{}}
}

func (f *fakeRecordStore) Upsert(ctx context.Context, record *entity.CallLog) error {
	if f.failing {
		return errors.New("connection reset")
	}
	existing := f.records[record.CallId]
	merged, _ := Apply(existing, recordToPatch(record))
	if existing != nil {
		merged.AssistantId = existing.AssistantId
		merged.UserId = existing.UserId
	} else {
		merged.AssistantId = record.AssistantId
		merged.UserId = record.UserId
	}
	f.records[record.CallId] = merged
	*record = *merged
	return nil
}

func (f *fakeRecordStore) ExistsByCallId(ctx context.Context, callId string) (bool, error) {
	if f.failing {
		return false, errors.New("connection reset")
	}
	_, ok := f.records[callId]
	return ok, nil
}

func recordToPatch(r *entity.CallLog) *Patch {
	return &Patch{
		CallID:       r.CallId,
		Status:       r.Status,
		Direction:    r.Direction,
		PhoneNumber:  r.PhoneNumber,
		CallerNumber: r.CallerNumber,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		Duration:     r.Duration,
		Transcript:   r.Transcript,
		Summary:      r.Summary,
		Cost:         r.Cost,
		Currency:     r.Currency,
		RecordingURL: r.RecordingURL,
		Metadata:     r.Metadata,
		WebhookData:  r.WebhookData,
	}
}

type fakeDirectory struct {
	assistants map[string]*entity.Assistant
	err        error
}

func (f *fakeDirectory) ResolveByVapiID(ctx context.Context, vapiAssistantID string) (*entity.Assistant, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.assistants[vapiAssistantID], nil
}

func testAssistant(vapiID string) *entity.Assistant {
	return &entity.Assistant{
		Id:              uuid.New(),
		UserId:          uuid.New(),
		VapiAssistantId: vapiID,
	}
}

func TestStoreApplyCreatesScopedRecord(t *testing.T) {
	assistant := testAssistant("va-1")
	records := newFakeRecordStore()
	store := NewStore(records, &fakeDirectory{assistants: map[string]*entity.Assistant{"va-1": assistant}}, nopLogger{})

	outcome, err := store.Apply(context.Background(), &Patch{
		CallID:          "call-1",
		VapiAssistantID: "va-1",
		Status:          entity.CallStatusRinging,
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)

	rec := records.records["call-1"]
	require.NotNil(t, rec)
	assert.Equal(t, assistant.Id, rec.AssistantId)
	assert.Equal(t, assistant.UserId, rec.UserId)
	assert.Equal(t, entity.CallStatusRinging, rec.Status)
}

func TestStoreApplyUpdatesExisting(t *testing.T) {
	assistant := testAssistant("va-1")
	records := newFakeRecordStore()
	store := NewStore(records, &fakeDirectory{assistants: map[string]*entity.Assistant{"va-1": assistant}}, nopLogger{})

	_, err := store.Apply(context.Background(), &Patch{
		CallID:          "call-1",
		VapiAssistantID: "va-1",
		Status:          entity.CallStatusInProgress,
	})
	require.NoError(t, err)

	outcome, err := store.Apply(context.Background(), &Patch{
		CallID:          "call-1",
		VapiAssistantID: "va-1",
		Status:          entity.CallStatusCompleted,
		Transcript:      strPtr("hi"),
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)

	rec := records.records["call-1"]
	assert.Equal(t, entity.CallStatusCompleted, rec.Status)
	require.NotNil(t, rec.Transcript)
	assert.Equal(t, "hi", *rec.Transcript)
}

func TestStoreApplyOutOfOrderDelivery(t *testing.T) {
	assistant := testAssistant("va-1")
	records := newFakeRecordStore()
	store := NewStore(records, &fakeDirectory{assistants: map[string]*entity.Assistant{"va-1": assistant}}, nopLogger{})

	// End-of-call report lands first.
	_, err := store.Apply(context.Background(), &Patch{
		CallID:          "call-1",
		VapiAssistantID: "va-1",
		Status:          entity.CallStatusCompleted,
		Transcript:      strPtr("late transcript"),
	})
	require.NoError(t, err)

	// Then the delayed ringing webhook.
	_, err = store.Apply(context.Background(), &Patch{
		CallID:          "call-1",
		VapiAssistantID: "va-1",
		Status:          entity.CallStatusRinging,
	})
	require.NoError(t, err)

	rec := records.records["call-1"]
	assert.Equal(t, entity.CallStatusCompleted, rec.Status)
	require.NotNil(t, rec.Transcript)
}

func TestStoreApplyUnknownAssistant(t *testing.T) {
	records := newFakeRecordStore()
	store := NewStore(records, &fakeDirectory{assistants: map[string]*entity.Assistant{}}, nopLogger{})

	_, err := store.Apply(context.Background(), &Patch{
		CallID:          "call-1",
		VapiAssistantID: "va-missing",
	})

	assert.True(t, errors.Is(err, ErrUnknownAssistant))
	assert.Empty(t, records.records)
}

func TestStoreApplyPersistenceError(t *testing.T) {
	assistant := testAssistant("va-1")
	records := newFakeRecordStore()
	records.failing = true
	store := NewStore(records, &fakeDirectory{assistants: map[string]*entity.Assistant{"va-1": assistant}}, nopLogger{})

	_, err := store.Apply(context.Background(), &Patch{
		CallID:          "call-1",
		VapiAssistantID: "va-1",
	})

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "call-1", perr.CallID)
}
