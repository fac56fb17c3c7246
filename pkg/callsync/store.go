package callsync

import (
	"context"

	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/pkg/logger"
)

// Outcome reports what applying a patch did to the call-log table.
type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeUpdated
)

func (o Outcome) String() string {
	if o == OutcomeCreated {
		return "created"
	}
	return "updated"
}

// AssistantDirectory resolves a provider assistant id to the local
// assistant. Implementations return (nil, nil) for an unknown id.
type AssistantDirectory interface {
	ResolveByVapiID(ctx context.Context, vapiAssistantID string) (*entity.Assistant, error)
}

// RecordStore is the slice of the call-log repository the reconciler
// needs.
type RecordStore interface {
	Upsert(ctx context.Context, record *entity.CallLog) error
	ExistsByCallId(ctx context.Context, callId string) (bool, error)
}

// Store owns the scoping step of reconciliation: a patch only becomes a
// row once its assistant id maps to a local assistant, which pins the
// row's tenant. Merging itself happens atomically in RecordStore.Upsert.
type Store struct {
	records   RecordStore
	directory AssistantDirectory
	log       logger.ILogger
}

func NewStore(records RecordStore, directory AssistantDirectory, log logger.ILogger) *Store {
	return &Store{
		records:   records,
		directory: directory,
		log:       log,
	}
}

// Apply resolves the patch's assistant and upserts the record. Unknown
// assistants return ErrUnknownAssistant without touching the table, so a
// misrouted webhook can never create an orphan row. Database failures
// come back as *PersistenceError so the caller can ask the provider to
// redeliver.
func (s *Store) Apply(ctx context.Context, p *Patch) (Outcome, error) {
	assistant, err := s.directory.ResolveByVapiID(ctx, p.VapiAssistantID)
	if err != nil {
		return 0, &PersistenceError{CallID: p.CallID, Err: err}
	}
	if assistant == nil {
		s.log.Warn("callsync", "dropping event for unknown assistant", map[string]interface{}{
			"call_id":      p.CallID,
			"assistant_id": p.VapiAssistantID,
			"source":       string(p.Source),
		})
		return 0, ErrUnknownAssistant
	}

	exists, err := s.records.ExistsByCallId(ctx, p.CallID)
	if err != nil {
		return 0, &PersistenceError{CallID: p.CallID, Err: err}
	}

	record, _ := Apply(nil, p)
	record.AssistantId = assistant.Id
	record.UserId = assistant.UserId

	if err := s.records.Upsert(ctx, record); err != nil {
		return 0, &PersistenceError{CallID: p.CallID, Err: err}
	}

	outcome := OutcomeCreated
	if exists {
		outcome = OutcomeUpdated
	}
	s.log.Info("callsync", "event reconciled", map[string]interface{}{
		"call_id": p.CallID,
		"source":  string(p.Source),
		"status":  string(record.Status),
		"outcome": outcome.String(),
	})
	return outcome, nil
}
