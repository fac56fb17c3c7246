package callsync

import (
	"context"
	"errors"

	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// CallLister fetches call objects from the provider list API for one
// provider assistant id.
type CallLister interface {
	ListCalls(ctx context.Context, vapiAssistantID string, limit int) ([]map[string]interface{}, error)
}

// AssistantLister scopes a job run to a set of local assistants.
type AssistantLister interface {
	ListAssistants(ctx context.Context, assistantID, userID *uuid.UUID) ([]*entity.Assistant, error)
}

// Options narrows a job run. Nil scope fields mean "all".
type Options struct {
	AssistantID *uuid.UUID
	UserID      *uuid.UUID
	Limit       int // per-assistant fetch limit; 0 uses DefaultLimit
	DryRun      bool
}

// DefaultLimit bounds how many calls one assistant contributes per run.
const DefaultLimit = 100

// Summary is the per-run tally. In a dry run Synced stays zero and the
// WouldCreate/WouldUpdate split reports what a real run would have done.
type Summary struct {
	Synced      int `json:"synced"`
	Skipped     int `json:"skipped"`
	Errors      int `json:"errors"`
	WouldCreate int `json:"would_create,omitempty"`
	WouldUpdate int `json:"would_update,omitempty"`
}

// Job reconciles the call-log table against the provider's list API. It
// backfills calls whose webhooks were missed and repairs records stuck in
// a non-terminal status. Per-call problems are counted, never fatal; a
// run only fails when the scope itself cannot be listed.
type Job struct {
	assistants AssistantLister
	calls      CallLister
	store      *Store
	records    RecordStore
	log        logger.ILogger
}

func NewJob(assistants AssistantLister, calls CallLister, store *Store, records RecordStore, log logger.ILogger) *Job {
	return &Job{
		assistants: assistants,
		calls:      calls,
		store:      store,
		records:    records,
		log:        log,
	}
}

func (j *Job) Run(ctx context.Context, opts Options) (*Summary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	assistants, err := j.assistants.ListAssistants(ctx, opts.AssistantID, opts.UserID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, assistant := range assistants {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if assistant.VapiAssistantId == "" {
			summary.Skipped++
			continue
		}

		calls, err := j.calls.ListCalls(ctx, assistant.VapiAssistantId, limit)
		if err != nil {
			summary.Errors++
			j.log.Error("callsync", "listing provider calls failed", map[string]interface{}{
				"assistant_id": assistant.Id.String(),
				"error":        (&UpstreamFetchError{AssistantID: assistant.VapiAssistantId, Err: err}).Error(),
			})
			continue
		}

		for _, raw := range calls {
			j.reconcileOne(ctx, assistant, raw, opts.DryRun, summary)
		}
	}

	j.log.Info("callsync", "sync run finished", map[string]interface{}{
		"synced":  summary.Synced,
		"skipped": summary.Skipped,
		"errors":  summary.Errors,
		"dry_run": opts.DryRun,
	})
	return summary, nil
}

func (j *Job) reconcileOne(ctx context.Context, assistant *entity.Assistant, raw map[string]interface{}, dryRun bool, summary *Summary) {
	patch, err := Normalize(SourceAPISync, raw)
	if err != nil {
		summary.Errors++
		j.log.Warn("callsync", "skipping malformed call object", map[string]interface{}{
			"assistant_id": assistant.Id.String(),
			"error":        err.Error(),
		})
		return
	}
	// List responses omit assistantId on some shapes; the scope already
	// pinned it.
	if patch.VapiAssistantID == "" {
		patch.VapiAssistantID = assistant.VapiAssistantId
	}

	if dryRun {
		exists, err := j.records.ExistsByCallId(ctx, patch.CallID)
		if err != nil {
			summary.Errors++
			return
		}
		if exists {
			summary.WouldUpdate++
		} else {
			summary.WouldCreate++
		}
		return
	}

	if _, err := j.store.Apply(ctx, patch); err != nil {
		if errors.Is(err, ErrUnknownAssistant) {
			summary.Skipped++
			return
		}
		summary.Errors++
		return
	}
	summary.Synced++
}
