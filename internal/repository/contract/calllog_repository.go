package contract

import (
	"context"

	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/repository/specification"
)

// CallStats aggregates call-log rows for dashboards.
type CallStats struct {
	TotalCalls     int64
	CompletedCalls int64
	FailedCalls    int64
	InboundCalls   int64
	OutboundCalls  int64
	TotalDuration  int64 // seconds
	TotalCost      float64
}

type CallLogRepository interface {
	// Upsert inserts or merge-updates the row for record.CallId in a single
	// atomic statement. The merge preserves the status-rank order, never
	// clears end_time or previously captured content fields, accumulates
	// metadata and always replaces webhook_data. See pkg/callsync.Apply for
	// the reference semantics this statement mirrors.
	Upsert(ctx context.Context, record *entity.CallLog) error

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CallLog, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CallLog, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	ExistsByCallId(ctx context.Context, callId string) (bool, error)
	Stats(ctx context.Context, specs ...specification.Specification) (*CallStats, error)
}
