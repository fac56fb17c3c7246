package implementation

import (
	"context"
	"errors"

	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/mapper"
	"ai-voicedesk-be/internal/model"
	"ai-voicedesk-be/internal/repository/contract"
	"ai-voicedesk-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CallLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CallLogMapper
}

func NewCallLogRepository(db *gorm.DB) contract.CallLogRepository {
	return &CallLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewCallLogMapper(),
	}
}

// Upsert runs a single INSERT ... ON CONFLICT (call_id) DO UPDATE whose
// assignment list encodes the merge policy in SQL, so concurrent webhook
// deliveries for the same call serialize on the row instead of racing a
// read-modify-write in Go.
func (r *CallLogRepositoryImpl) Upsert(ctx context.Context, record *entity.CallLog) error {
	m := r.mapper.ToModel(record)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "call_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			// Terminal rows keep their status; otherwise the higher rank
			// wins and equal rank takes the newer value.
			"status": gorm.Expr(
				`CASE WHEN call_logs.status NOT IN ('initiated', 'ringing', 'in-progress') THEN call_logs.status
				WHEN (CASE call_logs.status WHEN 'initiated' THEN 0 WHEN 'ringing' THEN 1 WHEN 'in-progress' THEN 2 ELSE 3 END)
				> (CASE excluded.status WHEN 'initiated' THEN 0 WHEN 'ringing' THEN 1 WHEN 'in-progress' THEN 2 ELSE 3 END)
				THEN call_logs.status ELSE excluded.status END`),
			// Fill-only fields: a NULL in the incoming row never clears a
			// value we already captured.
			"phone_number":  gorm.Expr(`COALESCE(excluded.phone_number, call_logs.phone_number)`),
			"caller_number": gorm.Expr(`COALESCE(excluded.caller_number, call_logs.caller_number)`),
			"start_time":    gorm.Expr(`COALESCE(excluded.start_time, call_logs.start_time)`),
			"end_time":      gorm.Expr(`COALESCE(excluded.end_time, call_logs.end_time)`),
			"duration":      gorm.Expr(`COALESCE(excluded.duration, call_logs.duration)`),
			"cost":          gorm.Expr(`COALESCE(excluded.cost, call_logs.cost)`),
			"transcript":    gorm.Expr(`COALESCE(NULLIF(excluded.transcript, ''), call_logs.transcript)`),
			"summary":       gorm.Expr(`COALESCE(NULLIF(excluded.summary, ''), call_logs.summary)`),
			"recording_url": gorm.Expr(`COALESCE(NULLIF(excluded.recording_url, ''), call_logs.recording_url)`),
			"direction":     gorm.Expr(`CASE WHEN excluded.direction <> '' THEN excluded.direction ELSE call_logs.direction END`),
			"currency":      gorm.Expr(`CASE WHEN excluded.currency <> '' THEN excluded.currency ELSE call_logs.currency END`),
			// Metadata accumulates across deliveries; webhook_data is a
			// snapshot of the latest payload.
			"metadata":     gorm.Expr(`COALESCE(call_logs.metadata, '{}'::jsonb) || COALESCE(excluded.metadata, '{}'::jsonb)`),
			"webhook_data": gorm.Expr(`COALESCE(excluded.webhook_data, call_logs.webhook_data)`),
			"updated_at":   gorm.Expr(`NOW()`),
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}

	// Re-read so callers observe the merged row, not the raw patch.
	var merged model.CallLog
	if err := r.db.WithContext(ctx).Where("call_id = ?", m.CallId).First(&merged).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(&merged)
	return nil
}

func (r *CallLogRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CallLog, error) {
	var m model.CallLog
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CallLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CallLog, error) {
	var models []*model.CallLog
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.CallLog, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *CallLogRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.CallLog{}), specs...)
	err := query.Count(&count).Error
	return count, err
}

func (r *CallLogRepositoryImpl) ExistsByCallId(ctx context.Context, callId string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CallLog{}).Where("call_id = ?", callId).Count(&count).Error
	return count > 0, err
}

func (r *CallLogRepositoryImpl) Stats(ctx context.Context, specs ...specification.Specification) (*contract.CallStats, error) {
	var row struct {
		TotalCalls     int64
		CompletedCalls int64
		FailedCalls    int64
		InboundCalls   int64
		OutboundCalls  int64
		TotalDuration  int64
		TotalCost      float64
	}

	query := applySpecifications(r.db.WithContext(ctx).Model(&model.CallLog{}), specs...)
	err := query.Select(`
		COUNT(*) AS total_calls,
		COUNT(*) FILTER (WHERE status = 'completed') AS completed_calls,
		COUNT(*) FILTER (WHERE status IN ('failed', 'busy', 'no-answer', 'cancelled')) AS failed_calls,
		COUNT(*) FILTER (WHERE direction = 'inbound') AS inbound_calls,
		COUNT(*) FILTER (WHERE direction = 'outbound') AS outbound_calls,
		COALESCE(SUM(duration), 0) AS total_duration,
		COALESCE(SUM(cost), 0) AS total_cost
	`).Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &contract.CallStats{
		TotalCalls:     row.TotalCalls,
		CompletedCalls: row.CompletedCalls,
		FailedCalls:    row.FailedCalls,
		InboundCalls:   row.InboundCalls,
		OutboundCalls:  row.OutboundCalls,
		TotalDuration:  row.TotalDuration,
		TotalCost:      row.TotalCost,
	}, nil
}
