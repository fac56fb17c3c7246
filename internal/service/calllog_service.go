package service

import (
	"context"
	"errors"

	"ai-voicedesk-be/internal/dto"
	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/pkg/logger"
	"ai-voicedesk-be/internal/repository/specification"
	"ai-voicedesk-be/internal/repository/unitofwork"
	"ai-voicedesk-be/pkg/callsync"

	"github.com/google/uuid"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

type ICallLogService interface {
	List(ctx context.Context, userID uuid.UUID, filter *dto.CallLogFilter) (*dto.CallLogListResponse, error)
	Get(ctx context.Context, userID uuid.UUID, callID string) (*dto.CallLogResponse, error)
	Stats(ctx context.Context, userID uuid.UUID, assistantID *uuid.UUID) (*dto.CallStatsResponse, error)
	Sync(ctx context.Context, req *dto.SyncCallsRequest) (*dto.SyncCallsResponse, error)
}

type callLogService struct {
	uowFactory unitofwork.RepositoryFactory
	syncJob    *callsync.Job
	log        logger.ILogger
}

func NewCallLogService(uowFactory unitofwork.RepositoryFactory, syncJob *callsync.Job, log logger.ILogger) ICallLogService {
	return &callLogService{
		uowFactory: uowFactory,
		syncJob:    syncJob,
		log:        log,
	}
}

func (s *callLogService) List(ctx context.Context, userID uuid.UUID, filter *dto.CallLogFilter) (*dto.CallLogListResponse, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	specs := []specification.Specification{specification.UserOwnedBy{UserID: userID}}
	if filter.AssistantId != nil {
		specs = append(specs, specification.Filter("assistant_id", *filter.AssistantId))
	}
	if filter.Status != "" {
		specs = append(specs, specification.ByStatus{Status: filter.Status})
	}
	if filter.Direction != "" {
		specs = append(specs, specification.Filter("direction", filter.Direction))
	}
	if filter.From != nil && filter.To != nil {
		specs = append(specs, specification.StartedBetween{From: *filter.From, To: *filter.To})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	total, err := uow.CallLogRepository().Count(ctx, specs...)
	if err != nil {
		return nil, err
	}

	pageSpecs := append(specs,
		specification.OrderBy{Field: "start_time", Desc: true},
		specification.Pagination{Limit: perPage, Offset: (page - 1) * perPage},
	)
	records, err := uow.CallLogRepository().FindAll(ctx, pageSpecs...)
	if err != nil {
		return nil, err
	}

	calls := make([]dto.CallLogResponse, len(records))
	for i, rec := range records {
		calls[i] = toCallLogResponse(rec)
	}
	return &dto.CallLogListResponse{
		Calls:   calls,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}

func (s *callLogService) Get(ctx context.Context, userID uuid.UUID, callID string) (*dto.CallLogResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.CallLogRepository().FindOne(ctx,
		specification.ByCallId{CallId: callID},
		specification.UserOwnedBy{UserID: userID},
	)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors.New("call not found")
	}
	res := toCallLogResponse(record)
	return &res, nil
}

func (s *callLogService) Stats(ctx context.Context, userID uuid.UUID, assistantID *uuid.UUID) (*dto.CallStatsResponse, error) {
	specs := []specification.Specification{specification.UserOwnedBy{UserID: userID}}
	if assistantID != nil {
		specs = append(specs, specification.Filter("assistant_id", *assistantID))
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	stats, err := uow.CallLogRepository().Stats(ctx, specs...)
	if err != nil {
		return nil, err
	}
	return &dto.CallStatsResponse{
		TotalCalls:     stats.TotalCalls,
		CompletedCalls: stats.CompletedCalls,
		FailedCalls:    stats.FailedCalls,
		InboundCalls:   stats.InboundCalls,
		OutboundCalls:  stats.OutboundCalls,
		TotalDuration:  stats.TotalDuration,
		TotalCost:      stats.TotalCost,
	}, nil
}

// Sync pulls call history from the provider API and reconciles it into
// the local log. It is the recovery path for webhooks that never arrived.
func (s *callLogService) Sync(ctx context.Context, req *dto.SyncCallsRequest) (*dto.SyncCallsResponse, error) {
	summary, err := s.syncJob.Run(ctx, callsync.Options{
		AssistantID: req.AssistantId,
		UserID:      req.UserId,
		Limit:       req.Limit,
		DryRun:      req.DryRun,
	})
	if err != nil {
		return nil, err
	}
	return &dto.SyncCallsResponse{
		Synced:      summary.Synced,
		Skipped:     summary.Skipped,
		Errors:      summary.Errors,
		WouldCreate: summary.WouldCreate,
		WouldUpdate: summary.WouldUpdate,
	}, nil
}

func toCallLogResponse(c *entity.CallLog) dto.CallLogResponse {
	return dto.CallLogResponse{
		Id:           c.Id,
		CallId:       c.CallId,
		AssistantId:  c.AssistantId,
		PhoneNumber:  c.PhoneNumber,
		CallerNumber: c.CallerNumber,
		Direction:    string(c.Direction),
		Status:       string(c.Status),
		StartTime:    c.StartTime,
		EndTime:      c.EndTime,
		Duration:     c.Duration,
		Transcript:   c.Transcript,
		Summary:      c.Summary,
		Cost:         c.Cost,
		Currency:     c.Currency,
		RecordingURL: c.RecordingURL,
		Metadata:     c.Metadata,
		CreatedAt:    c.CreatedAt,
	}
}
