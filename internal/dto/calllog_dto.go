package dto

import (
	"time"

	"github.com/google/uuid"
)

type CallLogFilter struct {
	AssistantId *uuid.UUID `query:"assistant_id"`
	Status      string     `query:"status"`
	Direction   string     `query:"direction"`
	From        *time.Time `query:"from"`
	To          *time.Time `query:"to"`
	Page        int        `query:"page"`
	PerPage     int        `query:"per_page"`
}

type CallLogResponse struct {
	Id           uuid.UUID              `json:"id"`
	CallId       string                 `json:"call_id"`
	AssistantId  uuid.UUID              `json:"assistant_id"`
	PhoneNumber  *string                `json:"phone_number,omitempty"`
	CallerNumber *string                `json:"caller_number,omitempty"`
	Direction    string                 `json:"direction"`
	Status       string                 `json:"status"`
	StartTime    *time.Time             `json:"start_time,omitempty"`
	EndTime      *time.Time             `json:"end_time,omitempty"`
	Duration     *int                   `json:"duration,omitempty"`
	Transcript   *string                `json:"transcript,omitempty"`
	Summary      *string                `json:"summary,omitempty"`
	Cost         *float64               `json:"cost,omitempty"`
	Currency     string                 `json:"currency"`
	RecordingURL *string                `json:"recording_url,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

type CallLogListResponse struct {
	Calls   []CallLogResponse `json:"calls"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
}

type CallStatsResponse struct {
	TotalCalls     int64   `json:"total_calls"`
	CompletedCalls int64   `json:"completed_calls"`
	FailedCalls    int64   `json:"failed_calls"`
	InboundCalls   int64   `json:"inbound_calls"`
	OutboundCalls  int64   `json:"outbound_calls"`
	TotalDuration  int64   `json:"total_duration_seconds"`
	TotalCost      float64 `json:"total_cost"`
}

type SyncCallsRequest struct {
	AssistantId *uuid.UUID `json:"assistant_id"`
	UserId      *uuid.UUID `json:"user_id"`
	Limit       int        `json:"limit" validate:"omitempty,min=1,max=1000"`
	DryRun      bool       `json:"dry_run"`
}

type SyncCallsResponse struct {
	Synced      int `json:"synced"`
	Skipped     int `json:"skipped"`
	Errors      int `json:"errors"`
	WouldCreate int `json:"would_create,omitempty"`
	WouldUpdate int `json:"would_update,omitempty"`
}
