package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateAssistantRequest struct {
	Name         string `json:"name" validate:"required,min=2"`
	Type         string `json:"type" validate:"omitempty,oneof=demo production"`
	FirstMessage string `json:"first_message" validate:"omitempty,max=1000"`
	SystemPrompt string `json:"system_prompt" validate:"omitempty,max=10000"`
	VoiceID      string `json:"voice_id"`
	TemplateKey  string `json:"template_key"`
}

type UpdateAssistantRequest struct {
	Name         string `json:"name" validate:"omitempty,min=2"`
	FirstMessage string `json:"first_message" validate:"omitempty,max=1000"`
	SystemPrompt string `json:"system_prompt" validate:"omitempty,max=10000"`
	VoiceID      string `json:"voice_id"`
}

type AssignPhoneNumberRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
}

type AssistantResponse struct {
	Id              uuid.UUID `json:"id"`
	VapiAssistantId string    `json:"vapi_assistant_id"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	PhoneNumber     *string   `json:"phone_number,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type AssistantStatsResponse struct {
	AssistantId    uuid.UUID `json:"assistant_id"`
	TotalCalls     int64     `json:"total_calls"`
	CompletedCalls int64     `json:"completed_calls"`
	FailedCalls    int64     `json:"failed_calls"`
	InboundCalls   int64     `json:"inbound_calls"`
	OutboundCalls  int64     `json:"outbound_calls"`
	TotalDuration  int64     `json:"total_duration_seconds"`
	TotalCost      float64   `json:"total_cost"`
}
