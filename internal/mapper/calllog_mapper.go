package mapper

import (
	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/model"

	"gorm.io/datatypes"
)

type CallLogMapper struct{}

func NewCallLogMapper() *CallLogMapper {
	return &CallLogMapper{}
}

func (m *CallLogMapper) ToEntity(c *model.CallLog) *entity.CallLog {
	if c == nil {
		return nil
	}
	return &entity.CallLog{
		Id:           c.Id,
		CallId:       c.CallId,
		AssistantId:  c.AssistantId,
		UserId:       c.UserId,
		PhoneNumber:  c.PhoneNumber,
		CallerNumber: c.CallerNumber,
		Direction:    entity.CallDirection(c.Direction),
		Status:       entity.CallStatus(c.Status),
		StartTime:    c.StartTime,
		EndTime:      c.EndTime,
		Duration:     c.Duration,
		Transcript:   c.Transcript,
		Summary:      c.Summary,
		Cost:         c.Cost,
		Currency:     c.Currency,
		RecordingURL: c.RecordingURL,
		Metadata:     map[string]interface{}(c.Metadata),
		WebhookData:  map[string]interface{}(c.WebhookData),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func (m *CallLogMapper) ToModel(c *entity.CallLog) *model.CallLog {
	if c == nil {
		return nil
	}
	return &model.CallLog{
		Id:           c.Id,
		CallId:       c.CallId,
		AssistantId:  c.AssistantId,
		UserId:       c.UserId,
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
		Metadata:     datatypes.JSONMap(c.Metadata),
		WebhookData:  datatypes.JSONMap(c.WebhookData),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
