package mapper

import (
	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/model"
)

type AssistantMapper struct{}

func NewAssistantMapper() *AssistantMapper {
	return &AssistantMapper{}
}

func (m *AssistantMapper) ToEntity(a *model.Assistant) *entity.Assistant {
	if a == nil {
		return nil
	}
	return &entity.Assistant{
		Id:              a.Id,
		UserId:          a.UserId,
		CreatedBy:       a.CreatedBy,
		VapiAssistantId: a.VapiAssistantId,
		Name:            a.Name,
		Type:            entity.AssistantType(a.Type),
		PhoneNumber:     a.PhoneNumber,
		WebhookURL:      a.WebhookURL,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func (m *AssistantMapper) ToModel(a *entity.Assistant) *model.Assistant {
	if a == nil {
		return nil
	}
	return &model.Assistant{
		Id:              a.Id,
		UserId:          a.UserId,
		CreatedBy:       a.CreatedBy,
		VapiAssistantId: a.VapiAssistantId,
		Name:            a.Name,
		Type:            string(a.Type),
		PhoneNumber:     a.PhoneNumber,
		WebhookURL:      a.WebhookURL,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}
