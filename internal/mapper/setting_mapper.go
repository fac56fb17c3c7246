package mapper

import (
	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/model"
)

type SettingMapper struct{}

func NewSettingMapper() *SettingMapper {
	return &SettingMapper{}
}

func (m *SettingMapper) ToEntity(s *model.Setting) *entity.Setting {
	if s == nil {
		return nil
	}
	return &entity.Setting{
		Id:        s.Id,
		Key:       s.Key,
		Value:     s.Value,
		Type:      s.Type,
		Group:     s.Group,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (m *SettingMapper) ToModel(s *entity.Setting) *model.Setting {
	if s == nil {
		return nil
	}
	return &model.Setting{
		Id:        s.Id,
		Key:       s.Key,
		Value:     s.Value,
		Type:      s.Type,
		Group:     s.Group,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
