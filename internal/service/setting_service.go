package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"ai-voicedesk-be/internal/dto"
	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/pkg/logger"
	"ai-voicedesk-be/internal/repository/specification"
	"ai-voicedesk-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const templateKeyPrefix = "assistant_template."

type ISettingService interface {
	List(ctx context.Context, group string) ([]dto.SettingResponse, error)
	Get(ctx context.Context, key string) (*dto.SettingResponse, error)
	Update(ctx context.Context, key string, req *dto.UpdateSettingRequest) (*dto.SettingResponse, error)
	ListTemplates(ctx context.Context) ([]dto.AssistantTemplateResponse, error)
}

type settingService struct {
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewSettingService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) ISettingService {
	return &settingService{uowFactory: uowFactory, log: log}
}

func (s *settingService) List(ctx context.Context, group string) ([]dto.SettingResponse, error) {
	specs := []specification.Specification{specification.OrderBy{Field: "key"}}
	if group != "" {
		specs = append(specs, specification.Filter("group_name", group))
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	settings, err := uow.SettingRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	out := make([]dto.SettingResponse, len(settings))
	for i, setting := range settings {
		out[i] = toSettingResponse(setting)
	}
	return out, nil
}

func (s *settingService) Get(ctx context.Context, key string) (*dto.SettingResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	setting, err := uow.SettingRepository().FindOne(ctx, specification.ByKey{Key: key})
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, errors.New("setting not found")
	}
	res := toSettingResponse(setting)
	return &res, nil
}

func (s *settingService) Update(ctx context.Context, key string, req *dto.UpdateSettingRequest) (*dto.SettingResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	setting, err := uow.SettingRepository().FindOne(ctx, specification.ByKey{Key: key})
	if err != nil {
		return nil, err
	}
	if setting == nil {
		setting = &entity.Setting{
			Id:        uuid.New(),
			Key:       key,
			Type:      "string",
			Group:     "general",
			CreatedAt: time.Now(),
		}
	}

	setting.Value = req.Value
	if req.Type != "" {
		setting.Type = req.Type
	}
	if req.Group != "" {
		setting.Group = req.Group
	}
	setting.UpdatedAt = time.Now()

	if err := uow.SettingRepository().Upsert(ctx, setting); err != nil {
		return nil, err
	}
	res := toSettingResponse(setting)
	return &res, nil
}

// ListTemplates exposes the assistant starter templates stored as JSON
// settings under the assistant_template. key prefix.
func (s *settingService) ListTemplates(ctx context.Context) ([]dto.AssistantTemplateResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	settings, err := uow.SettingRepository().FindAll(ctx,
		specification.Filter("group_name", "templates"),
		specification.OrderBy{Field: "key"},
	)
	if err != nil {
		return nil, err
	}

	templates := make([]dto.AssistantTemplateResponse, 0, len(settings))
	for _, setting := range settings {
		if !strings.HasPrefix(setting.Key, templateKeyPrefix) {
			continue
		}
		var tpl dto.AssistantTemplateResponse
		if err := json.Unmarshal([]byte(setting.Value), &tpl); err != nil {
			s.log.Warn("setting", "skipping malformed assistant template", map[string]interface{}{
				"key": setting.Key, "error": err.Error(),
			})
			continue
		}
		tpl.Key = strings.TrimPrefix(setting.Key, templateKeyPrefix)
		templates = append(templates, tpl)
	}
	return templates, nil
}

func toSettingResponse(s *entity.Setting) dto.SettingResponse {
	return dto.SettingResponse{
		Key:   s.Key,
		Value: s.Value,
		Type:  s.Type,
		Group: s.Group,
	}
}
