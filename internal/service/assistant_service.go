package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-voicedesk-be/internal/config"
	"ai-voicedesk-be/internal/dto"
	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/pkg/logger"
	"ai-voicedesk-be/internal/repository/specification"
	"ai-voicedesk-be/internal/repository/unitofwork"
	"ai-voicedesk-be/pkg/twilio"
	"ai-voicedesk-be/pkg/vapi"

	"github.com/google/uuid"
)

// demoAssistantLimit caps assistants for users without an active
// subscription.
const demoAssistantLimit = 1

type IAssistantService interface {
	Create(ctx context.Context, userID uuid.UUID, req *dto.CreateAssistantRequest) (*dto.AssistantResponse, error)
	List(ctx context.Context, userID uuid.UUID) ([]dto.AssistantResponse, error)
	Get(ctx context.Context, userID, assistantID uuid.UUID) (*dto.AssistantResponse, error)
	Update(ctx context.Context, userID, assistantID uuid.UUID, req *dto.UpdateAssistantRequest) (*dto.AssistantResponse, error)
	Delete(ctx context.Context, userID, assistantID uuid.UUID) error
	AssignPhoneNumber(ctx context.Context, userID, assistantID uuid.UUID, req *dto.AssignPhoneNumberRequest) (*dto.AssistantResponse, error)
	Stats(ctx context.Context, userID, assistantID uuid.UUID) (*dto.AssistantStatsResponse, error)
}

// VapiGateway is the provider surface the assistant service needs.
// *vapi.Client satisfies it.
type VapiGateway interface {
	CreateAssistant(ctx context.Context, assistant *vapi.Assistant) (*vapi.Assistant, error)
	UpdateAssistant(ctx context.Context, id string, assistant *vapi.Assistant) (*vapi.Assistant, error)
	DeleteAssistant(ctx context.Context, id string) error
	AssignPhoneNumber(ctx context.Context, assistantID, number, twilioAccountSid, twilioAuthToken string) (string, error)
}

// TwilioGateway is the telephony surface. *twilio.Client satisfies it.
type TwilioGateway interface {
	PurchaseNumber(ctx context.Context, phoneNumber, voiceURL string) (*twilio.OwnedNumber, error)
	AccountSid() string
	AuthToken() string
}

// DirectoryInvalidator drops cached assistant-id mappings after writes.
type DirectoryInvalidator interface {
	Invalidate(vapiAssistantID string)
}

type assistantService struct {
	uowFactory unitofwork.RepositoryFactory
	vapi       VapiGateway
	twilio     TwilioGateway
	directory  DirectoryInvalidator
	cfg        *config.Config
	log        logger.ILogger
}

func NewAssistantService(uowFactory unitofwork.RepositoryFactory, vapiGateway VapiGateway, twilioGateway TwilioGateway, directory DirectoryInvalidator, cfg *config.Config, log logger.ILogger) IAssistantService {
	return &assistantService{
		uowFactory: uowFactory,
		vapi:       vapiGateway,
		twilio:     twilioGateway,
		directory:  directory,
		cfg:        cfg,
		log:        log,
	}
}

func (s *assistantService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateAssistantRequest) (*dto.AssistantResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	limit, assistantType, err := s.agentLimit(ctx, uow, userID, req.Type)
	if err != nil {
		return nil, err
	}
	if limit >= 0 {
		count, err := uow.AssistantRepository().Count(ctx, specification.UserOwnedBy{UserID: userID})
		if err != nil {
			return nil, err
		}
		if count >= int64(limit) {
			return nil, fmt.Errorf("assistant limit reached (%d); upgrade your plan to add more", limit)
		}
	}

	firstMessage, systemPrompt := req.FirstMessage, req.SystemPrompt
	if req.TemplateKey != "" {
		tpl, err := s.loadTemplate(ctx, uow, req.TemplateKey)
		if err != nil {
			return nil, err
		}
		if firstMessage == "" {
			firstMessage = tpl.FirstMessage
		}
		if systemPrompt == "" {
			systemPrompt = tpl.SystemPrompt
		}
	}

	payload := &vapi.Assistant{
		Name:         req.Name,
		FirstMessage: firstMessage,
		ServerURL:    s.cfg.App.BaseURL + "/api/webhooks/vapi",
	}
	if systemPrompt != "" {
		payload.Model = map[string]interface{}{
			"messages": []map[string]string{
				{"role": "system", "content": systemPrompt},
			},
		}
	}
	if req.VoiceID != "" {
		payload.Voice = map[string]interface{}{"voiceId": req.VoiceID}
	}

	created, err := s.vapi.CreateAssistant(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("provider rejected assistant: %w", err)
	}

	assistant := &entity.Assistant{
		Id:              uuid.New(),
		UserId:          userID,
		CreatedBy:       userID,
		VapiAssistantId: created.ID,
		Name:            req.Name,
		Type:            assistantType,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := uow.AssistantRepository().Create(ctx, assistant); err != nil {
		// Provider-side assistant is now orphaned; surface loudly.
		s.log.Error("assistant", "local mapping write failed after provider create", map[string]interface{}{
			"vapi_assistant_id": created.ID, "error": err.Error(),
		})
		return nil, err
	}

	res := toAssistantResponse(assistant)
	return &res, nil
}

func (s *assistantService) List(ctx context.Context, userID uuid.UUID) ([]dto.AssistantResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	assistants, err := uow.AssistantRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userID},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AssistantResponse, len(assistants))
	for i, a := range assistants {
		out[i] = toAssistantResponse(a)
	}
	return out, nil
}

func (s *assistantService) Get(ctx context.Context, userID, assistantID uuid.UUID) (*dto.AssistantResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	assistant, err := s.owned(ctx, uow, userID, assistantID)
	if err != nil {
		return nil, err
	}
	res := toAssistantResponse(assistant)
	return &res, nil
}

func (s *assistantService) Update(ctx context.Context, userID, assistantID uuid.UUID, req *dto.UpdateAssistantRequest) (*dto.AssistantResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	assistant, err := s.owned(ctx, uow, userID, assistantID)
	if err != nil {
		return nil, err
	}

	payload := &vapi.Assistant{Name: assistant.Name}
	if req.Name != "" {
		payload.Name = req.Name
	}
	if req.FirstMessage != "" {
		payload.FirstMessage = req.FirstMessage
	}
	if req.SystemPrompt != "" {
		payload.Model = map[string]interface{}{
			"messages": []map[string]string{
				{"role": "system", "content": req.SystemPrompt},
			},
		}
	}
	if req.VoiceID != "" {
		payload.Voice = map[string]interface{}{"voiceId": req.VoiceID}
	}

	if _, err := s.vapi.UpdateAssistant(ctx, assistant.VapiAssistantId, payload); err != nil {
		return nil, fmt.Errorf("provider rejected update: %w", err)
	}

	if req.Name != "" {
		assistant.Name = req.Name
	}
	assistant.UpdatedAt = time.Now()
	if err := uow.AssistantRepository().Update(ctx, assistant); err != nil {
		return nil, err
	}
	s.directory.Invalidate(assistant.VapiAssistantId)

	res := toAssistantResponse(assistant)
	return &res, nil
}

func (s *assistantService) Delete(ctx context.Context, userID, assistantID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	assistant, err := s.owned(ctx, uow, userID, assistantID)
	if err != nil {
		return err
	}

	// Call history survives assistant deletion, so only the mapping and
	// the provider object go.
	if err := s.vapi.DeleteAssistant(ctx, assistant.VapiAssistantId); err != nil && !vapi.IsNotFound(err) {
		return fmt.Errorf("provider delete failed: %w", err)
	}
	if err := uow.AssistantRepository().Delete(ctx, assistant.Id); err != nil {
		return err
	}
	s.directory.Invalidate(assistant.VapiAssistantId)
	return nil
}

func (s *assistantService) AssignPhoneNumber(ctx context.Context, userID, assistantID uuid.UUID, req *dto.AssignPhoneNumberRequest) (*dto.AssistantResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	assistant, err := s.owned(ctx, uow, userID, assistantID)
	if err != nil {
		return nil, err
	}
	if assistant.IsDemo() {
		return nil, errors.New("demo assistants cannot hold phone numbers")
	}

	if _, err := s.twilio.PurchaseNumber(ctx, req.PhoneNumber, ""); err != nil {
		return nil, fmt.Errorf("number purchase failed: %w", err)
	}
	if _, err := s.vapi.AssignPhoneNumber(ctx, assistant.VapiAssistantId, req.PhoneNumber, s.twilio.AccountSid(), s.twilio.AuthToken()); err != nil {
		return nil, fmt.Errorf("number routing failed: %w", err)
	}

	number := req.PhoneNumber
	assistant.PhoneNumber = &number
	assistant.UpdatedAt = time.Now()
	if err := uow.AssistantRepository().Update(ctx, assistant); err != nil {
		return nil, err
	}

	res := toAssistantResponse(assistant)
	return &res, nil
}

func (s *assistantService) Stats(ctx context.Context, userID, assistantID uuid.UUID) (*dto.AssistantStatsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	assistant, err := s.owned(ctx, uow, userID, assistantID)
	if err != nil {
		return nil, err
	}

	stats, err := uow.CallLogRepository().Stats(ctx, specification.Filter("assistant_id", assistant.Id))
	if err != nil {
		return nil, err
	}

	return &dto.AssistantStatsResponse{
		AssistantId:    assistant.Id,
		TotalCalls:     stats.TotalCalls,
		CompletedCalls: stats.CompletedCalls,
		FailedCalls:    stats.FailedCalls,
		InboundCalls:   stats.InboundCalls,
		OutboundCalls:  stats.OutboundCalls,
		TotalDuration:  stats.TotalDuration,
		TotalCost:      stats.TotalCost,
	}, nil
}

func (s *assistantService) owned(ctx context.Context, uow unitofwork.UnitOfWork, userID, assistantID uuid.UUID) (*entity.Assistant, error) {
	assistant, err := uow.AssistantRepository().FindOne(ctx,
		specification.ByID{ID: assistantID},
		specification.UserOwnedBy{UserID: userID},
	)
	if err != nil {
		return nil, err
	}
	if assistant == nil {
		return nil, errors.New("assistant not found")
	}
	return assistant, nil
}

// agentLimit decides how many assistants the user may hold and what type
// new ones get. Without an occupying subscription only demo assistants
// are allowed.
func (s *assistantService) agentLimit(ctx context.Context, uow unitofwork.UnitOfWork, userID uuid.UUID, requestedType string) (int, entity.AssistantType, error) {
	subs, err := uow.SubscriptionRepository().FindAllSubscriptions(ctx,
		specification.UserOwnedBy{UserID: userID},
		specification.StatusIn{Statuses: []string{
			string(entity.SubscriptionStatusActive),
			string(entity.SubscriptionStatusTrial),
		}},
	)
	if err != nil {
		return 0, "", err
	}
	if len(subs) == 0 {
		if requestedType == string(entity.AssistantTypeProduction) {
			return 0, "", errors.New("production assistants require an active subscription")
		}
		return demoAssistantLimit, entity.AssistantTypeDemo, nil
	}

	pkg, err := uow.SubscriptionRepository().FindOnePackage(ctx, specification.ByID{ID: subs[0].PackageId})
	if err != nil {
		return 0, "", err
	}
	if pkg == nil {
		return 0, "", errors.New("subscription package not found")
	}

	assistantType := entity.AssistantTypeProduction
	if requestedType == string(entity.AssistantTypeDemo) {
		assistantType = entity.AssistantTypeDemo
	}
	return pkg.VoiceAgentsLimit, assistantType, nil
}

func (s *assistantService) loadTemplate(ctx context.Context, uow unitofwork.UnitOfWork, key string) (*dto.AssistantTemplateResponse, error) {
	setting, err := uow.SettingRepository().FindOne(ctx, specification.ByKey{Key: "assistant_template." + key})
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, fmt.Errorf("unknown assistant template %q", key)
	}

	var tpl dto.AssistantTemplateResponse
	if err := json.Unmarshal([]byte(setting.Value), &tpl); err != nil {
		return nil, fmt.Errorf("malformed template %q: %w", key, err)
	}
	tpl.Key = key
	return &tpl, nil
}

func toAssistantResponse(a *entity.Assistant) dto.AssistantResponse {
	return dto.AssistantResponse{
		Id:              a.Id,
		VapiAssistantId: a.VapiAssistantId,
		Name:            a.Name,
		Type:            string(a.Type),
		PhoneNumber:     a.PhoneNumber,
		CreatedAt:       a.CreatedAt,
	}
}
