package service

import (
	"context"
	"fmt"

	"ai-voicedesk-be/internal/dto"
	"ai-voicedesk-be/internal/pkg/logger"
	"ai-voicedesk-be/pkg/twilio"
)

const defaultNumberSearchLimit = 10

type IPhoneService interface {
	Search(ctx context.Context, req *dto.SearchNumbersRequest) ([]dto.AvailableNumberResponse, error)
	ListOwned(ctx context.Context) ([]dto.OwnedNumberResponse, error)
	Release(ctx context.Context, numberSid string) error
}

// PhoneGateway is the number-inventory surface. *twilio.Client satisfies it.
type PhoneGateway interface {
	SearchAvailableNumbers(ctx context.Context, country, areaCode, contains string, limit int) ([]twilio.AvailableNumber, error)
	ListOwnedNumbers(ctx context.Context) ([]twilio.OwnedNumber, error)
	ReleaseNumber(ctx context.Context, numberSid string) error
}

type phoneService struct {
	gateway PhoneGateway
	log     logger.ILogger
}

func NewPhoneService(gateway PhoneGateway, log logger.ILogger) IPhoneService {
	return &phoneService{gateway: gateway, log: log}
}

func (s *phoneService) Search(ctx context.Context, req *dto.SearchNumbersRequest) ([]dto.AvailableNumberResponse, error) {
	country := req.Country
	if country == "" {
		country = "US"
	}
	limit := req.Limit
	if limit < 1 || limit > 30 {
		limit = defaultNumberSearchLimit
	}

	numbers, err := s.gateway.SearchAvailableNumbers(ctx, country, req.AreaCode, req.Contains, limit)
	if err != nil {
		return nil, fmt.Errorf("number search failed: %w", err)
	}

	out := make([]dto.AvailableNumberResponse, len(numbers))
	for i, n := range numbers {
		out[i] = dto.AvailableNumberResponse{
			PhoneNumber:  n.PhoneNumber,
			FriendlyName: n.FriendlyName,
			Locality:     n.Locality,
			Region:       n.Region,
			IsoCountry:   n.IsoCountry,
		}
	}
	return out, nil
}

func (s *phoneService) ListOwned(ctx context.Context) ([]dto.OwnedNumberResponse, error) {
	numbers, err := s.gateway.ListOwnedNumbers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.OwnedNumberResponse, len(numbers))
	for i, n := range numbers {
		out[i] = dto.OwnedNumberResponse{
			Sid:          n.Sid,
			PhoneNumber:  n.PhoneNumber,
			FriendlyName: n.FriendlyName,
			VoiceURL:     n.VoiceURL,
			Status:       n.Status,
		}
	}
	return out, nil
}

func (s *phoneService) Release(ctx context.Context, numberSid string) error {
	if err := s.gateway.ReleaseNumber(ctx, numberSid); err != nil {
		return err
	}
	s.log.Info("phone", "number released", map[string]interface{}{"sid": numberSid})
	return nil
}
