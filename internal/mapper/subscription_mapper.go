package mapper

import (
	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/model"

	"gorm.io/datatypes"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) PackageToEntity(p *model.SubscriptionPackage) *entity.SubscriptionPackage {
	if p == nil {
		return nil
	}
	return &entity.SubscriptionPackage{
		Id:                  p.Id,
		Name:                p.Name,
		Slug:                p.Slug,
		Description:         p.Description,
		Price:               p.Price,
		VoiceAgentsLimit:    p.VoiceAgentsLimit,
		MonthlyMinutesLimit: p.MonthlyMinutesLimit,
		Features:            []string(p.Features),
		StripePriceId:       p.StripePriceId,
		SupportLevel:        p.SupportLevel,
		AnalyticsLevel:      p.AnalyticsLevel,
		IsPopular:           p.IsPopular,
		IsActive:            p.IsActive,
		SortOrder:           p.SortOrder,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func (m *SubscriptionMapper) PackageToModel(p *entity.SubscriptionPackage) *model.SubscriptionPackage {
	if p == nil {
		return nil
	}
	return &model.SubscriptionPackage{
		Id:                  p.Id,
		Name:                p.Name,
		Slug:                p.Slug,
		Description:         p.Description,
		Price:               p.Price,
		VoiceAgentsLimit:    p.VoiceAgentsLimit,
		MonthlyMinutesLimit: p.MonthlyMinutesLimit,
		Features:            datatypes.NewJSONSlice(p.Features),
		StripePriceId:       p.StripePriceId,
		SupportLevel:        p.SupportLevel,
		AnalyticsLevel:      p.AnalyticsLevel,
		IsPopular:           p.IsPopular,
		IsActive:            p.IsActive,
		SortOrder:           p.SortOrder,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func (m *SubscriptionMapper) SubscriptionToEntity(s *model.UserSubscription) *entity.UserSubscription {
	if s == nil {
		return nil
	}
	return &entity.UserSubscription{
		Id:                   s.Id,
		UserId:               s.UserId,
		PackageId:            s.PackageId,
		Status:               entity.SubscriptionStatus(s.Status),
		CurrentPeriodStart:   s.CurrentPeriodStart,
		CurrentPeriodEnd:     s.CurrentPeriodEnd,
		TrialEndsAt:          s.TrialEndsAt,
		CancelledAt:          s.CancelledAt,
		EndsAt:               s.EndsAt,
		StripeSubscriptionId: s.StripeSubscriptionId,
		StripeCustomerId:     s.StripeCustomerId,
		Metadata:             map[string]interface{}(s.Metadata),
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) SubscriptionToModel(s *entity.UserSubscription) *model.UserSubscription {
	if s == nil {
		return nil
	}
	return &model.UserSubscription{
		Id:                   s.Id,
		UserId:               s.UserId,
		PackageId:            s.PackageId,
		Status:               string(s.Status),
		CurrentPeriodStart:   s.CurrentPeriodStart,
		CurrentPeriodEnd:     s.CurrentPeriodEnd,
		TrialEndsAt:          s.TrialEndsAt,
		CancelledAt:          s.CancelledAt,
		EndsAt:               s.EndsAt,
		StripeSubscriptionId: s.StripeSubscriptionId,
		StripeCustomerId:     s.StripeCustomerId,
		Metadata:             datatypes.JSONMap(s.Metadata),
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}
