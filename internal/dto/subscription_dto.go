package dto

import (
	"time"

	"github.com/google/uuid"
)

type PackageResponse struct {
	Id                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	Slug                string    `json:"slug"`
	Description         string    `json:"description"`
	Price               float64   `json:"price"`
	VoiceAgentsLimit    int       `json:"voice_agents_limit"`
	MonthlyMinutesLimit int       `json:"monthly_minutes_limit"`
	Features            []string  `json:"features"`
	SupportLevel        string    `json:"support_level"`
	AnalyticsLevel      string    `json:"analytics_level"`
	IsPopular           bool      `json:"is_popular"`
}

type UpsertPackageRequest struct {
	Name                string   `json:"name" validate:"required,min=2"`
	Slug                string   `json:"slug" validate:"required,min=2"`
	Description         string   `json:"description"`
	Price               float64  `json:"price" validate:"min=0"`
	VoiceAgentsLimit    int      `json:"voice_agents_limit" validate:"min=-1"`
	MonthlyMinutesLimit int      `json:"monthly_minutes_limit" validate:"min=-1"`
	Features            []string `json:"features"`
	SupportLevel        string   `json:"support_level"`
	AnalyticsLevel      string   `json:"analytics_level"`
	IsPopular           bool     `json:"is_popular"`
	IsActive            bool     `json:"is_active"`
	SortOrder           int      `json:"sort_order"`
}

type SubscribeRequest struct {
	PackageId       uuid.UUID `json:"package_id" validate:"required"`
	PaymentMethodId string    `json:"payment_method_id"`
}

type SubscribeResponse struct {
	SubscriptionId       uuid.UUID `json:"subscription_id"`
	StripeSubscriptionId string    `json:"stripe_subscription_id"`
	ClientSecret         string    `json:"client_secret,omitempty"`
	Status               string    `json:"status"`
}

type SubscriptionResponse struct {
	Id                 uuid.UUID        `json:"id"`
	Status             string           `json:"status"`
	Package            *PackageResponse `json:"package,omitempty"`
	CurrentPeriodStart time.Time        `json:"current_period_start"`
	CurrentPeriodEnd   time.Time        `json:"current_period_end"`
	TrialEndsAt        *time.Time       `json:"trial_ends_at,omitempty"`
	CancelledAt        *time.Time       `json:"cancelled_at,omitempty"`
	EndsAt             *time.Time       `json:"ends_at,omitempty"`
}

type UsageResponse struct {
	VoiceAgentsUsed     int64 `json:"voice_agents_used"`
	VoiceAgentsLimit    int   `json:"voice_agents_limit"`
	MinutesUsed         int64 `json:"minutes_used"`
	MonthlyMinutesLimit int   `json:"monthly_minutes_limit"`
}

type TransactionResponse struct {
	Id          uuid.UUID  `json:"id"`
	Amount      float64    `json:"amount"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"`
	Description string     `json:"description"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
