package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusTrial     SubscriptionStatus = "trial"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

// IsTerminal reports whether s allows no further transitions.
func (s SubscriptionStatus) IsTerminal() bool {
	return s == SubscriptionStatusCancelled || s == SubscriptionStatusExpired
}

// CanTransitionTo encodes the subscription lifecycle:
// pending -> {trial, active, cancelled}; trial -> {active, cancelled,
// expired}; active -> {cancelled, expired}; cancelled/expired absorbing.
func (s SubscriptionStatus) CanTransitionTo(next SubscriptionStatus) bool {
	if s == next {
		return false
	}
	switch s {
	case SubscriptionStatusPending:
		return next == SubscriptionStatusTrial || next == SubscriptionStatusActive || next == SubscriptionStatusCancelled
	case SubscriptionStatusTrial:
		return next == SubscriptionStatusActive || next == SubscriptionStatusCancelled || next == SubscriptionStatusExpired
	case SubscriptionStatusActive:
		return next == SubscriptionStatusCancelled || next == SubscriptionStatusExpired
	}
	return false
}

type SubscriptionPackage struct {
	Id                  uuid.UUID
	Name                string
	Slug                string
	Description         string
	Price               float64
	VoiceAgentsLimit    int // -1 = unlimited
	MonthlyMinutesLimit int // -1 = unlimited
	Features            []string
	StripePriceId       *string
	SupportLevel        string
	AnalyticsLevel      string
	IsPopular           bool
	IsActive            bool
	SortOrder           int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (p *SubscriptionPackage) IsUnlimitedAgents() bool {
	return p.VoiceAgentsLimit == -1
}

// UserSubscription is one subscription instance for a user. Rows are never
// physically deleted; end-of-life is modelled through status transitions.
// StripeSubscriptionId correlates the row with the billing provider and is
// nil for subscriptions created without Stripe involvement.
type UserSubscription struct {
	Id                   uuid.UUID
	UserId               uuid.UUID
	PackageId            uuid.UUID
	Status               SubscriptionStatus
	CurrentPeriodStart   time.Time
	CurrentPeriodEnd     time.Time
	TrialEndsAt          *time.Time
	CancelledAt          *time.Time
	EndsAt               *time.Time
	StripeSubscriptionId *string
	StripeCustomerId     *string
	Metadata             map[string]interface{}
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (s *UserSubscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}

func (s *UserSubscription) IsCancelled() bool {
	return s.Status == SubscriptionStatusCancelled
}

// Occupies reports whether this subscription counts against the one
// active-or-trial subscription a user may hold at a time.
func (s *UserSubscription) Occupies() bool {
	return s.Status == SubscriptionStatusActive || s.Status == SubscriptionStatusTrial
}

func (s *UserSubscription) HasExpired(now time.Time) bool {
	return s.CurrentPeriodEnd.Before(now)
}
