package billing

import (
	"time"

	"ai-voicedesk-be/internal/entity"
)

// SubscriptionEvent is the reconciler's view of a provider subscription
// lifecycle event (created, updated, deleted). Controllers parse the raw
// Stripe event into this shape so the reconciler stays independent of
// webhook plumbing.
type SubscriptionEvent struct {
	SubscriptionID     string
	CustomerID         string
	Status             string // raw provider status
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	TrialEnd           *time.Time
	CancelAtPeriodEnd  bool
	Metadata           map[string]string // user_id, package_id set at checkout
}

// InvoiceEvent is the reconciler's view of an invoice outcome.
type InvoiceEvent struct {
	InvoiceID      string
	SubscriptionID string
	CustomerID     string
	AmountPaid     float64
	Currency       string
	ChargeID       string
}

// stripeStatuses maps the provider's subscription status vocabulary onto
// the local lifecycle. Statuses with no local meaning (incomplete,
// past_due, unpaid, paused) read as pending: the money side is unsettled
// and activation happens on invoice payment, not here.
var stripeStatuses = map[string]entity.SubscriptionStatus{
	"trialing":           entity.SubscriptionStatusTrial,
	"active":             entity.SubscriptionStatusActive,
	"canceled":           entity.SubscriptionStatusCancelled,
	"incomplete_expired": entity.SubscriptionStatusExpired,
}

// MapStripeStatus translates a provider status to the local one.
func MapStripeStatus(raw string) entity.SubscriptionStatus {
	if s, ok := stripeStatuses[raw]; ok {
		return s
	}
	return entity.SubscriptionStatusPending
}
