package billing

import (
	"context"
	"fmt"
	"time"

	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// SubscriptionStore is the slice of the subscription repository the
// reconciler needs. Lookups return (nil, nil) when nothing matches.
type SubscriptionStore interface {
	FindByStripeID(ctx context.Context, stripeSubscriptionID string) (*entity.UserSubscription, error)
	FindOccupying(ctx context.Context, userID uuid.UUID) ([]*entity.UserSubscription, error)
	FindPackage(ctx context.Context, packageID uuid.UUID) (*entity.SubscriptionPackage, error)
	Create(ctx context.Context, sub *entity.UserSubscription) error
	Update(ctx context.Context, sub *entity.UserSubscription) error
}

type TransactionStore interface {
	LatestPending(ctx context.Context, userID uuid.UUID) (*entity.Transaction, error)
	Update(ctx context.Context, tx *entity.Transaction) error
}

type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByStripeCustomerID(ctx context.Context, customerID string) (*entity.User, error)
}

// BillingClient re-fetches authoritative subscription state from the
// provider. Webhook payloads can be stale relative to the API.
type BillingClient interface {
	RetrieveSubscription(ctx context.Context, stripeSubscriptionID string) (*SubscriptionEvent, error)
}

// Notifier sends billing emails. Failures are logged, never propagated:
// mail must not make the provider redeliver a processed event.
type Notifier interface {
	SendInvoicePaid(ctx context.Context, user *entity.User, tx *entity.Transaction) error
	SendPaymentFailed(ctx context.Context, user *entity.User, tx *entity.Transaction) error
	SendSubscriptionCancelled(ctx context.Context, user *entity.User, sub *entity.UserSubscription) error
}

// Reconciler applies provider billing events to the local subscription
// and transaction tables. The provider is the source of truth for
// subscription state; local rows follow it, constrained only by the
// lifecycle guard (a cancelled or expired row never leaves its state).
type Reconciler struct {
	subs   SubscriptionStore
	txs    TransactionStore
	users  UserStore
	client BillingClient
	mail   Notifier
	log    logger.ILogger
	now    func() time.Time
}

func NewReconciler(subs SubscriptionStore, txs TransactionStore, users UserStore, client BillingClient, mail Notifier, log logger.ILogger) *Reconciler {
	return &Reconciler{
		subs:   subs,
		txs:    txs,
		users:  users,
		client: client,
		mail:   mail,
		log:    log,
		now:    time.Now,
	}
}

// HandleSubscriptionUpserted processes customer.subscription.created and
// .updated. An unknown stripe_subscription_id creates the local row from
// event metadata, which covers the webhook-before-local race where the
// provider delivers before the checkout handler commits.
func (r *Reconciler) HandleSubscriptionUpserted(ctx context.Context, ev SubscriptionEvent) error {
	sub, err := r.subs.FindByStripeID(ctx, ev.SubscriptionID)
	if err != nil {
		return err
	}
	if sub == nil {
		return r.createFromEvent(ctx, ev)
	}

	sub.CurrentPeriodStart = ev.CurrentPeriodStart
	sub.CurrentPeriodEnd = ev.CurrentPeriodEnd
	sub.TrialEndsAt = ev.TrialEnd
	if ev.CancelAtPeriodEnd {
		end := ev.CurrentPeriodEnd
		sub.EndsAt = &end
	}

	target := MapStripeStatus(ev.Status)
	if target != sub.Status && sub.Status.CanTransitionTo(target) {
		if target == entity.SubscriptionStatusCancelled {
			now := r.now()
			sub.CancelledAt = &now
		}
		sub.Status = target
	}

	if sub.Occupies() {
		return r.ActivateExclusively(ctx, sub)
	}
	return r.subs.Update(ctx, sub)
}

func (r *Reconciler) createFromEvent(ctx context.Context, ev SubscriptionEvent) error {
	user, err := r.resolveOwner(ctx, ev)
	if err != nil {
		return err
	}

	packageID, err := uuid.Parse(ev.Metadata["package_id"])
	if err != nil {
		r.log.Warn("billing", "subscription event without usable package metadata", map[string]interface{}{
			"stripe_subscription_id": ev.SubscriptionID,
		})
		return ErrUnknownSubscriptionOwner
	}
	pkg, err := r.subs.FindPackage(ctx, packageID)
	if err != nil {
		return err
	}
	if pkg == nil {
		return ErrUnknownPackage
	}

	subscriptionID := ev.SubscriptionID
	sub := &entity.UserSubscription{
		UserId:               user.Id,
		PackageId:            pkg.Id,
		Status:               entity.SubscriptionStatusPending,
		CurrentPeriodStart:   ev.CurrentPeriodStart,
		CurrentPeriodEnd:     ev.CurrentPeriodEnd,
		TrialEndsAt:          ev.TrialEnd,
		StripeSubscriptionId: &subscriptionID,
		StripeCustomerId:     optID(ev.CustomerID),
	}

	target := MapStripeStatus(ev.Status)
	if sub.Status.CanTransitionTo(target) {
		sub.Status = target
	}

	if err := r.subs.Create(ctx, sub); err != nil {
		return err
	}
	if sub.Occupies() {
		return r.ActivateExclusively(ctx, sub)
	}
	return nil
}

func (r *Reconciler) resolveOwner(ctx context.Context, ev SubscriptionEvent) (*entity.User, error) {
	if raw := ev.Metadata["user_id"]; raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			user, err := r.users.FindByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if user != nil {
				return user, nil
			}
		}
	}
	if ev.CustomerID != "" {
		user, err := r.users.FindByStripeCustomerID(ctx, ev.CustomerID)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return user, nil
		}
	}
	r.log.Warn("billing", "dropping subscription event with no resolvable owner", map[string]interface{}{
		"stripe_subscription_id": ev.SubscriptionID,
		"stripe_customer_id":     ev.CustomerID,
	})
	return nil, ErrUnknownSubscriptionOwner
}

// HandleSubscriptionDeleted processes customer.subscription.deleted.
// Already-cancelled rows make this a no-op, so redelivery is safe.
func (r *Reconciler) HandleSubscriptionDeleted(ctx context.Context, ev SubscriptionEvent) error {
	sub, err := r.subs.FindByStripeID(ctx, ev.SubscriptionID)
	if err != nil {
		return err
	}
	if sub == nil {
		r.log.Warn("billing", "delete event for unknown subscription", map[string]interface{}{
			"stripe_subscription_id": ev.SubscriptionID,
		})
		return nil
	}
	if sub.Status.IsTerminal() {
		return nil
	}

	now := r.now()
	end := sub.CurrentPeriodEnd
	sub.Status = entity.SubscriptionStatusCancelled
	sub.CancelledAt = &now
	sub.EndsAt = &end
	if err := r.subs.Update(ctx, sub); err != nil {
		return err
	}

	if user, err := r.users.FindByID(ctx, sub.UserId); err == nil && user != nil {
		if err := r.mail.SendSubscriptionCancelled(ctx, user, sub); err != nil {
			r.log.Warn("billing", "cancellation email failed", map[string]interface{}{
				"user_id": user.Id.String(), "error": err.Error(),
			})
		}
	}
	return nil
}

// HandleInvoicePaid processes invoice.payment_succeeded: it re-fetches
// the authoritative billing period, activates the subscription, settles
// the latest pending transaction and sends the invoice email.
func (r *Reconciler) HandleInvoicePaid(ctx context.Context, ev InvoiceEvent) error {
	if ev.SubscriptionID == "" {
		return nil // one-time invoice, nothing to reconcile
	}

	fresh, err := r.client.RetrieveSubscription(ctx, ev.SubscriptionID)
	if err != nil {
		return err
	}

	sub, err := r.subs.FindByStripeID(ctx, ev.SubscriptionID)
	if err != nil {
		return err
	}
	if sub == nil {
		if err := r.createFromEvent(ctx, *fresh); err != nil {
			return err
		}
		if sub, err = r.subs.FindByStripeID(ctx, ev.SubscriptionID); err != nil {
			return err
		}
		if sub == nil {
			return fmt.Errorf("subscription %s not found after create", ev.SubscriptionID)
		}
	}

	sub.CurrentPeriodStart = fresh.CurrentPeriodStart
	sub.CurrentPeriodEnd = fresh.CurrentPeriodEnd
	if sub.Status.CanTransitionTo(entity.SubscriptionStatusActive) {
		sub.Status = entity.SubscriptionStatusActive
	}
	if err := r.ActivateExclusively(ctx, sub); err != nil {
		return err
	}

	tx, err := r.txs.LatestPending(ctx, sub.UserId)
	if err != nil {
		return err
	}
	if tx != nil {
		now := r.now()
		charge := ev.ChargeID
		if charge == "" {
			charge = ev.InvoiceID
		}
		tx.Status = entity.TransactionStatusCompleted
		tx.ExternalTransactionId = &charge
		tx.ProcessedAt = &now
		if err := r.txs.Update(ctx, tx); err != nil {
			return err
		}

		if user, err := r.users.FindByID(ctx, sub.UserId); err == nil && user != nil {
			if err := r.mail.SendInvoicePaid(ctx, user, tx); err != nil {
				r.log.Warn("billing", "invoice email failed", map[string]interface{}{
					"user_id": user.Id.String(), "error": err.Error(),
				})
			}
		}
	}

	r.log.Info("billing", "invoice reconciled", map[string]interface{}{
		"stripe_subscription_id": ev.SubscriptionID,
		"invoice_id":             ev.InvoiceID,
	})
	return nil
}

// HandleInvoiceFailed processes invoice.payment_failed. The subscription
// itself is left alone: the provider retries the charge and a terminal
// outcome arrives later as a subscription event.
func (r *Reconciler) HandleInvoiceFailed(ctx context.Context, ev InvoiceEvent) error {
	sub, err := r.subs.FindByStripeID(ctx, ev.SubscriptionID)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}

	tx, err := r.txs.LatestPending(ctx, sub.UserId)
	if err != nil {
		return err
	}
	if tx == nil {
		return nil
	}

	now := r.now()
	tx.Status = entity.TransactionStatusFailed
	tx.FailedAt = &now
	if err := r.txs.Update(ctx, tx); err != nil {
		return err
	}

	if user, err := r.users.FindByID(ctx, sub.UserId); err == nil && user != nil {
		if err := r.mail.SendPaymentFailed(ctx, user, tx); err != nil {
			r.log.Warn("billing", "payment-failed email failed", map[string]interface{}{
				"user_id": user.Id.String(), "error": err.Error(),
			})
		}
	}
	return nil
}

// ActivateExclusively persists sub and cancels every other active or
// trial subscription of the same user, keeping the one-occupying-row
// invariant.
func (r *Reconciler) ActivateExclusively(ctx context.Context, sub *entity.UserSubscription) error {
	others, err := r.subs.FindOccupying(ctx, sub.UserId)
	if err != nil {
		return err
	}
	now := r.now()
	for _, other := range others {
		if other.Id == sub.Id {
			continue
		}
		end := other.CurrentPeriodEnd
		other.Status = entity.SubscriptionStatusCancelled
		other.CancelledAt = &now
		other.EndsAt = &end
		if err := r.subs.Update(ctx, other); err != nil {
			return err
		}
		r.log.Info("billing", "superseded subscription cancelled", map[string]interface{}{
			"subscription_id": other.Id.String(),
			"user_id":         sub.UserId.String(),
		})
	}
	return r.subs.Update(ctx, sub)
}

func optID(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
