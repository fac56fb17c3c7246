package bootstrap

import (
	"context"
	"time"

	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/pkg/mailer"
	"ai-voicedesk-be/internal/repository/contract"
	"ai-voicedesk-be/internal/repository/specification"

	"github.com/google/uuid"
)

// The billing reconciler speaks in narrow store interfaces; these
// adapters back them with the repository layer.

type billingSubscriptionStore struct {
	repo contract.SubscriptionRepository
}

func (s *billingSubscriptionStore) FindByStripeID(ctx context.Context, stripeSubscriptionID string) (*entity.UserSubscription, error) {
	return s.repo.FindOneSubscription(ctx, specification.ByStripeSubscriptionId{StripeSubscriptionId: stripeSubscriptionID})
}

func (s *billingSubscriptionStore) FindOccupying(ctx context.Context, userID uuid.UUID) ([]*entity.UserSubscription, error) {
	return s.repo.FindAllSubscriptions(ctx,
		specification.UserOwnedBy{UserID: userID},
		specification.StatusIn{Statuses: []string{
			string(entity.SubscriptionStatusActive),
			string(entity.SubscriptionStatusTrial),
		}},
	)
}

func (s *billingSubscriptionStore) FindPackage(ctx context.Context, packageID uuid.UUID) (*entity.SubscriptionPackage, error) {
	return s.repo.FindOnePackage(ctx, specification.ByID{ID: packageID})
}

func (s *billingSubscriptionStore) Create(ctx context.Context, sub *entity.UserSubscription) error {
	return s.repo.CreateSubscription(ctx, sub)
}

func (s *billingSubscriptionStore) Update(ctx context.Context, sub *entity.UserSubscription) error {
	return s.repo.UpdateSubscription(ctx, sub)
}

type billingTransactionStore struct {
	repo contract.TransactionRepository
}

func (s *billingTransactionStore) LatestPending(ctx context.Context, userID uuid.UUID) (*entity.Transaction, error) {
	return s.repo.FindOne(ctx,
		specification.UserOwnedBy{UserID: userID},
		specification.ByStatus{Status: string(entity.TransactionStatusPending)},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
}

func (s *billingTransactionStore) Update(ctx context.Context, tx *entity.Transaction) error {
	return s.repo.Update(ctx, tx)
}

type billingUserStore struct {
	repo contract.UserRepository
}

func (s *billingUserStore) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return s.repo.FindOne(ctx, specification.ByID{ID: id})
}

func (s *billingUserStore) FindByStripeCustomerID(ctx context.Context, customerID string) (*entity.User, error) {
	return s.repo.FindOne(ctx, specification.Filter("stripe_customer_id", customerID))
}

type billingNotifier struct {
	mail mailer.IEmailService
}

func (n *billingNotifier) SendInvoicePaid(ctx context.Context, user *entity.User, tx *entity.Transaction) error {
	return n.mail.SendInvoicePaid(user.Email, user.Name, tx)
}

func (n *billingNotifier) SendPaymentFailed(ctx context.Context, user *entity.User, tx *entity.Transaction) error {
	return n.mail.SendPaymentFailed(user.Email, user.Name, tx)
}

func (n *billingNotifier) SendSubscriptionCancelled(ctx context.Context, user *entity.User, sub *entity.UserSubscription) error {
	endsAt := ""
	if sub.EndsAt != nil {
		endsAt = sub.EndsAt.Format(time.RFC1123)
	}
	return n.mail.SendSubscriptionCancelled(user.Email, user.Name, endsAt)
}
