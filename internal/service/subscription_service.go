package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-voicedesk-be/internal/dto"
	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/pkg/logger"
	"ai-voicedesk-be/internal/repository/specification"
	"ai-voicedesk-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type ISubscriptionService interface {
	ListPackages(ctx context.Context) ([]dto.PackageResponse, error)
	Current(ctx context.Context, userID uuid.UUID) (*dto.SubscriptionResponse, error)
	Subscribe(ctx context.Context, userID uuid.UUID, req *dto.SubscribeRequest) (*dto.SubscribeResponse, error)
	Cancel(ctx context.Context, userID uuid.UUID) (*dto.SubscriptionResponse, error)
	Usage(ctx context.Context, userID uuid.UUID) (*dto.UsageResponse, error)
	Transactions(ctx context.Context, userID uuid.UUID) ([]dto.TransactionResponse, error)
}

// PaymentGateway is the billing-provider surface the subscribe flow
// needs. *stripeclient.Client satisfies it.
type PaymentGateway interface {
	EnsureCustomer(ctx context.Context, userID, email, name string) (string, error)
	CreateSubscription(ctx context.Context, customerID, priceID string, metadata map[string]string) (subscriptionID, clientSecret string, err error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

type subscriptionService struct {
	uowFactory unitofwork.RepositoryFactory
	payments   PaymentGateway
	log        logger.ILogger
}

func NewSubscriptionService(uowFactory unitofwork.RepositoryFactory, payments PaymentGateway, log logger.ILogger) ISubscriptionService {
	return &subscriptionService{uowFactory: uowFactory, payments: payments, log: log}
}

func (s *subscriptionService) ListPackages(ctx context.Context) ([]dto.PackageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	packages, err := uow.SubscriptionRepository().FindAllPackages(ctx,
		specification.ActiveOnly{},
		specification.OrderBy{Field: "sort_order"},
	)
	if err != nil {
		return nil, err
	}

	out := make([]dto.PackageResponse, len(packages))
	for i, pkg := range packages {
		out[i] = toPackageResponse(pkg)
	}
	return out, nil
}

func (s *subscriptionService) Current(ctx context.Context, userID uuid.UUID) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub, err := s.occupying(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, nil
	}

	pkg, err := uow.SubscriptionRepository().FindOnePackage(ctx, specification.ByID{ID: sub.PackageId})
	if err != nil {
		return nil, err
	}
	res := toSubscriptionResponse(sub, pkg)
	return &res, nil
}

// Subscribe creates a provider subscription in default_incomplete mode
// plus a local pending subscription and transaction. Activation happens
// when the invoice.payment_succeeded webhook lands, not here.
func (s *subscriptionService) Subscribe(ctx context.Context, userID uuid.UUID, req *dto.SubscribeRequest) (*dto.SubscribeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	pkg, err := uow.SubscriptionRepository().FindOnePackage(ctx, specification.ByID{ID: req.PackageId})
	if err != nil {
		return nil, err
	}
	if pkg == nil || !pkg.IsActive {
		return nil, errors.New("package not found")
	}
	if pkg.StripePriceId == nil || *pkg.StripePriceId == "" {
		return nil, fmt.Errorf("package %s has no billing price configured", pkg.Slug)
	}

	existing, err := s.occupying(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.PackageId == pkg.Id {
		return nil, errors.New("already subscribed to this package")
	}

	customerID, err := s.payments.EnsureCustomer(ctx, userID.String(), user.Email, user.Name)
	if err != nil {
		return nil, fmt.Errorf("billing customer setup failed: %w", err)
	}
	if user.StripeCustomerId == nil || *user.StripeCustomerId != customerID {
		user.StripeCustomerId = &customerID
		if err := uow.UserRepository().Update(ctx, user); err != nil {
			return nil, err
		}
	}

	stripeSubID, clientSecret, err := s.payments.CreateSubscription(ctx, customerID, *pkg.StripePriceId, map[string]string{
		"user_id":    userID.String(),
		"package_id": pkg.Id.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("billing subscription create failed: %w", err)
	}

	now := time.Now()
	sub := &entity.UserSubscription{
		Id:                   uuid.New(),
		UserId:               userID,
		PackageId:            pkg.Id,
		Status:               entity.SubscriptionStatusPending,
		CurrentPeriodStart:   now,
		CurrentPeriodEnd:     now.AddDate(0, 1, 0),
		StripeSubscriptionId: &stripeSubID,
		StripeCustomerId:     &customerID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := uow.SubscriptionRepository().CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}

	tx := &entity.Transaction{
		Id:             uuid.New(),
		UserId:         userID,
		SubscriptionId: &sub.Id,
		PackageId:      pkg.Id,
		Amount:         pkg.Price,
		Currency:       "USD",
		Status:         entity.TransactionStatusPending,
		Type:           entity.TransactionTypeSubscription,
		PaymentMethod:  entity.PaymentMethodStripe,
		BillingEmail:   user.Email,
		BillingName:    user.Name,
		Description:    fmt.Sprintf("Subscription to %s", pkg.Name),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uow.TransactionRepository().Create(ctx, tx); err != nil {
		return nil, err
	}

	return &dto.SubscribeResponse{
		SubscriptionId:       sub.Id,
		StripeSubscriptionId: stripeSubID,
		ClientSecret:         clientSecret,
		Status:               string(sub.Status),
	}, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, userID uuid.UUID) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub, err := s.occupying(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, errors.New("no active subscription")
	}

	// Provider cancellation is at period end; access runs until then.
	if sub.StripeSubscriptionId != nil {
		if err := s.payments.CancelSubscription(ctx, *sub.StripeSubscriptionId); err != nil {
			return nil, fmt.Errorf("billing cancellation failed: %w", err)
		}
	}

	now := time.Now()
	endsAt := sub.CurrentPeriodEnd
	sub.CancelledAt = &now
	sub.EndsAt = &endsAt
	sub.UpdatedAt = now
	if err := uow.SubscriptionRepository().UpdateSubscription(ctx, sub); err != nil {
		return nil, err
	}

	pkg, err := uow.SubscriptionRepository().FindOnePackage(ctx, specification.ByID{ID: sub.PackageId})
	if err != nil {
		return nil, err
	}
	res := toSubscriptionResponse(sub, pkg)
	return &res, nil
}

func (s *subscriptionService) Usage(ctx context.Context, userID uuid.UUID) (*dto.UsageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	agentsLimit, minutesLimit := 0, 0
	if sub, err := s.occupying(ctx, uow, userID); err != nil {
		return nil, err
	} else if sub != nil {
		pkg, err := uow.SubscriptionRepository().FindOnePackage(ctx, specification.ByID{ID: sub.PackageId})
		if err != nil {
			return nil, err
		}
		if pkg != nil {
			agentsLimit = pkg.VoiceAgentsLimit
			minutesLimit = pkg.MonthlyMinutesLimit
		}
	}

	agents, err := uow.AssistantRepository().Count(ctx, specification.UserOwnedBy{UserID: userID})
	if err != nil {
		return nil, err
	}

	monthStart := time.Now().UTC().Truncate(24 * time.Hour)
	monthStart = time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)
	stats, err := uow.CallLogRepository().Stats(ctx,
		specification.UserOwnedBy{UserID: userID},
		specification.StartedBetween{From: monthStart, To: monthStart.AddDate(0, 1, 0)},
	)
	if err != nil {
		return nil, err
	}

	return &dto.UsageResponse{
		VoiceAgentsUsed:     agents,
		VoiceAgentsLimit:    agentsLimit,
		MinutesUsed:         stats.TotalDuration / 60,
		MonthlyMinutesLimit: minutesLimit,
	}, nil
}

func (s *subscriptionService) Transactions(ctx context.Context, userID uuid.UUID) ([]dto.TransactionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	txs, err := uow.TransactionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userID},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	out := make([]dto.TransactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = dto.TransactionResponse{
			Id:          tx.Id,
			Amount:      tx.Amount,
			Currency:    tx.Currency,
			Status:      string(tx.Status),
			Description: tx.Description,
			ProcessedAt: tx.ProcessedAt,
			CreatedAt:   tx.CreatedAt,
		}
	}
	return out, nil
}

// occupying returns the user's active or trial subscription, newest
// first, or nil when none occupies the account.
func (s *subscriptionService) occupying(ctx context.Context, uow unitofwork.UnitOfWork, userID uuid.UUID) (*entity.UserSubscription, error) {
	return uow.SubscriptionRepository().FindOneSubscription(ctx,
		specification.UserOwnedBy{UserID: userID},
		specification.StatusIn{Statuses: []string{
			string(entity.SubscriptionStatusActive),
			string(entity.SubscriptionStatusTrial),
		}},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
}

func toPackageResponse(p *entity.SubscriptionPackage) dto.PackageResponse {
	return dto.PackageResponse{
		Id:                  p.Id,
		Name:                p.Name,
		Slug:                p.Slug,
		Description:         p.Description,
		Price:               p.Price,
		VoiceAgentsLimit:    p.VoiceAgentsLimit,
		MonthlyMinutesLimit: p.MonthlyMinutesLimit,
		Features:            p.Features,
		SupportLevel:        p.SupportLevel,
		AnalyticsLevel:      p.AnalyticsLevel,
		IsPopular:           p.IsPopular,
	}
}

func toSubscriptionResponse(sub *entity.UserSubscription, pkg *entity.SubscriptionPackage) dto.SubscriptionResponse {
	res := dto.SubscriptionResponse{
		Id:                 sub.Id,
		Status:             string(sub.Status),
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		TrialEndsAt:        sub.TrialEndsAt,
		CancelledAt:        sub.CancelledAt,
		EndsAt:             sub.EndsAt,
	}
	if pkg != nil {
		p := toPackageResponse(pkg)
		res.Package = &p
	}
	return res
}
