package contract

import (
	"context"

	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SubscriptionRepository interface {
	// Packages
	CreatePackage(ctx context.Context, pkg *entity.SubscriptionPackage) error
	UpdatePackage(ctx context.Context, pkg *entity.SubscriptionPackage) error
	DeletePackage(ctx context.Context, id uuid.UUID) error
	FindOnePackage(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionPackage, error)
	FindAllPackages(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionPackage, error)

	// User subscriptions
	CreateSubscription(ctx context.Context, sub *entity.UserSubscription) error
	UpdateSubscription(ctx context.Context, sub *entity.UserSubscription) error
	FindOneSubscription(ctx context.Context, specs ...specification.Specification) (*entity.UserSubscription, error)
	FindAllSubscriptions(ctx context.Context, specs ...specification.Specification) ([]*entity.UserSubscription, error)
	CountActiveSubscribers(ctx context.Context) (int64, error)
}
