package contract

import (
	"context"

	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/repository/specification"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	Update(ctx context.Context, tx *entity.Transaction) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Transaction, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Transaction, error)
}
