package contract

import (
	"context"

	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/repository/specification"

	"github.com/google/uuid"
)

type AssistantRepository interface {
	Create(ctx context.Context, assistant *entity.Assistant) error
	Update(ctx context.Context, assistant *entity.Assistant) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Assistant, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Assistant, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
