package contract

import (
	"context"

	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/repository/specification"
)

type SettingRepository interface {
	Upsert(ctx context.Context, setting *entity.Setting) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Setting, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Setting, error)
}
