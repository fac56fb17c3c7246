package implementation

import (
	"context"
	"errors"

	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/mapper"
	"ai-voicedesk-be/internal/model"
	"ai-voicedesk-be/internal/repository/contract"
	"ai-voicedesk-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewSubscriptionRepository(db *gorm.DB) contract.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

func (r *SubscriptionRepositoryImpl) CreatePackage(ctx context.Context, pkg *entity.SubscriptionPackage) error {
	m := r.mapper.PackageToModel(pkg)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*pkg = *r.mapper.PackageToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) UpdatePackage(ctx context.Context, pkg *entity.SubscriptionPackage) error {
	m := r.mapper.PackageToModel(pkg)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*pkg = *r.mapper.PackageToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) DeletePackage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.SubscriptionPackage{}, id).Error
}

func (r *SubscriptionRepositoryImpl) FindOnePackage(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionPackage, error) {
	var m model.SubscriptionPackage
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PackageToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) FindAllPackages(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionPackage, error) {
	var models []*model.SubscriptionPackage
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.SubscriptionPackage, len(models))
	for i, m := range models {
		entities[i] = r.mapper.PackageToEntity(m)
	}
	return entities, nil
}

func (r *SubscriptionRepositoryImpl) CreateSubscription(ctx context.Context, sub *entity.UserSubscription) error {
	m := r.mapper.SubscriptionToModel(sub)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*sub = *r.mapper.SubscriptionToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) UpdateSubscription(ctx context.Context, sub *entity.UserSubscription) error {
	m := r.mapper.SubscriptionToModel(sub)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*sub = *r.mapper.SubscriptionToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) FindOneSubscription(ctx context.Context, specs ...specification.Specification) (*entity.UserSubscription, error) {
	var m model.UserSubscription
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SubscriptionToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) FindAllSubscriptions(ctx context.Context, specs ...specification.Specification) ([]*entity.UserSubscription, error) {
	var models []*model.UserSubscription
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.UserSubscription, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SubscriptionToEntity(m)
	}
	return entities, nil
}

func (r *SubscriptionRepositoryImpl) CountActiveSubscribers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UserSubscription{}).
		Where("status IN ?", []string{string(entity.SubscriptionStatusActive), string(entity.SubscriptionStatusTrial)}).
		Distinct("user_id").
		Count(&count).Error
	return count, err
}
