package unitofwork

import (
	"context"

	"ai-voicedesk-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	AssistantRepository() contract.AssistantRepository
	CallLogRepository() contract.CallLogRepository
	SubscriptionRepository() contract.SubscriptionRepository
	TransactionRepository() contract.TransactionRepository
	SettingRepository() contract.SettingRepository
}
