package mapper

import (
	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/model"
)

type TransactionMapper struct{}

func NewTransactionMapper() *TransactionMapper {
	return &TransactionMapper{}
}

func (m *TransactionMapper) ToEntity(t *model.Transaction) *entity.Transaction {
	if t == nil {
		return nil
	}
	return &entity.Transaction{
		Id:                    t.Id,
		UserId:                t.UserId,
		SubscriptionId:        t.SubscriptionId,
		PackageId:             t.PackageId,
		Amount:                t.Amount,
		Currency:              t.Currency,
		Status:                entity.TransactionStatus(t.Status),
		Type:                  entity.TransactionType(t.Type),
		PaymentMethod:         entity.PaymentMethod(t.PaymentMethod),
		ExternalTransactionId: t.ExternalTransactionId,
		BillingEmail:          t.BillingEmail,
		BillingName:           t.BillingName,
		Description:           t.Description,
		ProcessedAt:           t.ProcessedAt,
		FailedAt:              t.FailedAt,
		CreatedAt:             t.CreatedAt,
		UpdatedAt:             t.UpdatedAt,
	}
}

func (m *TransactionMapper) ToModel(t *entity.Transaction) *model.Transaction {
	if t == nil {
		return nil
	}
	return &model.Transaction{
		Id:                    t.Id,
		UserId:                t.UserId,
		SubscriptionId:        t.SubscriptionId,
		PackageId:             t.PackageId,
		Amount:                t.Amount,
		Currency:              t.Currency,
		Status:                string(t.Status),
		Type:                  string(t.Type),
		PaymentMethod:         string(t.PaymentMethod),
		ExternalTransactionId: t.ExternalTransactionId,
		BillingEmail:          t.BillingEmail,
		BillingName:           t.BillingName,
		Description:           t.Description,
		ProcessedAt:           t.ProcessedAt,
		FailedAt:              t.FailedAt,
		CreatedAt:             t.CreatedAt,
		UpdatedAt:             t.UpdatedAt,
	}
}
