package entity

import (
	"time"

	"github.com/google/uuid"
)

type TransactionStatus string
type TransactionType string
type PaymentMethod string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusRefunded  TransactionStatus = "refunded"
	TransactionStatusCancelled TransactionStatus = "cancelled"

	TransactionTypeSubscription TransactionType = "subscription"
	TransactionTypeOneTime      TransactionType = "one_time"

	PaymentMethodStripe PaymentMethod = "stripe"
)

// Transaction records one payment attempt. Append-mostly: a completed
// transaction is immutable; only refunds produce a further transition.
type Transaction struct {
	Id                    uuid.UUID
	UserId                uuid.UUID
	SubscriptionId        *uuid.UUID
	PackageId             uuid.UUID
	Amount                float64
	Currency              string
	Status                TransactionStatus
	Type                  TransactionType
	PaymentMethod         PaymentMethod
	ExternalTransactionId *string
	BillingEmail          string
	BillingName           string
	Description           string
	ProcessedAt           *time.Time
	FailedAt              *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (t *Transaction) IsPending() bool {
	return t.Status == TransactionStatusPending
}

func (t *Transaction) IsCompleted() bool {
	return t.Status == TransactionStatusCompleted
}
