package model

import (
	"time"

	"github.com/google/uuid"
)

type Transaction struct {
	Id                    uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId                uuid.UUID  `gorm:"type:uuid;not null;index"`
	SubscriptionId        *uuid.UUID `gorm:"type:uuid;index"`
	PackageId             uuid.UUID  `gorm:"type:uuid;not null"`
	Amount                float64    `gorm:"type:decimal(10,2);not null"`
	Currency              string     `gorm:"type:varchar(10);not null;default:'USD'"`
	Status                string     `gorm:"type:varchar(50);not null;index"`
	Type                  string     `gorm:"type:varchar(50);not null"`
	PaymentMethod         string     `gorm:"type:varchar(50);not null"`
	ExternalTransactionId *string    `gorm:"type:varchar(255);index"`
	BillingEmail          string     `gorm:"type:varchar(255)"`
	BillingName           string     `gorm:"type:varchar(255)"`
	Description           string     `gorm:"type:text"`
	ProcessedAt           *time.Time ``
	FailedAt              *time.Time ``
	CreatedAt             time.Time  `gorm:"autoCreateTime"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}
