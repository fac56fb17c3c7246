package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SubscriptionPackage struct {
	Id                  uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name                string                      `gorm:"type:varchar(255);not null"`
	Slug                string                      `gorm:"type:varchar(255);uniqueIndex;not null"`
	Description         string                      `gorm:"type:text"`
	Price               float64                     `gorm:"type:decimal(10,2);not null"`
	VoiceAgentsLimit    int                         `gorm:"default:1"` // -1 = unlimited
	MonthlyMinutesLimit int                         `gorm:"default:100"`
	Features            datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	StripePriceId       *string                     `gorm:"type:varchar(255)"`
	SupportLevel        string                      `gorm:"type:varchar(50)"`
	AnalyticsLevel      string                      `gorm:"type:varchar(50)"`
	IsPopular           bool                        `gorm:"default:false"`
	IsActive            bool                        `gorm:"default:true"`
	SortOrder           int                         `gorm:"default:0"`
	CreatedAt           time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt           time.Time                   `gorm:"autoUpdateTime"`
}

func (SubscriptionPackage) TableName() string {
	return "subscription_packages"
}

type UserSubscription struct {
	Id                   uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId               uuid.UUID         `gorm:"type:uuid;not null;index"`
	PackageId            uuid.UUID         `gorm:"type:uuid;not null;index"`
	Status               string            `gorm:"type:varchar(50);not null;index"`
	CurrentPeriodStart   time.Time         `gorm:"not null"`
	CurrentPeriodEnd     time.Time         `gorm:"not null"`
	TrialEndsAt          *time.Time        ``
	CancelledAt          *time.Time        ``
	EndsAt               *time.Time        ``
	StripeSubscriptionId *string           `gorm:"type:varchar(255);uniqueIndex"`
	StripeCustomerId     *string           `gorm:"type:varchar(255);index"`
	Metadata             datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt            time.Time         `gorm:"autoCreateTime"`
	UpdatedAt            time.Time         `gorm:"autoUpdateTime"`
}

func (UserSubscription) TableName() string {
	return "user_subscriptions"
}
