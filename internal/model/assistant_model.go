package model

import (
	"time"

	"github.com/google/uuid"
)

type Assistant struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedBy       uuid.UUID `gorm:"type:uuid;not null"`
	VapiAssistantId string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name            string    `gorm:"type:varchar(255);not null"`
	Type            string    `gorm:"type:varchar(50);not null;default:'production'"`
	PhoneNumber     *string   `gorm:"type:varchar(50)"`
	WebhookURL      *string   `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (Assistant) TableName() string {
	return "assistants"
}
