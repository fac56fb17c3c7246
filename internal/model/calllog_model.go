package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CallLog rows are keyed naturally by call_id; the unique index backs the
// ON CONFLICT upsert in the repository.
type CallLog struct {
	Id           uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CallId       string            `gorm:"type:varchar(255);uniqueIndex;not null"`
	AssistantId  uuid.UUID         `gorm:"type:uuid;not null;index"`
	UserId       uuid.UUID         `gorm:"type:uuid;not null;index"`
	PhoneNumber  *string           `gorm:"type:varchar(50)"`
	CallerNumber *string           `gorm:"type:varchar(50)"`
	Direction    string            `gorm:"type:varchar(20);not null;default:'inbound'"`
	Status       string            `gorm:"type:varchar(20);not null;default:'initiated';index"`
	StartTime    *time.Time        `gorm:"index"`
	EndTime      *time.Time        ``
	Duration     *int              ``
	Transcript   *string           `gorm:"type:text"`
	Summary      *string           `gorm:"type:text"`
	Cost         *float64          `gorm:"type:decimal(10,4)"`
	Currency     string            `gorm:"type:varchar(10);not null;default:'USD'"`
	RecordingURL *string           `gorm:"type:text"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb"`
	WebhookData  datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt    time.Time         `gorm:"autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime"`
}

func (CallLog) TableName() string {
	return "call_logs"
}
