package model

import (
	"time"

	"github.com/google/uuid"
)

type Setting struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Key       string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Value     string    `gorm:"type:text"`
	Type      string    `gorm:"type:varchar(50);not null;default:'string'"`
	Group     string    `gorm:"type:varchar(100);not null;default:'general';column:group_name"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Setting) TableName() string {
	return "settings"
}
