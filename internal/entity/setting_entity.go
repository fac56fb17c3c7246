package entity

import (
	"time"

	"github.com/google/uuid"
)

type Setting struct {
	Id        uuid.UUID
	Key       string
	Value     string
	Type      string // string, boolean, integer, json
	Group     string // general, templates, notifications
	CreatedAt time.Time
	UpdatedAt time.Time
}
