package entity

import (
	"time"

	"github.com/google/uuid"
)

type AssistantType string

const (
	AssistantTypeDemo       AssistantType = "demo"
	AssistantTypeProduction AssistantType = "production"
)

// Assistant is the local mapping row for an assistant managed in the
// voice-AI provider. VapiAssistantId is the provider-side identifier that
// webhook payloads and the sync job reference.
type Assistant struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	CreatedBy       uuid.UUID
	VapiAssistantId string
	Name            string
	Type            AssistantType
	PhoneNumber     *string
	WebhookURL      *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (a *Assistant) IsDemo() bool {
	return a.Type == AssistantTypeDemo
}
