package entity

import (
	"time"

	"github.com/google/uuid"
)

type CallStatus string
type CallDirection string

const (
	CallStatusInitiated  CallStatus = "initiated"
	CallStatusRinging    CallStatus = "ringing"
	CallStatusInProgress CallStatus = "in-progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
	CallStatusBusy       CallStatus = "busy"
	CallStatusNoAnswer   CallStatus = "no-answer"
	CallStatusCancelled  CallStatus = "cancelled"

	CallDirectionInbound  CallDirection = "inbound"
	CallDirectionOutbound CallDirection = "outbound"
)

// callStatusRanks orders the call lifecycle: initiated < ringing <
// in-progress < any terminal state. A record's status never moves to a
// lower rank, and a terminal status is never replaced.
var callStatusRanks = map[CallStatus]int{
	CallStatusInitiated:  0,
	CallStatusRinging:    1,
	CallStatusInProgress: 2,
	CallStatusCompleted:  3,
	CallStatusFailed:     3,
	CallStatusBusy:       3,
	CallStatusNoAnswer:   3,
	CallStatusCancelled:  3,
}

// Rank returns the lifecycle rank of s. Unknown statuses rank lowest.
func (s CallStatus) Rank() int {
	return callStatusRanks[s]
}

// IsTerminal reports whether s is an absorbing end state.
func (s CallStatus) IsTerminal() bool {
	return callStatusRanks[s] == 3
}

// ValidCallStatus reports whether s is one of the canonical statuses.
func ValidCallStatus(s CallStatus) bool {
	_, ok := callStatusRanks[s]
	return ok
}

// CallLog is the canonical local record of one phone call handled by the
// voice-AI provider. CallId is the provider call id and the natural key:
// every event for the same CallId merges into the same row.
type CallLog struct {
	Id           uuid.UUID
	CallId       string
	AssistantId  uuid.UUID
	UserId       uuid.UUID
	PhoneNumber  *string
	CallerNumber *string
	Direction    CallDirection
	Status       CallStatus
	StartTime    *time.Time
	EndTime      *time.Time
	Duration     *int // seconds
	Transcript   *string
	Summary      *string
	Cost         *float64
	Currency     string
	RecordingURL *string
	Metadata     map[string]interface{}
	WebhookData  map[string]interface{}
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (c *CallLog) IsCompleted() bool {
	return c.Status == CallStatusCompleted
}

func (c *CallLog) IsFailed() bool {
	switch c.Status {
	case CallStatusFailed, CallStatusBusy, CallStatusNoAnswer:
		return true
	}
	return false
}
