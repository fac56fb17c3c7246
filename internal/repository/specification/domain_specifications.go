package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ByCallId struct {
	CallId string
}

func (s ByCallId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("call_id = ?", s.CallId)
}

type ByVapiAssistantId struct {
	VapiAssistantId string
}

func (s ByVapiAssistantId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("vapi_assistant_id = ?", s.VapiAssistantId)
}

type ByStripeSubscriptionId struct {
	StripeSubscriptionId string
}

func (s ByStripeSubscriptionId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("stripe_subscription_id = ?", s.StripeSubscriptionId)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type StatusIn struct {
	Statuses []string
}

func (s StatusIn) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", s.Statuses)
}

type BySlug struct {
	Slug string
}

func (s BySlug) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("slug = ?", s.Slug)
}

type ByKey struct {
	Key string
}

func (s ByKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("key = ?", s.Key)
}

type StartedBetween struct {
	From time.Time
	To   time.Time
}

func (s StartedBetween) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("start_time >= ? AND start_time < ?", s.From, s.To)
}

type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}
