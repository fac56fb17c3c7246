package events

import "time"

// Event type codes published on the bus.
const (
	TypeUserRegistered        = "USER_REGISTERED"
	TypeCallCompleted         = "CALL_COMPLETED"
	TypeSubscriptionActivated = "SUBSCRIPTION_ACTIVATED"
	TypeSubscriptionCancelled = "SUBSCRIPTION_CANCELLED"
	TypePaymentFailed         = "PAYMENT_FAILED"
)

func NewUserRegisteredEvent(userID, email string) Event {
	return BaseEvent{
		Type: TypeUserRegistered,
		Data: map[string]interface{}{
			"user_id": userID,
			"email":   email,
		},
		OccurredAt: time.Now(),
	}
}

func NewCallCompletedEvent(callID, assistantID, userID, status string, durationSeconds int) Event {
	return BaseEvent{
		Type: TypeCallCompleted,
		Data: map[string]interface{}{
			"call_id":      callID,
			"assistant_id": assistantID,
			"user_id":      userID,
			"status":       status,
			"duration":     durationSeconds,
		},
		OccurredAt: time.Now(),
	}
}

func NewSubscriptionActivatedEvent(subscriptionID, userID, packageID string) Event {
	return BaseEvent{
		Type: TypeSubscriptionActivated,
		Data: map[string]interface{}{
			"subscription_id": subscriptionID,
			"user_id":         userID,
			"package_id":      packageID,
		},
		OccurredAt: time.Now(),
	}
}

func NewSubscriptionCancelledEvent(subscriptionID, userID string) Event {
	return BaseEvent{
		Type: TypeSubscriptionCancelled,
		Data: map[string]interface{}{
			"subscription_id": subscriptionID,
			"user_id":         userID,
		},
		OccurredAt: time.Now(),
	}
}

func NewPaymentFailedEvent(transactionID, userID string, amount float64) Event {
	return BaseEvent{
		Type: TypePaymentFailed,
		Data: map[string]interface{}{
			"transaction_id": transactionID,
			"user_id":        userID,
			"amount":         amount,
		},
		OccurredAt: time.Now(),
	}
}
