package service

import (
	"context"

	"ai-voicedesk-be/internal/pkg/logger"
	"ai-voicedesk-be/pkg/events"
	pkgNats "ai-voicedesk-be/pkg/nats"
)

type IEventAuditService interface {
	Start() error
}

// eventAuditService drains every domain event off the bus into the
// structured log. It is the durable consumer that keeps the EVENTS
// work queue from growing unbounded.
type eventAuditService struct {
	subscriber *pkgNats.Subscriber
	log        logger.ILogger
}

func NewEventAuditService(subscriber *pkgNats.Subscriber, log logger.ILogger) IEventAuditService {
	return &eventAuditService{subscriber: subscriber, log: log}
}

func (s *eventAuditService) Start() error {
	return s.subscriber.Subscribe("events.>", "event-audit", s.handle)
}

func (s *eventAuditService) handle(ctx context.Context, event events.Event) error {
	s.log.Info("events", "domain event", map[string]interface{}{
		"subject": event.EventType(),
		"payload": event.Payload(),
	})
	return nil
}
