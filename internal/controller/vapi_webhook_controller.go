package controller

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"

	"ai-voicedesk-be/internal/directory"
	"ai-voicedesk-be/internal/pkg/logger"
	"ai-voicedesk-be/internal/pkg/serverutils"
	"ai-voicedesk-be/pkg/callsync"
	"ai-voicedesk-be/pkg/events"
	pkgNats "ai-voicedesk-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
)

type IVapiWebhookController interface {
	RegisterRoutes(r fiber.Router)
	Handle(ctx *fiber.Ctx) error
}

// vapiWebhookController ingests provider call events. Both the granular
// status webhooks and the final end-of-call report land on the same
// endpoint; the message type decides how the payload is normalized.
type vapiWebhookController struct {
	store          *callsync.Store
	directory      *directory.CachedAssistantDirectory
	eventPublisher *pkgNats.Publisher
	secret         string
	log            logger.ILogger
}

func NewVapiWebhookController(store *callsync.Store, dir *directory.CachedAssistantDirectory, eventPublisher *pkgNats.Publisher, secret string, log logger.ILogger) IVapiWebhookController {
	return &vapiWebhookController{
		store:          store,
		directory:      dir,
		eventPublisher: eventPublisher,
		secret:         secret,
		log:            log,
	}
}

func (c *vapiWebhookController) RegisterRoutes(r fiber.Router) {
	r.Post("/webhooks/vapi", c.Handle)
}

func (c *vapiWebhookController) Handle(ctx *fiber.Ctx) error {
	if c.secret != "" {
		provided := ctx.Get("x-vapi-secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(c.secret)) != 1 {
			c.log.Warn("webhook", "vapi webhook with bad secret", map[string]interface{}{"ip": ctx.IP()})
			return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "invalid webhook secret"))
		}
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid JSON payload"))
	}

	source := callsync.SourceWebhook
	if msg, ok := payload["message"].(map[string]interface{}); ok {
		if t, ok := msg["type"].(string); ok && t == "end-of-call-report" {
			source = callsync.SourceEndOfCallReport
		}
	}

	patch, err := callsync.Normalize(source, payload)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	outcome, err := c.store.Apply(ctx.Context(), patch)
	switch {
	case errors.Is(err, callsync.ErrUnknownAssistant):
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "assistant not registered"))
	case err != nil:
		c.log.Error("webhook", "call event persistence failed", map[string]interface{}{
			"call_id": patch.CallID, "error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "failed to store call event"))
	}

	if patch.Status.IsTerminal() {
		c.publishCallCompleted(ctx.Context(), patch)
	}

	return ctx.JSON(serverutils.SuccessResponse("Event processed", fiber.Map{
		"call_id": patch.CallID,
		"outcome": outcome.String(),
	}))
}

func (c *vapiWebhookController) publishCallCompleted(ctx context.Context, patch *callsync.Patch) {
	if c.eventPublisher == nil {
		return
	}

	assistant, err := c.directory.ResolveByVapiID(ctx, patch.VapiAssistantID)
	if err != nil || assistant == nil {
		return
	}

	duration := 0
	if patch.Duration != nil {
		duration = *patch.Duration
	}
	event := events.NewCallCompletedEvent(patch.CallID, assistant.Id.String(), assistant.UserId.String(), string(patch.Status), duration)
	if err := c.eventPublisher.Publish(ctx, event); err != nil {
		c.log.Warn("webhook", "call completed event publish failed", map[string]interface{}{
			"call_id": patch.CallID, "error": err.Error(),
		})
	}
}
