package controller

import (
	"encoding/json"
	"errors"

	"ai-voicedesk-be/internal/pkg/logger"
	"ai-voicedesk-be/internal/pkg/serverutils"
	"ai-voicedesk-be/pkg/billing"
	"ai-voicedesk-be/pkg/stripeclient"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
)

type IStripeWebhookController interface {
	RegisterRoutes(r fiber.Router)
	Handle(ctx *fiber.Ctx) error
}

// stripeWebhookController verifies event signatures and feeds the
// billing reconciler. Stripe retries on non-2xx, so processing errors
// return 500 to get the event redelivered. Events no retry can fix
// (no resolvable owner or package) are acknowledged and dropped.
type stripeWebhookController struct {
	reconciler    *billing.Reconciler
	webhookSecret string
	log           logger.ILogger
}

func NewStripeWebhookController(reconciler *billing.Reconciler, webhookSecret string, log logger.ILogger) IStripeWebhookController {
	return &stripeWebhookController{
		reconciler:    reconciler,
		webhookSecret: webhookSecret,
		log:           log,
	}
}

func (c *stripeWebhookController) RegisterRoutes(r fiber.Router) {
	r.Post("/webhooks/stripe", c.Handle)
}

func (c *stripeWebhookController) Handle(ctx *fiber.Ctx) error {
	event, err := webhook.ConstructEvent(ctx.Body(), ctx.Get("Stripe-Signature"), c.webhookSecret)
	if err != nil {
		c.log.Warn("webhook", "stripe webhook signature verification failed", map[string]interface{}{
			"ip": ctx.IP(), "error": err.Error(),
		})
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid signature"))
	}

	if err := c.dispatch(ctx, event); err != nil {
		if errors.Is(err, billing.ErrUnknownSubscriptionOwner) || errors.Is(err, billing.ErrUnknownPackage) {
			c.log.Warn("webhook", "dropping stripe event with unresolvable reference", map[string]interface{}{
				"event_id": event.ID, "type": string(event.Type), "error": err.Error(),
			})
			return ctx.JSON(serverutils.SuccessResponse[any]("Event acknowledged", nil))
		}
		c.log.Error("webhook", "stripe event processing failed", map[string]interface{}{
			"event_id": event.ID, "type": string(event.Type), "error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "event processing failed"))
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Event processed", nil))
}

func (c *stripeWebhookController) dispatch(ctx *fiber.Ctx, event stripe.Event) error {
	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return err
		}
		return c.reconciler.HandleSubscriptionUpserted(ctx.Context(), *stripeclient.SubscriptionToEvent(&sub))

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return err
		}
		return c.reconciler.HandleSubscriptionDeleted(ctx.Context(), *stripeclient.SubscriptionToEvent(&sub))

	case "invoice.payment_succeeded":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return err
		}
		return c.reconciler.HandleInvoicePaid(ctx.Context(), stripeclient.InvoiceToEvent(&inv))

	case "invoice.payment_failed":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return err
		}
		return c.reconciler.HandleInvoiceFailed(ctx.Context(), stripeclient.InvoiceToEvent(&inv))

	default:
		c.log.Debug("webhook", "ignoring stripe event", map[string]interface{}{"type": string(event.Type)})
		return nil
	}
}
