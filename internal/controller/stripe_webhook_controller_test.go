package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/pkg/billing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emptySubStore struct {
	findErr error
}

func (s *emptySubStore) FindByStripeID(ctx context.Context, id string) (*entity.UserSubscription, error) {
	return nil, s.findErr
}

func (s *emptySubStore) FindOccupying(ctx context.Context, userID uuid.UUID) ([]*entity.UserSubscription, error) {
	return nil, nil
}

func (s *emptySubStore) FindPackage(ctx context.Context, id uuid.UUID) (*entity.SubscriptionPackage, error) {
	return nil, nil
}

func (s *emptySubStore) Create(ctx context.Context, sub *entity.UserSubscription) error { return nil }
func (s *emptySubStore) Update(ctx context.Context, sub *entity.UserSubscription) error { return nil }

type emptyTxStore struct{}

func (emptyTxStore) LatestPending(ctx context.Context, userID uuid.UUID) (*entity.Transaction, error) {
	return nil, nil
}
func (emptyTxStore) Update(ctx context.Context, tx *entity.Transaction) error { return nil }

type emptyUserStore struct{}

func (emptyUserStore) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return nil, nil
}

func (emptyUserStore) FindByStripeCustomerID(ctx context.Context, customerID string) (*entity.User, error) {
	return nil, nil
}

type emptyBillingClient struct{}

func (emptyBillingClient) RetrieveSubscription(ctx context.Context, id string) (*billing.SubscriptionEvent, error) {
	return nil, errors.New("unexpected provider call")
}

type emptyMailer struct{}

func (emptyMailer) SendInvoicePaid(ctx context.Context, user *entity.User, tx *entity.Transaction) error {
	return nil
}

func (emptyMailer) SendPaymentFailed(ctx context.Context, user *entity.User, tx *entity.Transaction) error {
	return nil
}

func (emptyMailer) SendSubscriptionCancelled(ctx context.Context, user *entity.User, sub *entity.UserSubscription) error {
	return nil
}

const stripeTestSecret = "whsec_test"

func stripeSignature(payload []byte) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  stripeTestSecret,
	})
	return signed.Header
}

func newStripeWebhookFixture(subs *emptySubStore) *fiber.App {
	reconciler := billing.NewReconciler(subs, emptyTxStore{}, emptyUserStore{}, emptyBillingClient{}, emptyMailer{}, nopLogger{})
	app := fiber.New()
	NewStripeWebhookController(reconciler, stripeTestSecret, nopLogger{}).RegisterRoutes(app.Group("/api"))
	return app
}

func postStripeEvent(t *testing.T, app *fiber.App, body []byte, signature string) int {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/webhooks/stripe", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func subscriptionCreatedEvent(customer string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"api_version": %q,
		"type": "customer.subscription.created",
		"data": {"object": {
			"id": "sub_orphan",
			"customer": %q,
			"status": "active",
			"metadata": {}
		}}
	}`, stripe.APIVersion, customer))
}

func TestStripeWebhookUnresolvableOwnerAcknowledged(t *testing.T) {
	app := newStripeWebhookFixture(&emptySubStore{})

	// No metadata and no matching customer: retrying can never fix the
	// event, so it must be acknowledged, not redelivered.
	body := subscriptionCreatedEvent("cus_absent")
	status := postStripeEvent(t, app, body, stripeSignature(body))
	assert.Equal(t, fiber.StatusOK, status)
}

func TestStripeWebhookProcessingFailureReturns500(t *testing.T) {
	app := newStripeWebhookFixture(&emptySubStore{findErr: errors.New("db down")})

	body := subscriptionCreatedEvent("cus_absent")
	status := postStripeEvent(t, app, body, stripeSignature(body))
	assert.Equal(t, fiber.StatusInternalServerError, status)
}

func TestStripeWebhookInvalidSignatureRejected(t *testing.T) {
	app := newStripeWebhookFixture(&emptySubStore{})

	body := subscriptionCreatedEvent("cus_absent")
	status := postStripeEvent(t, app, body, "t=1,v1=deadbeef")
	assert.Equal(t, fiber.StatusBadRequest, status)
}
