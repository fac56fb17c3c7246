package stripeclient

import (
	"context"
	"fmt"
	"time"

	"ai-voicedesk-be/pkg/billing"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

const metadataUserIDKey = "user_id"

// Client wraps the Stripe SDK behind the operations the back office
// needs. It also satisfies billing.BillingClient so the webhook
// reconciler can re-fetch authoritative subscription state.
type Client struct {
	api *client.API
}

func New(apiKey string) *Client {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &Client{api: api}
}

// EnsureCustomer returns the user's Stripe customer id, creating the
// customer on first use.
func (c *Client) EnsureCustomer(ctx context.Context, userID, email, name string) (string, error) {
	query := fmt.Sprintf("metadata['%s']:'%s'", metadataUserIDKey, userID)
	search := c.api.Customers.Search(&stripe.CustomerSearchParams{
		SearchParams: stripe.SearchParams{
			Query:   query,
			Limit:   stripe.Int64(1),
			Context: ctx,
		},
	})
	if search.Next() {
		return search.Customer().ID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
		Metadata: map[string]string{
			metadataUserIDKey: userID,
		},
	}
	params.Context = ctx

	cus, err := c.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: failed to create customer: %w", err)
	}
	return cus.ID, nil
}

// CreateSubscription starts a subscription in default_incomplete mode
// and returns the subscription id plus the payment-intent client secret
// the frontend confirms.
func (c *Client) CreateSubscription(ctx context.Context, customerID, priceID string, metadata map[string]string) (string, string, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
		PaymentSettings: &stripe.SubscriptionPaymentSettingsParams{
			SaveDefaultPaymentMethod: stripe.String("on_subscription"),
		},
		Metadata: metadata,
	}
	params.Context = ctx
	params.AddExpand("latest_invoice.payment_intent")

	sub, err := c.api.Subscriptions.New(params)
	if err != nil {
		return "", "", fmt.Errorf("stripe: failed to create subscription: %w", err)
	}

	clientSecret := ""
	if sub.LatestInvoice != nil && sub.LatestInvoice.PaymentIntent != nil {
		clientSecret = sub.LatestInvoice.PaymentIntent.ClientSecret
	}
	return sub.ID, clientSecret, nil
}

// CancelSubscription cancels at period end, matching the grace policy:
// paid time stays usable.
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	params.Context = ctx
	_, err := c.api.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		return fmt.Errorf("stripe: failed to cancel subscription: %w", err)
	}
	return nil
}

// CancelSubscriptionNow cancels immediately. Used when a new plan
// supersedes the old one.
func (c *Client) CancelSubscriptionNow(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	_, err := c.api.Subscriptions.Cancel(subscriptionID, params)
	if err != nil {
		return fmt.Errorf("stripe: failed to cancel subscription: %w", err)
	}
	return nil
}

// RetrieveSubscription implements billing.BillingClient.
func (c *Client) RetrieveSubscription(ctx context.Context, subscriptionID string) (*billing.SubscriptionEvent, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := c.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to retrieve subscription: %w", err)
	}
	return SubscriptionToEvent(sub), nil
}

// CreatePaymentIntent sets up a one-off charge.
func (c *Client) CreatePaymentIntent(ctx context.Context, customerID string, amountCents int64, currency string, metadata map[string]string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Customer: stripe.String(customerID),
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: metadata,
	}
	params.Context = ctx

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return "", "", fmt.Errorf("stripe: failed to create payment intent: %w", err)
	}
	return pi.ID, pi.ClientSecret, nil
}

// SubscriptionToEvent converts an SDK subscription object to the
// reconciler's event shape. Shared by the client and the webhook
// controller.
func SubscriptionToEvent(sub *stripe.Subscription) *billing.SubscriptionEvent {
	ev := &billing.SubscriptionEvent{
		SubscriptionID:     sub.ID,
		Status:             string(sub.Status),
		CurrentPeriodStart: time.Unix(sub.CurrentPeriodStart, 0),
		CurrentPeriodEnd:   time.Unix(sub.CurrentPeriodEnd, 0),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		Metadata:           sub.Metadata,
	}
	if sub.Customer != nil {
		ev.CustomerID = sub.Customer.ID
	}
	if sub.TrialEnd > 0 {
		trialEnd := time.Unix(sub.TrialEnd, 0)
		ev.TrialEnd = &trialEnd
	}
	return ev
}

// InvoiceToEvent converts an SDK invoice object.
func InvoiceToEvent(inv *stripe.Invoice) billing.InvoiceEvent {
	ev := billing.InvoiceEvent{
		InvoiceID:  inv.ID,
		AmountPaid: float64(inv.AmountPaid) / 100,
		Currency:   string(inv.Currency),
	}
	if inv.Subscription != nil {
		ev.SubscriptionID = inv.Subscription.ID
	}
	if inv.Customer != nil {
		ev.CustomerID = inv.Customer.ID
	}
	if inv.Charge != nil {
		ev.ChargeID = inv.Charge.ID
	}
	return ev
}
