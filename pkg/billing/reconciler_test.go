package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
func (nopLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}

type fakeSubStore struct {
	subs        map[uuid.UUID]*entity.UserSubscription
	packages    map[uuid.UUID]*entity.SubscriptionPackage
	dropCreates bool
}

func newFakeSubStore() *fakeSubStore {
	return &fakeSubStore{
		subs:     map[uuid.UUID]*entity.UserSubscription{},
		packages: map[uuid.UUID]*entity.SubscriptionPackage{},
	}
}

func (f *fakeSubStore) FindByStripeID(ctx context.Context, id string) (*entity.UserSubscription, error) {
	for _, s := range f.subs {
		if s.StripeSubscriptionId != nil && *s.StripeSubscriptionId == id {
			clone := *s
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeSubStore) FindOccupying(ctx context.Context, userID uuid.UUID) ([]*entity.UserSubscription, error) {
	var out []*entity.UserSubscription
	for _, s := range f.subs {
		if s.UserId == userID && s.Occupies() {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeSubStore) FindPackage(ctx context.Context, id uuid.UUID) (*entity.SubscriptionPackage, error) {
	return f.packages[id], nil
}

func (f *fakeSubStore) Create(ctx context.Context, sub *entity.UserSubscription) error {
	if sub.Id == uuid.Nil {
		sub.Id = uuid.New()
	}
	if f.dropCreates {
		return nil
	}
	clone := *sub
	f.subs[sub.Id] = &clone
	return nil
}

func (f *fakeSubStore) Update(ctx context.Context, sub *entity.UserSubscription) error {
	clone := *sub
	f.subs[sub.Id] = &clone
	return nil
}

type fakeTxStore struct {
	txs map[uuid.UUID]*entity.Transaction
}

func newFakeTxStore() *fakeTxStore {
	return &fakeTxStore{txs: map[uuid.UUID]*entity.Transaction{}}
}

func (f *fakeTxStore) LatestPending(ctx context.Context, userID uuid.UUID) (*entity.Transaction, error) {
	var latest *entity.Transaction
	for _, tx := range f.txs {
		if tx.UserId != userID || tx.Status != entity.TransactionStatusPending {
			continue
		}
		if latest == nil || tx.CreatedAt.After(latest.CreatedAt) {
			clone := *tx
			latest = &clone
		}
	}
	return latest, nil
}

func (f *fakeTxStore) Update(ctx context.Context, tx *entity.Transaction) error {
	clone := *tx
	f.txs[tx.Id] = &clone
	return nil
}

type fakeUserStore struct {
	users map[uuid.UUID]*entity.User
}

func (f *fakeUserStore) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return f.users[id], nil
}

func (f *fakeUserStore) FindByStripeCustomerID(ctx context.Context, customerID string) (*entity.User, error) {
	for _, u := range f.users {
		if u.StripeCustomerId != nil && *u.StripeCustomerId == customerID {
			return u, nil
		}
	}
	return nil, nil
}

type fakeBillingClient struct {
	subscriptions map[string]*SubscriptionEvent
}

func (f *fakeBillingClient) RetrieveSubscription(ctx context.Context, id string) (*SubscriptionEvent, error) {
	if ev, ok := f.subscriptions[id]; ok {
		clone := *ev
		return &clone, nil
	}
	return nil, ErrUnknownSubscriptionOwner
}

type fakeNotifier struct {
	invoices  int
	failures  int
	cancelled int
	err       error
}

func (f *fakeNotifier) SendInvoicePaid(ctx context.Context, user *entity.User, tx *entity.Transaction) error {
	f.invoices++
	return f.err
}

func (f *fakeNotifier) SendPaymentFailed(ctx context.Context, user *entity.User, tx *entity.Transaction) error {
	f.failures++
	return f.err
}

func (f *fakeNotifier) SendSubscriptionCancelled(ctx context.Context, user *entity.User, sub *entity.UserSubscription) error {
	f.cancelled++
	return f.err
}

type fixture struct {
	reconciler *Reconciler
	subs       *fakeSubStore
	txs        *fakeTxStore
	users      *fakeUserStore
	client     *fakeBillingClient
	mail       *fakeNotifier
	user       *entity.User
	pkg        *entity.SubscriptionPackage
	now        time.Time
}

func newFixture() *fixture {
	customerID := "cus_123"
	user := &entity.User{Id: uuid.New(), Email: "owner@example.com", StripeCustomerId: &customerID}
	pkg := &entity.SubscriptionPackage{Id: uuid.New(), Name: "Pro", Slug: "pro", Price: 49}

	subs := newFakeSubStore()
	subs.packages[pkg.Id] = pkg
	txs := newFakeTxStore()
	users := &fakeUserStore{users: map[uuid.UUID]*entity.User{user.Id: user}}
	client := &fakeBillingClient{subscriptions: map[string]*SubscriptionEvent{}}
	mail := &fakeNotifier{}

	r := NewReconciler(subs, txs, users, client, mail, nopLogger{})
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	return &fixture{
		reconciler: r, subs: subs, txs: txs, users: users,
		client: client, mail: mail, user: user, pkg: pkg, now: now,
	}
}

func (f *fixture) seedSubscription(stripeID string, status entity.SubscriptionStatus) *entity.UserSubscription {
	sub := &entity.UserSubscription{
		Id:                   uuid.New(),
		UserId:               f.user.Id,
		PackageId:            f.pkg.Id,
		Status:               status,
		CurrentPeriodStart:   f.now.AddDate(0, -1, 0),
		CurrentPeriodEnd:     f.now.AddDate(0, 0, 14),
		StripeSubscriptionId: &stripeID,
	}
	f.subs.subs[sub.Id] = sub
	return sub
}

func (f *fixture) seedPendingTransaction() *entity.Transaction {
	tx := &entity.Transaction{
		Id:        uuid.New(),
		UserId:    f.user.Id,
		PackageId: f.pkg.Id,
		Amount:    49,
		Currency:  "USD",
		Status:    entity.TransactionStatusPending,
		Type:      entity.TransactionTypeSubscription,
		CreatedAt: f.now.Add(-time.Hour),
	}
	f.txs.txs[tx.Id] = tx
	return tx
}

func (f *fixture) subscriptionEvent(stripeID, status string) SubscriptionEvent {
	return SubscriptionEvent{
		SubscriptionID:     stripeID,
		CustomerID:         "cus_123",
		Status:             status,
		CurrentPeriodStart: f.now,
		CurrentPeriodEnd:   f.now.AddDate(0, 1, 0),
		Metadata: map[string]string{
			"user_id":    f.user.Id.String(),
			"package_id": f.pkg.Id.String(),
		},
	}
}

func TestMapStripeStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want entity.SubscriptionStatus
	}{
		{"trialing", entity.SubscriptionStatusTrial},
		{"active", entity.SubscriptionStatusActive},
		{"canceled", entity.SubscriptionStatusCancelled},
		{"incomplete_expired", entity.SubscriptionStatusExpired},
		{"incomplete", entity.SubscriptionStatusPending},
		{"past_due", entity.SubscriptionStatusPending},
		{"unpaid", entity.SubscriptionStatusPending},
		{"paused", entity.SubscriptionStatusPending},
		{"", entity.SubscriptionStatusPending},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapStripeStatus(tt.raw), tt.raw)
	}
}

func TestHandleSubscriptionUpsertedCreatesFromMetadata(t *testing.T) {
	f := newFixture()

	err := f.reconciler.HandleSubscriptionUpserted(context.Background(), f.subscriptionEvent("sub_1", "active"))
	require.NoError(t, err)

	sub, err := f.subs.FindByStripeID(context.Background(), "sub_1")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, f.user.Id, sub.UserId)
	assert.Equal(t, f.pkg.Id, sub.PackageId)
	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
}

func TestHandleSubscriptionUpsertedUpdatesExisting(t *testing.T) {
	f := newFixture()
	f.seedSubscription("sub_1", entity.SubscriptionStatusPending)

	err := f.reconciler.HandleSubscriptionUpserted(context.Background(), f.subscriptionEvent("sub_1", "trialing"))
	require.NoError(t, err)

	sub, _ := f.subs.FindByStripeID(context.Background(), "sub_1")
	assert.Equal(t, entity.SubscriptionStatusTrial, sub.Status)
	assert.Equal(t, f.now.AddDate(0, 1, 0), sub.CurrentPeriodEnd)
}

func TestHandleSubscriptionUpsertedTerminalRowUnchanged(t *testing.T) {
	f := newFixture()
	f.seedSubscription("sub_1", entity.SubscriptionStatusCancelled)

	err := f.reconciler.HandleSubscriptionUpserted(context.Background(), f.subscriptionEvent("sub_1", "active"))
	require.NoError(t, err)

	sub, _ := f.subs.FindByStripeID(context.Background(), "sub_1")
	assert.Equal(t, entity.SubscriptionStatusCancelled, sub.Status)
}

func TestHandleSubscriptionUpsertedNoOwner(t *testing.T) {
	f := newFixture()
	ev := f.subscriptionEvent("sub_1", "active")
	ev.CustomerID = "cus_stranger"
	ev.Metadata = map[string]string{}

	err := f.reconciler.HandleSubscriptionUpserted(context.Background(), ev)
	assert.ErrorIs(t, err, ErrUnknownSubscriptionOwner)

	sub, _ := f.subs.FindByStripeID(context.Background(), "sub_1")
	assert.Nil(t, sub)
}

func TestHandleSubscriptionUpsertedResolvesOwnerByCustomerID(t *testing.T) {
	f := newFixture()
	ev := f.subscriptionEvent("sub_1", "active")
	ev.Metadata["user_id"] = "" // metadata lost, customer id still maps

	err := f.reconciler.HandleSubscriptionUpserted(context.Background(), ev)
	require.NoError(t, err)

	sub, _ := f.subs.FindByStripeID(context.Background(), "sub_1")
	require.NotNil(t, sub)
	assert.Equal(t, f.user.Id, sub.UserId)
}

func TestActivationCancelsPriorOccupyingSubscriptions(t *testing.T) {
	f := newFixture()
	old := f.seedSubscription("sub_old", entity.SubscriptionStatusActive)
	trial := f.seedSubscription("sub_trial", entity.SubscriptionStatusTrial)

	err := f.reconciler.HandleSubscriptionUpserted(context.Background(), f.subscriptionEvent("sub_new", "active"))
	require.NoError(t, err)

	gotOld := f.subs.subs[old.Id]
	gotTrial := f.subs.subs[trial.Id]
	assert.Equal(t, entity.SubscriptionStatusCancelled, gotOld.Status)
	assert.Equal(t, entity.SubscriptionStatusCancelled, gotTrial.Status)
	require.NotNil(t, gotOld.CancelledAt)
	assert.Equal(t, f.now, *gotOld.CancelledAt)
	require.NotNil(t, gotOld.EndsAt)
	assert.Equal(t, old.CurrentPeriodEnd, *gotOld.EndsAt)

	// Exactly one occupying row remains.
	occupying, _ := f.subs.FindOccupying(context.Background(), f.user.Id)
	require.Len(t, occupying, 1)
	require.NotNil(t, occupying[0].StripeSubscriptionId)
	assert.Equal(t, "sub_new", *occupying[0].StripeSubscriptionId)
}

func TestHandleSubscriptionDeleted(t *testing.T) {
	f := newFixture()
	sub := f.seedSubscription("sub_1", entity.SubscriptionStatusActive)

	err := f.reconciler.HandleSubscriptionDeleted(context.Background(), SubscriptionEvent{SubscriptionID: "sub_1"})
	require.NoError(t, err)

	got := f.subs.subs[sub.Id]
	assert.Equal(t, entity.SubscriptionStatusCancelled, got.Status)
	require.NotNil(t, got.CancelledAt)
	assert.Equal(t, f.now, *got.CancelledAt)
	require.NotNil(t, got.EndsAt)
	assert.Equal(t, sub.CurrentPeriodEnd, *got.EndsAt)
	assert.Equal(t, 1, f.mail.cancelled)
}

func TestHandleSubscriptionDeletedIdempotent(t *testing.T) {
	f := newFixture()
	sub := f.seedSubscription("sub_1", entity.SubscriptionStatusActive)

	require.NoError(t, f.reconciler.HandleSubscriptionDeleted(context.Background(), SubscriptionEvent{SubscriptionID: "sub_1"}))
	firstCancelledAt := *f.subs.subs[sub.Id].CancelledAt

	// Redelivery changes nothing.
	require.NoError(t, f.reconciler.HandleSubscriptionDeleted(context.Background(), SubscriptionEvent{SubscriptionID: "sub_1"}))
	assert.Equal(t, firstCancelledAt, *f.subs.subs[sub.Id].CancelledAt)
	assert.Equal(t, 1, f.mail.cancelled)
}

func TestHandleSubscriptionDeletedUnknownIsNoOp(t *testing.T) {
	f := newFixture()
	err := f.reconciler.HandleSubscriptionDeleted(context.Background(), SubscriptionEvent{SubscriptionID: "sub_ghost"})
	assert.NoError(t, err)
}

func TestHandleInvoicePaidActivatesAndSettles(t *testing.T) {
	f := newFixture()
	sub := f.seedSubscription("sub_1", entity.SubscriptionStatusPending)
	tx := f.seedPendingTransaction()

	fresh := f.subscriptionEvent("sub_1", "active")
	fresh.CurrentPeriodEnd = f.now.AddDate(0, 2, 0)
	f.client.subscriptions["sub_1"] = &fresh

	err := f.reconciler.HandleInvoicePaid(context.Background(), InvoiceEvent{
		InvoiceID:      "in_1",
		SubscriptionID: "sub_1",
		ChargeID:       "ch_1",
		AmountPaid:     49,
	})
	require.NoError(t, err)

	got := f.subs.subs[sub.Id]
	assert.Equal(t, entity.SubscriptionStatusActive, got.Status)
	// Period comes from the re-fetch, not the invoice payload.
	assert.Equal(t, f.now.AddDate(0, 2, 0), got.CurrentPeriodEnd)

	gotTx := f.txs.txs[tx.Id]
	assert.Equal(t, entity.TransactionStatusCompleted, gotTx.Status)
	require.NotNil(t, gotTx.ExternalTransactionId)
	assert.Equal(t, "ch_1", *gotTx.ExternalTransactionId)
	require.NotNil(t, gotTx.ProcessedAt)
	assert.Equal(t, 1, f.mail.invoices)
}

func TestHandleInvoicePaidMailerFailureDoesNotRollBack(t *testing.T) {
	f := newFixture()
	sub := f.seedSubscription("sub_1", entity.SubscriptionStatusPending)
	tx := f.seedPendingTransaction()
	f.mail.err = errors.New("smtp down")

	fresh := f.subscriptionEvent("sub_1", "active")
	f.client.subscriptions["sub_1"] = &fresh

	err := f.reconciler.HandleInvoicePaid(context.Background(), InvoiceEvent{
		InvoiceID:      "in_1",
		SubscriptionID: "sub_1",
		ChargeID:       "ch_1",
		AmountPaid:     49,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.SubscriptionStatusActive, f.subs.subs[sub.Id].Status)
	assert.Equal(t, entity.TransactionStatusCompleted, f.txs.txs[tx.Id].Status)
	assert.Equal(t, 1, f.mail.invoices)
}

func TestHandleInvoicePaidCreatesMissingSubscription(t *testing.T) {
	f := newFixture()
	fresh := f.subscriptionEvent("sub_1", "active")
	f.client.subscriptions["sub_1"] = &fresh

	err := f.reconciler.HandleInvoicePaid(context.Background(), InvoiceEvent{
		InvoiceID:      "in_1",
		SubscriptionID: "sub_1",
	})
	require.NoError(t, err)

	sub, _ := f.subs.FindByStripeID(context.Background(), "sub_1")
	require.NotNil(t, sub)
	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
}

func TestHandleInvoicePaidMissingAfterCreateErrors(t *testing.T) {
	f := newFixture()
	f.subs.dropCreates = true
	fresh := f.subscriptionEvent("sub_1", "active")
	f.client.subscriptions["sub_1"] = &fresh

	err := f.reconciler.HandleInvoicePaid(context.Background(), InvoiceEvent{
		InvoiceID:      "in_1",
		SubscriptionID: "sub_1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found after create")
}

func TestHandleInvoicePaidWithoutSubscriptionIsNoOp(t *testing.T) {
	f := newFixture()
	err := f.reconciler.HandleInvoicePaid(context.Background(), InvoiceEvent{InvoiceID: "in_1"})
	assert.NoError(t, err)
}

func TestHandleInvoiceFailed(t *testing.T) {
	f := newFixture()
	sub := f.seedSubscription("sub_1", entity.SubscriptionStatusActive)
	tx := f.seedPendingTransaction()

	err := f.reconciler.HandleInvoiceFailed(context.Background(), InvoiceEvent{
		InvoiceID:      "in_1",
		SubscriptionID: "sub_1",
	})
	require.NoError(t, err)

	gotTx := f.txs.txs[tx.Id]
	assert.Equal(t, entity.TransactionStatusFailed, gotTx.Status)
	require.NotNil(t, gotTx.FailedAt)
	// Grace policy: the subscription stays active until the provider says
	// otherwise.
	assert.Equal(t, entity.SubscriptionStatusActive, f.subs.subs[sub.Id].Status)
	assert.Equal(t, 1, f.mail.failures)
}

func TestHandleInvoiceFailedNoPendingTransaction(t *testing.T) {
	f := newFixture()
	f.seedSubscription("sub_1", entity.SubscriptionStatusActive)

	err := f.reconciler.HandleInvoiceFailed(context.Background(), InvoiceEvent{SubscriptionID: "sub_1"})
	assert.NoError(t, err)
	assert.Equal(t, 0, f.mail.failures)
}

func TestSubscriptionLifecycleGuard(t *testing.T) {
	tests := []struct {
		from entity.SubscriptionStatus
		to   entity.SubscriptionStatus
		ok   bool
	}{
		{entity.SubscriptionStatusPending, entity.SubscriptionStatusTrial, true},
		{entity.SubscriptionStatusPending, entity.SubscriptionStatusActive, true},
		{entity.SubscriptionStatusPending, entity.SubscriptionStatusCancelled, true},
		{entity.SubscriptionStatusPending, entity.SubscriptionStatusExpired, false},
		{entity.SubscriptionStatusTrial, entity.SubscriptionStatusActive, true},
		{entity.SubscriptionStatusTrial, entity.SubscriptionStatusExpired, true},
		{entity.SubscriptionStatusActive, entity.SubscriptionStatusTrial, false},
		{entity.SubscriptionStatusActive, entity.SubscriptionStatusCancelled, true},
		{entity.SubscriptionStatusActive, entity.SubscriptionStatusExpired, true},
		{entity.SubscriptionStatusCancelled, entity.SubscriptionStatusActive, false},
		{entity.SubscriptionStatusExpired, entity.SubscriptionStatusActive, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}
