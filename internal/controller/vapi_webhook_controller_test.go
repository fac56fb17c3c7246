package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-voicedesk-be/internal/directory"
	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/pkg/logger"
	"ai-voicedesk-be/internal/repository/specification"
	"ai-voicedesk-be/pkg/callsync"

	"github.com/gofiber/fiber/v2"
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

type fakeRecords struct {
	byCallID map[string]*entity.CallLog
	failing  bool
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{byCallID: map[string]*entity.CallLog{}}
}

func (f *fakeRecords) Upsert(ctx context.Context, record *entity.CallLog) error {
	if f.failing {
		return errors.New("connection refused")
	}
	clone := *record
	f.byCallID[record.CallId] = &clone
	return nil
}

func (f *fakeRecords) ExistsByCallId(ctx context.Context, callId string) (bool, error) {
	_, ok := f.byCallID[callId]
	return ok, nil
}

type fakeAssistantRepo struct {
	assistants []*entity.Assistant
}

func (f *fakeAssistantRepo) Create(ctx context.Context, a *entity.Assistant) error { return nil }
func (f *fakeAssistantRepo) Update(ctx context.Context, a *entity.Assistant) error { return nil }
func (f *fakeAssistantRepo) Delete(ctx context.Context, id uuid.UUID) error        { return nil }

func (f *fakeAssistantRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Assistant, error) {
	for _, a := range f.assistants {
		for _, spec := range specs {
			if byVapi, ok := spec.(specification.ByVapiAssistantId); ok && byVapi.VapiAssistantId == a.VapiAssistantId {
				return a, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeAssistantRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Assistant, error) {
	return f.assistants, nil
}

func (f *fakeAssistantRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(f.assistants)), nil
}

type webhookFixture struct {
	app     *fiber.App
	records *fakeRecords
}

func newWebhookFixture(t *testing.T, secret string) *webhookFixture {
	t.Helper()

	repo := &fakeAssistantRepo{assistants: []*entity.Assistant{{
		Id:              uuid.New(),
		UserId:          uuid.New(),
		VapiAssistantId: "va-known",
		Name:            "Front Desk",
		Type:            entity.AssistantTypeProduction,
	}}}

	records := newFakeRecords()
	dir := directory.NewCachedAssistantDirectory(repo)
	store := callsync.NewStore(records, dir, nopLogger{})

	app := fiber.New()
	NewVapiWebhookController(store, dir, nil, secret, nopLogger{}).RegisterRoutes(app.Group("/api"))

	return &webhookFixture{app: app, records: records}
}

func postJSON(t *testing.T, app *fiber.App, path string, body map[string]interface{}, headers map[string]string) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	return res
}

func decodeBody(t *testing.T, res *http.Response) map[string]interface{} {
	t.Helper()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestVapiWebhookStatusEvent(t *testing.T) {
	fx := newWebhookFixture(t, "")

	res := postJSON(t, fx.app, "/api/webhooks/vapi", map[string]interface{}{
		"callId":      "call-1",
		"assistantId": "va-known",
		"status":      "ringing",
		"customer":    map[string]interface{}{"number": "+15550001111"},
	}, nil)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	body := decodeBody(t, res)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "created", data["outcome"])

	record := fx.records.byCallID["call-1"]
	require.NotNil(t, record)
	assert.Equal(t, entity.CallStatusRinging, record.Status)
}

func TestVapiWebhookEndOfCallReport(t *testing.T) {
	fx := newWebhookFixture(t, "")

	postJSON(t, fx.app, "/api/webhooks/vapi", map[string]interface{}{
		"callId":      "call-2",
		"assistantId": "va-known",
		"status":      "in-progress",
	}, nil)

	res := postJSON(t, fx.app, "/api/webhooks/vapi", map[string]interface{}{
		"message": map[string]interface{}{
			"type": "end-of-call-report",
			"call": map[string]interface{}{
				"id":          "call-2",
				"assistantId": "va-known",
			},
			"endedReason": "customer-ended-call",
			"summary":     "Caller asked about opening hours.",
		},
	}, nil)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	body := decodeBody(t, res)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "updated", data["outcome"])

	record := fx.records.byCallID["call-2"]
	require.NotNil(t, record)
	assert.Equal(t, entity.CallStatusCompleted, record.Status)
}

func TestVapiWebhookMissingCallID(t *testing.T) {
	fx := newWebhookFixture(t, "")

	res := postJSON(t, fx.app, "/api/webhooks/vapi", map[string]interface{}{
		"assistantId": "va-known",
		"status":      "ringing",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestVapiWebhookUnknownAssistant(t *testing.T) {
	fx := newWebhookFixture(t, "")

	res := postJSON(t, fx.app, "/api/webhooks/vapi", map[string]interface{}{
		"callId":      "call-3",
		"assistantId": "va-nobody",
		"status":      "ringing",
	}, nil)

	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Empty(t, fx.records.byCallID)
}

func TestVapiWebhookPersistenceFailure(t *testing.T) {
	fx := newWebhookFixture(t, "")
	fx.records.failing = true

	res := postJSON(t, fx.app, "/api/webhooks/vapi", map[string]interface{}{
		"callId":      "call-4",
		"assistantId": "va-known",
		"status":      "ringing",
	}, nil)

	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
}

func TestVapiWebhookSecret(t *testing.T) {
	fx := newWebhookFixture(t, "hunter2")

	payload := map[string]interface{}{
		"callId":      "call-5",
		"assistantId": "va-known",
		"status":      "ringing",
	}

	res := postJSON(t, fx.app, "/api/webhooks/vapi", payload, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res = postJSON(t, fx.app, "/api/webhooks/vapi", payload, map[string]string{"x-vapi-secret": "hunter2"})
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
