package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.vapi.ai"

// Client talks to the Vapi REST API: assistant CRUD, phone-number
// assignment and the call list used by the reconciliation job.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Assistant is the subset of the provider assistant object the back
// office works with.
type Assistant struct {
	ID           string                 `json:"id,omitempty"`
	Name         string                 `json:"name"`
	FirstMessage string                 `json:"firstMessage,omitempty"`
	Model        map[string]interface{} `json:"model,omitempty"`
	Voice        map[string]interface{} `json:"voice,omitempty"`
	ServerURL    string                 `json:"serverUrl,omitempty"`
}

func (c *Client) CreateAssistant(ctx context.Context, assistant *Assistant) (*Assistant, error) {
	var out Assistant
	if err := c.do(ctx, http.MethodPost, "/assistant", assistant, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetAssistant(ctx context.Context, id string) (*Assistant, error) {
	var out Assistant
	if err := c.do(ctx, http.MethodGet, "/assistant/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAssistant(ctx context.Context, id string, assistant *Assistant) (*Assistant, error) {
	var out Assistant
	if err := c.do(ctx, http.MethodPatch, "/assistant/"+id, assistant, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAssistant(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/assistant/"+id, nil, nil)
}

// AssignPhoneNumber registers a provider-side phone number and routes it
// to the given assistant.
func (c *Client) AssignPhoneNumber(ctx context.Context, assistantID, number, twilioAccountSid, twilioAuthToken string) (string, error) {
	body := map[string]interface{}{
		"provider":         "twilio",
		"number":           number,
		"assistantId":      assistantID,
		"twilioAccountSid": twilioAccountSid,
		"twilioAuthToken":  twilioAuthToken,
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/phone-number", body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// ListCalls pages the provider call list for one assistant, newest
// first. Call objects come back raw: the sync job normalizes them.
func (c *Client) ListCalls(ctx context.Context, assistantID string, limit int) ([]map[string]interface{}, error) {
	q := url.Values{}
	q.Set("assistantId", assistantID)
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	var out []map[string]interface{}
	if err := c.do(ctx, http.MethodGet, "/call?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCall(ctx context.Context, callID string) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := c.do(ctx, http.MethodGet, "/call/"+callID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: string(bodyBytes)}
	}

	if out != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// APIError is a non-2xx provider response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vapi api error (status %d): %s", e.Status, e.Body)
}

// IsNotFound reports whether err is a provider 404.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusNotFound
}
