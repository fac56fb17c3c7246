package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.twilio.com"

// Client wraps the small slice of the Twilio REST API the back office
// needs: searching, purchasing, listing and releasing phone numbers.
type Client struct {
	accountSid string
	authToken  string
	baseURL    string
	http       *http.Client
}

func NewClient(accountSid, authToken, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		accountSid: accountSid,
		authToken:  authToken,
		baseURL:    baseURL,
		http:       &http.Client{Timeout: 30 * time.Second},
	}
}

// AccountSid exposes the configured account sid (the Vapi number import
// needs it alongside the number itself).
func (c *Client) AccountSid() string { return c.accountSid }

// AuthToken exposes the configured auth token for the same reason.
func (c *Client) AuthToken() string { return c.authToken }

// AvailableNumber is one purchasable number from a search.
type AvailableNumber struct {
	PhoneNumber  string `json:"phone_number"`
	FriendlyName string `json:"friendly_name"`
	Locality     string `json:"locality"`
	Region       string `json:"region"`
	IsoCountry   string `json:"iso_country"`
}

// OwnedNumber is a number already provisioned on the account.
type OwnedNumber struct {
	Sid          string `json:"sid"`
	PhoneNumber  string `json:"phone_number"`
	FriendlyName string `json:"friendly_name"`
	VoiceURL     string `json:"voice_url"`
	Status       string `json:"status"`
}

// SearchAvailableNumbers lists purchasable local numbers for a country,
// optionally filtered by area code or digit pattern.
func (c *Client) SearchAvailableNumbers(ctx context.Context, country, areaCode, contains string, limit int) ([]AvailableNumber, error) {
	if country == "" {
		country = "US"
	}
	q := url.Values{}
	if areaCode != "" {
		q.Set("AreaCode", areaCode)
	}
	if contains != "" {
		q.Set("Contains", contains)
	}
	if limit > 0 {
		q.Set("PageSize", fmt.Sprintf("%d", limit))
	}

	path := fmt.Sprintf("/2010-04-01/Accounts/%s/AvailablePhoneNumbers/%s/Local.json", c.accountSid, country)
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out struct {
		AvailablePhoneNumbers []AvailableNumber `json:"available_phone_numbers"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.AvailablePhoneNumbers, nil
}

// PurchaseNumber buys a number and points its voice webhook at voiceURL.
func (c *Client) PurchaseNumber(ctx context.Context, phoneNumber, voiceURL string) (*OwnedNumber, error) {
	form := url.Values{}
	form.Set("PhoneNumber", phoneNumber)
	if voiceURL != "" {
		form.Set("VoiceUrl", voiceURL)
	}

	path := fmt.Sprintf("/2010-04-01/Accounts/%s/IncomingPhoneNumbers.json", c.accountSid)
	var out OwnedNumber
	if err := c.do(ctx, http.MethodPost, path, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOwnedNumbers returns the numbers provisioned on the account.
func (c *Client) ListOwnedNumbers(ctx context.Context) ([]OwnedNumber, error) {
	path := fmt.Sprintf("/2010-04-01/Accounts/%s/IncomingPhoneNumbers.json", c.accountSid)
	var out struct {
		IncomingPhoneNumbers []OwnedNumber `json:"incoming_phone_numbers"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.IncomingPhoneNumbers, nil
}

// ReleaseNumber gives a number back to Twilio.
func (c *Client) ReleaseNumber(ctx context.Context, numberSid string) error {
	path := fmt.Sprintf("/2010-04-01/Accounts/%s/IncomingPhoneNumbers/%s.json", c.accountSid, numberSid)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var reader io.Reader
	if form != nil {
		reader = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.accountSid, c.authToken)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
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

// APIError is a non-2xx Twilio response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twilio api error (status %d): %s", e.Status, e.Body)
}
