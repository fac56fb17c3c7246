package vapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAssistant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/assistant", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body Assistant
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Reception", body.Name)

		body.ID = "va-123"
		json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	created, err := client.CreateAssistant(context.Background(), &Assistant{Name: "Reception"})
	require.NoError(t, err)
	assert.Equal(t, "va-123", created.ID)
	assert.Equal(t, "Reception", created.Name)
}

func TestListCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/call", r.URL.Path)
		assert.Equal(t, "va-123", r.URL.Query().Get("assistantId"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))

		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": "call-1", "status": "ended"},
			{"id": "call-2", "status": "in-progress"},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	calls, err := client.ListCalls(context.Background(), "va-123", 50)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, "call-1", calls[0]["id"])
}

func TestDeleteAssistantNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	err := client.DeleteAssistant(context.Background(), "va-missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestAssignPhoneNumber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/phone-number", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "twilio", body["provider"])
		assert.Equal(t, "+15550001111", body["number"])
		assert.Equal(t, "va-123", body["assistantId"])

		json.NewEncoder(w).Encode(map[string]string{"id": "pn-1"})
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	id, err := client.AssignPhoneNumber(context.Background(), "va-123", "+15550001111", "AC1", "token")
	require.NoError(t, err)
	assert.Equal(t, "pn-1", id)
}
