package callsync

import (
	"errors"
	"testing"
	"time"

	"ai-voicedesk-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWebhook(t *testing.T) {
	tests := []struct {
		name       string
		payload    map[string]interface{}
		wantErr    error
		wantStatus entity.CallStatus
		wantDir    entity.CallDirection
	}{
		{
			name:    "missing call id",
			payload: map[string]interface{}{"status": "ringing"},
			wantErr: ErrMissingCallID,
		},
		{
			name: "status update",
			payload: map[string]interface{}{
				"callId":      "call-1",
				"assistantId": "va-1",
				"status":      "in-progress",
				"direction":   "outbound",
			},
			wantStatus: entity.CallStatusInProgress,
			wantDir:    entity.CallDirectionOutbound,
		},
		{
			name: "unknown status degrades to initiated",
			payload: map[string]interface{}{
				"callId": "call-2",
				"status": "something-new",
			},
			wantStatus: entity.CallStatusInitiated,
			wantDir:    entity.CallDirectionInbound,
		},
		{
			name: "missing status defaults to initiated",
			payload: map[string]interface{}{
				"callId": "call-3",
			},
			wantStatus: entity.CallStatusInitiated,
			wantDir:    entity.CallDirectionInbound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patch, err := Normalize(SourceWebhook, tt.payload)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, patch.Status)
			assert.Equal(t, tt.wantDir, patch.Direction)
			assert.Equal(t, tt.payload, patch.WebhookData)
		})
	}
}

func TestNormalizeWebhookTypeDefaults(t *testing.T) {
	t.Run("call-end without status means completed with end time", func(t *testing.T) {
		patch, err := Normalize(SourceWebhook, map[string]interface{}{
			"type":   "call-end",
			"callId": "call-20",
		})
		require.NoError(t, err)
		assert.Equal(t, entity.CallStatusCompleted, patch.Status)
		require.NotNil(t, patch.EndTime)
		assert.WithinDuration(t, time.Now(), *patch.EndTime, time.Minute)
	})

	t.Run("call-end keeps explicit status and end time", func(t *testing.T) {
		patch, err := Normalize(SourceWebhook, map[string]interface{}{
			"type":    "call-end",
			"callId":  "call-21",
			"status":  "no-answer",
			"endTime": "2026-05-01T10:05:00Z",
		})
		require.NoError(t, err)
		assert.Equal(t, entity.CallStatusNoAnswer, patch.Status)
		require.NotNil(t, patch.EndTime)
		assert.Equal(t, time.Date(2026, 5, 1, 10, 5, 0, 0, time.UTC), patch.EndTime.UTC())
	})

	t.Run("call-end derives duration from the two timestamps", func(t *testing.T) {
		patch, err := Normalize(SourceWebhook, map[string]interface{}{
			"type":      "call-end",
			"callId":    "call-24",
			"startTime": "2026-05-01T10:00:00Z",
			"endTime":   "2026-05-01T10:01:30Z",
		})
		require.NoError(t, err)
		require.NotNil(t, patch.Duration)
		assert.Equal(t, 90, *patch.Duration)
	})

	t.Run("call-update without status carries no status observation", func(t *testing.T) {
		patch, err := Normalize(SourceWebhook, map[string]interface{}{
			"type":   "call-update",
			"callId": "call-22",
		})
		require.NoError(t, err)
		assert.Equal(t, entity.CallStatus(""), patch.Status)
		assert.Nil(t, patch.EndTime)
	})

	t.Run("call-start without status defaults to initiated", func(t *testing.T) {
		patch, err := Normalize(SourceWebhook, map[string]interface{}{
			"type":   "call-start",
			"callId": "call-23",
		})
		require.NoError(t, err)
		assert.Equal(t, entity.CallStatusInitiated, patch.Status)
		assert.Nil(t, patch.EndTime)
	})
}

func TestNormalizeWebhookFields(t *testing.T) {
	payload := map[string]interface{}{
		"callId":       "call-9",
		"assistantId":  "va-9",
		"status":       "completed",
		"phoneNumber":  "+15550001111",
		"callerNumber": "+15552223333",
		"transcript":   "hello",
		"summary":      "short call",
		"cost":         0.25,
		"currency":     "EUR",
		"duration":     42.0,
		"startTime":    "2026-05-01T10:00:00Z",
	}

	patch, err := Normalize(SourceWebhook, payload)
	require.NoError(t, err)

	assert.Equal(t, "call-9", patch.CallID)
	assert.Equal(t, "va-9", patch.VapiAssistantID)
	require.NotNil(t, patch.PhoneNumber)
	assert.Equal(t, "+15550001111", *patch.PhoneNumber)
	require.NotNil(t, patch.CallerNumber)
	assert.Equal(t, "+15552223333", *patch.CallerNumber)
	require.NotNil(t, patch.Duration)
	assert.Equal(t, 42, *patch.Duration)
	require.NotNil(t, patch.Cost)
	assert.InDelta(t, 0.25, *patch.Cost, 1e-9)
	assert.Equal(t, "EUR", patch.Currency)
	require.NotNil(t, patch.StartTime)
	assert.Equal(t, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), patch.StartTime.UTC())
}

func TestNormalizeEndOfCallReport(t *testing.T) {
	payload := map[string]interface{}{
		"message": map[string]interface{}{
			"call": map[string]interface{}{
				"id":          "call-7",
				"assistantId": "va-7",
				"type":        "inboundPhoneCall",
			},
			"startedAt":       "2026-05-01T10:00:00Z",
			"endedAt":         "2026-05-01T10:02:30Z",
			"endedReason":     "customer-ended-call",
			"durationSeconds": 150.0,
			"cost":            0.75,
			"transcript":      "full transcript",
			"recordingUrl":    "https://recordings.example/call-7.wav",
			"analysis": map[string]interface{}{
				"summary":           "customer asked about hours",
				"successEvaluation": "true",
			},
			"phoneNumber": map[string]interface{}{"number": "+15550001111"},
			"customer":    map[string]interface{}{"number": "+15552223333"},
			"costBreakdown": map[string]interface{}{
				"stt": 0.10,
				"llm": 0.40,
			},
		},
	}

	patch, err := Normalize(SourceEndOfCallReport, payload)
	require.NoError(t, err)

	assert.Equal(t, "call-7", patch.CallID)
	assert.Equal(t, "va-7", patch.VapiAssistantID)
	assert.Equal(t, entity.CallStatusCompleted, patch.Status)
	assert.Equal(t, entity.CallDirectionInbound, patch.Direction)
	require.NotNil(t, patch.Duration)
	assert.Equal(t, 150, *patch.Duration)
	require.NotNil(t, patch.EndTime)
	require.NotNil(t, patch.Transcript)
	assert.Equal(t, "full transcript", *patch.Transcript)
	require.NotNil(t, patch.Summary)
	assert.Equal(t, "customer asked about hours", *patch.Summary)
	require.NotNil(t, patch.RecordingURL)
	assert.Equal(t, "https://recordings.example/call-7.wav", *patch.RecordingURL)
	assert.Equal(t, "true", patch.Metadata["success_evaluation"])
	assert.NotNil(t, patch.Metadata["cost_breakdown"])
}

func TestNormalizeEndOfCallReportEndedReasons(t *testing.T) {
	tests := []struct {
		reason string
		want   entity.CallStatus
	}{
		{"customer-ended-call", entity.CallStatusCompleted},
		{"assistant-ended-call", entity.CallStatusCompleted},
		{"call-failed", entity.CallStatusFailed},
		{"timeout", entity.CallStatusFailed},
		{"error", entity.CallStatusFailed},
		{"no-answer", entity.CallStatusNoAnswer},
		{"busy", entity.CallStatusBusy},
		{"cancelled", entity.CallStatusCancelled},
		// A report always means the call ended, so unknown and missing
		// reasons both read as completed.
		{"some-future-reason", entity.CallStatusCompleted},
		{"", entity.CallStatusCompleted},
	}

	for _, tt := range tests {
		t.Run("reason "+tt.reason, func(t *testing.T) {
			payload := map[string]interface{}{
				"message": map[string]interface{}{
					"call":        map[string]interface{}{"id": "call-x"},
					"endedReason": tt.reason,
				},
			}
			patch, err := Normalize(SourceEndOfCallReport, payload)
			require.NoError(t, err)
			assert.Equal(t, tt.want, patch.Status)
		})
	}
}

func TestNormalizeEndOfCallReportDurationFallbacks(t *testing.T) {
	t.Run("durationSeconds preferred over delta", func(t *testing.T) {
		patch, err := Normalize(SourceEndOfCallReport, map[string]interface{}{
			"message": map[string]interface{}{
				"call":            map[string]interface{}{"id": "c"},
				"startedAt":       "2026-05-01T10:00:00Z",
				"endedAt":         "2026-05-01T10:10:00Z",
				"durationSeconds": 90.0,
			},
		})
		require.NoError(t, err)
		require.NotNil(t, patch.Duration)
		assert.Equal(t, 90, *patch.Duration)
	})

	t.Run("durationMs converted", func(t *testing.T) {
		patch, err := Normalize(SourceEndOfCallReport, map[string]interface{}{
			"message": map[string]interface{}{
				"call":       map[string]interface{}{"id": "c"},
				"durationMs": 125000.0,
			},
		})
		require.NoError(t, err)
		require.NotNil(t, patch.Duration)
		assert.Equal(t, 125, *patch.Duration)
	})

	t.Run("delta fallback", func(t *testing.T) {
		patch, err := Normalize(SourceEndOfCallReport, map[string]interface{}{
			"message": map[string]interface{}{
				"call":      map[string]interface{}{"id": "c"},
				"startedAt": "2026-05-01T10:00:00Z",
				"endedAt":   "2026-05-01T10:02:00Z",
			},
		})
		require.NoError(t, err)
		require.NotNil(t, patch.Duration)
		assert.Equal(t, 120, *patch.Duration)
	})

	t.Run("no source means no duration", func(t *testing.T) {
		patch, err := Normalize(SourceEndOfCallReport, map[string]interface{}{
			"message": map[string]interface{}{
				"call": map[string]interface{}{"id": "c"},
			},
		})
		require.NoError(t, err)
		assert.Nil(t, patch.Duration)
	})
}

func TestNormalizeAPICall(t *testing.T) {
	tests := []struct {
		name       string
		payload    map[string]interface{}
		wantErr    error
		wantStatus entity.CallStatus
		wantDir    entity.CallDirection
	}{
		{
			name:    "missing id",
			payload: map[string]interface{}{"status": "ended"},
			wantErr: ErrMissingCallID,
		},
		{
			name: "scheduled maps to initiated",
			payload: map[string]interface{}{
				"id":     "call-1",
				"status": "scheduled",
			},
			wantStatus: entity.CallStatusInitiated,
			wantDir:    entity.CallDirectionInbound,
		},
		{
			name: "ended maps to completed",
			payload: map[string]interface{}{
				"id":     "call-2",
				"status": "ended",
				"type":   "outboundPhoneCall",
			},
			wantStatus: entity.CallStatusCompleted,
			wantDir:    entity.CallDirectionOutbound,
		},
		{
			name: "unknown status degrades to initiated",
			payload: map[string]interface{}{
				"id":     "call-3",
				"status": "mystery",
			},
			wantStatus: entity.CallStatusInitiated,
			wantDir:    entity.CallDirectionInbound,
		},
		{
			name: "ended reason overrides stale status",
			payload: map[string]interface{}{
				"id":          "call-4",
				"status":      "in-progress",
				"endedReason": "call-failed",
			},
			wantStatus: entity.CallStatusFailed,
			wantDir:    entity.CallDirectionInbound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patch, err := Normalize(SourceAPISync, tt.payload)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, patch.Status)
			assert.Equal(t, tt.wantDir, patch.Direction)
		})
	}
}

func TestNormalizeAPICallNestedFields(t *testing.T) {
	payload := map[string]interface{}{
		"id":          "call-5",
		"assistantId": "va-5",
		"status":      "ended",
		"startedAt":   "2026-05-01T10:00:00Z",
		"endedAt":     "2026-05-01T10:01:00Z",
		"cost":        1.5,
		"artifact":    map[string]interface{}{"transcript": "api transcript"},
		"analysis":    map[string]interface{}{"summary": "api summary"},
		"phoneNumber": map[string]interface{}{"number": "+15551112222"},
		"customer":    map[string]interface{}{"number": "+15553334444"},
	}

	patch, err := Normalize(SourceAPISync, payload)
	require.NoError(t, err)

	require.NotNil(t, patch.Transcript)
	assert.Equal(t, "api transcript", *patch.Transcript)
	require.NotNil(t, patch.Summary)
	assert.Equal(t, "api summary", *patch.Summary)
	require.NotNil(t, patch.PhoneNumber)
	assert.Equal(t, "+15551112222", *patch.PhoneNumber)
	require.NotNil(t, patch.CallerNumber)
	assert.Equal(t, "+15553334444", *patch.CallerNumber)
	require.NotNil(t, patch.Duration)
	assert.Equal(t, 60, *patch.Duration)
}
