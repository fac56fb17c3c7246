package callsync

import (
	"testing"
	"time"

	"ai-voicedesk-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string        { return &s }
func timePtr(t time.Time) *time.Time { return &t }
func floatPtr(f float64) *float64    { return &f }

func TestApplyCreatesFromPatch(t *testing.T) {
	rec, changed := Apply(nil, &Patch{
		CallID: "call-1",
		Status: entity.CallStatusRinging,
	})

	assert.True(t, changed)
	assert.Equal(t, "call-1", rec.CallId)
	assert.Equal(t, entity.CallStatusRinging, rec.Status)
	assert.Equal(t, entity.CallDirectionInbound, rec.Direction)
	assert.Equal(t, "USD", rec.Currency)
}

func TestApplyCreateDefaultsEmptyStatus(t *testing.T) {
	rec, _ := Apply(nil, &Patch{CallID: "call-1"})
	assert.Equal(t, entity.CallStatusInitiated, rec.Status)
}

func TestApplyStatusRankGuard(t *testing.T) {
	tests := []struct {
		name    string
		current entity.CallStatus
		patch   entity.CallStatus
		want    entity.CallStatus
	}{
		{"forward move", entity.CallStatusRinging, entity.CallStatusInProgress, entity.CallStatusInProgress},
		{"equal rank replaces", entity.CallStatusInitiated, entity.CallStatusInitiated, entity.CallStatusInitiated},
		{"late start event ignored", entity.CallStatusInProgress, entity.CallStatusRinging, entity.CallStatusInProgress},
		{"terminal absorbs ringing", entity.CallStatusCompleted, entity.CallStatusRinging, entity.CallStatusCompleted},
		{"terminal absorbs other terminal", entity.CallStatusCompleted, entity.CallStatusFailed, entity.CallStatusCompleted},
		{"straight to terminal", entity.CallStatusInitiated, entity.CallStatusNoAnswer, entity.CallStatusNoAnswer},
		{"empty patch status keeps current", entity.CallStatusInProgress, "", entity.CallStatusInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := &entity.CallLog{CallId: "c", Status: tt.current}
			merged, _ := Apply(existing, &Patch{CallID: "c", Status: tt.patch})
			assert.Equal(t, tt.want, merged.Status)
		})
	}
}

func TestApplyNeverClearsContentFields(t *testing.T) {
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Minute)
	dur := 120

	existing := &entity.CallLog{
		CallId:     "call-1",
		Status:     entity.CallStatusCompleted,
		Transcript: strPtr("transcript"),
		Summary:    strPtr("summary"),
		StartTime:  timePtr(start),
		EndTime:    timePtr(end),
		Duration:   &dur,
		Cost:       floatPtr(0.5),
	}

	// A late granular webhook carries none of the content fields.
	merged, changed := Apply(existing, &Patch{
		CallID: "call-1",
		Status: entity.CallStatusInProgress,
	})

	assert.False(t, changed)
	require.NotNil(t, merged.Transcript)
	assert.Equal(t, "transcript", *merged.Transcript)
	require.NotNil(t, merged.EndTime)
	assert.Equal(t, end, *merged.EndTime)
	require.NotNil(t, merged.Duration)
	assert.Equal(t, 120, *merged.Duration)
	require.NotNil(t, merged.Cost)
	assert.InDelta(t, 0.5, *merged.Cost, 1e-9)
}

func TestApplyRicherPatchFillsIn(t *testing.T) {
	existing := &entity.CallLog{
		CallId: "call-1",
		Status: entity.CallStatusInProgress,
	}

	end := time.Date(2026, 5, 1, 10, 2, 0, 0, time.UTC)
	merged, changed := Apply(existing, &Patch{
		CallID:     "call-1",
		Status:     entity.CallStatusCompleted,
		Transcript: strPtr("hello"),
		Summary:    strPtr("done"),
		EndTime:    timePtr(end),
		Cost:       floatPtr(0.3),
	})

	assert.True(t, changed)
	assert.Equal(t, entity.CallStatusCompleted, merged.Status)
	require.NotNil(t, merged.Transcript)
	assert.Equal(t, "hello", *merged.Transcript)
	require.NotNil(t, merged.EndTime)
	assert.Equal(t, end, *merged.EndTime)
}

func TestApplyMetadataAccumulates(t *testing.T) {
	existing := &entity.CallLog{
		CallId:   "call-1",
		Status:   entity.CallStatusInProgress,
		Metadata: map[string]interface{}{"a": "1", "b": "2"},
	}

	merged, changed := Apply(existing, &Patch{
		CallID:   "call-1",
		Status:   entity.CallStatusInProgress,
		Metadata: map[string]interface{}{"b": "override", "c": "3"},
	})

	assert.True(t, changed)
	assert.Equal(t, "1", merged.Metadata["a"])
	assert.Equal(t, "override", merged.Metadata["b"])
	assert.Equal(t, "3", merged.Metadata["c"])
	// Existing record is untouched.
	assert.Equal(t, "2", existing.Metadata["b"])
}

func TestApplyWebhookDataReplaced(t *testing.T) {
	existing := &entity.CallLog{
		CallId:      "call-1",
		Status:      entity.CallStatusInProgress,
		WebhookData: map[string]interface{}{"type": "status-update"},
	}

	merged, _ := Apply(existing, &Patch{
		CallID:      "call-1",
		Status:      entity.CallStatusCompleted,
		WebhookData: map[string]interface{}{"type": "end-of-call-report"},
	})

	assert.Equal(t, map[string]interface{}{"type": "end-of-call-report"}, merged.WebhookData)
}

// Replaying the same patch a second time must change nothing. Paired with
// the rank guard this is what makes webhook redelivery safe.
func TestApplyIdempotent(t *testing.T) {
	patch := &Patch{
		CallID:     "call-1",
		Status:     entity.CallStatusCompleted,
		Transcript: strPtr("hello"),
		Cost:       floatPtr(0.3),
	}

	first, _ := Apply(nil, patch)
	second, changed := Apply(first, patch)

	assert.False(t, changed)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, *first.Transcript, *second.Transcript)
}
