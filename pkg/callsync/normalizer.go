package callsync

import (
	"math"
	"time"

	"ai-voicedesk-be/internal/entity"
)

// Source identifies which provider surface an event came from. The three
// surfaces carry different payload shapes and different status defaults,
// so normalization is keyed by source.
type Source string

const (
	// SourceWebhook is a granular status webhook (call started, ringing,
	// status update).
	SourceWebhook Source = "webhook"
	// SourceEndOfCallReport is the rich report delivered once a call
	// finishes, carrying transcript, summary, cost and recording.
	SourceEndOfCallReport Source = "end-of-call-report"
	// SourceAPISync is a call object fetched from the provider list API
	// by the reconciliation job.
	SourceAPISync Source = "api-sync"
)

// webhookStatuses maps granular webhook statuses onto the local
// lifecycle. The provider already speaks our vocabulary here; anything
// it may add later degrades to initiated, which rank guarding makes
// harmless.
var webhookStatuses = map[string]entity.CallStatus{
	"initiated":   entity.CallStatusInitiated,
	"ringing":     entity.CallStatusRinging,
	"in-progress": entity.CallStatusInProgress,
	"completed":   entity.CallStatusCompleted,
	"failed":      entity.CallStatusFailed,
	"busy":        entity.CallStatusBusy,
	"no-answer":   entity.CallStatusNoAnswer,
	"cancelled":   entity.CallStatusCancelled,
}

// endedReasonStatuses maps the provider's endedReason onto a terminal
// status. A report for an unknown or missing reason still means the call
// ended, so the fallback is completed.
var endedReasonStatuses = map[string]entity.CallStatus{
	"customer-ended-call":  entity.CallStatusCompleted,
	"assistant-ended-call": entity.CallStatusCompleted,
	"call-failed":          entity.CallStatusFailed,
	"timeout":              entity.CallStatusFailed,
	"error":                entity.CallStatusFailed,
	"no-answer":            entity.CallStatusNoAnswer,
	"busy":                 entity.CallStatusBusy,
	"cancelled":            entity.CallStatusCancelled,
}

// apiStatuses maps the list-API status field. "scheduled" has no local
// counterpart and reads as a call that has not progressed yet.
var apiStatuses = map[string]entity.CallStatus{
	"scheduled":   entity.CallStatusInitiated,
	"queued":      entity.CallStatusInitiated,
	"ringing":     entity.CallStatusRinging,
	"in-progress": entity.CallStatusInProgress,
	"ended":       entity.CallStatusCompleted,
	"completed":   entity.CallStatusCompleted,
	"failed":      entity.CallStatusFailed,
	"busy":        entity.CallStatusBusy,
	"no-answer":   entity.CallStatusNoAnswer,
	"cancelled":   entity.CallStatusCancelled,
}

// Normalize converts a raw provider payload into a Patch. It returns
// ErrMissingCallID when the payload carries no call id; every other
// oddity degrades to a weaker patch rather than an error, because the
// merge policy makes weak patches harmless.
func Normalize(source Source, payload map[string]interface{}) (*Patch, error) {
	switch source {
	case SourceEndOfCallReport:
		return normalizeEndOfCallReport(payload)
	case SourceAPISync:
		return normalizeAPICall(payload)
	default:
		return normalizeWebhook(payload)
	}
}

func normalizeWebhook(payload map[string]interface{}) (*Patch, error) {
	callID := stringField(payload, "callId")
	if callID == "" {
		return nil, ErrMissingCallID
	}

	eventType := stringField(payload, "type")

	// Status defaults follow the type discriminator: a call-end without
	// a status still means the call finished, and a call-update without
	// one carries no status observation at all.
	status, ok := webhookStatuses[stringField(payload, "status")]
	if !ok {
		switch eventType {
		case "call-end":
			status = entity.CallStatusCompleted
		case "call-update":
			status = ""
		default:
			status = entity.CallStatusInitiated
		}
	}

	p := &Patch{
		CallID:          callID,
		VapiAssistantID: stringField(payload, "assistantId"),
		Source:          SourceWebhook,
		Status:          status,
		Direction:       direction(stringField(payload, "direction")),
		PhoneNumber:     optString(stringField(payload, "phoneNumber")),
		CallerNumber:    optString(stringField(payload, "callerNumber")),
		StartTime:       timeField(payload, "startTime"),
		EndTime:         timeField(payload, "endTime"),
		Transcript:      optString(stringField(payload, "transcript")),
		Summary:         optString(stringField(payload, "summary")),
		Cost:            floatField(payload, "cost"),
		Currency:        stringField(payload, "currency"),
		WebhookData:     payload,
	}
	if eventType == "call-end" && p.EndTime == nil {
		now := time.Now().UTC()
		p.EndTime = &now
	}
	p.Duration = durationOf(payload, "duration", "durationMs", p.StartTime, p.EndTime)
	return p, nil
}

func normalizeEndOfCallReport(payload map[string]interface{}) (*Patch, error) {
	message := mapField(payload, "message")
	if message == nil {
		message = payload
	}
	call := mapField(message, "call")
	callID := stringField(call, "id")
	if callID == "" {
		return nil, ErrMissingCallID
	}

	status, ok := endedReasonStatuses[stringField(message, "endedReason")]
	if !ok {
		status = entity.CallStatusCompleted
	}

	p := &Patch{
		CallID:          callID,
		VapiAssistantID: stringField(call, "assistantId"),
		Source:          SourceEndOfCallReport,
		Status:          status,
		Direction:       direction(stringField(call, "type")),
		StartTime:       timeField(message, "startedAt"),
		EndTime:         timeField(message, "endedAt"),
		Transcript:      optString(stringField(message, "transcript")),
		Cost:            floatField(message, "cost"),
		RecordingURL:    optString(firstNonEmpty(stringField(message, "recordingUrl"), stringField(message, "stereoRecordingUrl"))),
		WebhookData:     payload,
	}

	if analysis := mapField(message, "analysis"); analysis != nil {
		p.Summary = optString(stringField(analysis, "summary"))
		if eval := stringField(analysis, "successEvaluation"); eval != "" {
			p.Metadata = map[string]interface{}{"success_evaluation": eval}
		}
	}
	if phone := mapField(message, "phoneNumber"); phone != nil {
		p.PhoneNumber = optString(stringField(phone, "number"))
	}
	if customer := mapField(message, "customer"); customer != nil {
		p.CallerNumber = optString(stringField(customer, "number"))
	}
	if breakdown := mapField(message, "costBreakdown"); breakdown != nil {
		if p.Metadata == nil {
			p.Metadata = map[string]interface{}{}
		}
		p.Metadata["cost_breakdown"] = breakdown
	}

	p.Duration = durationOf(message, "durationSeconds", "durationMs", p.StartTime, p.EndTime)
	return p, nil
}

func normalizeAPICall(payload map[string]interface{}) (*Patch, error) {
	callID := stringField(payload, "id")
	if callID == "" {
		return nil, ErrMissingCallID
	}

	status, ok := apiStatuses[stringField(payload, "status")]
	if !ok {
		status = entity.CallStatusInitiated
	}
	// A synced call that already carries an ended reason is over even if
	// the status field lags behind.
	if reason := stringField(payload, "endedReason"); reason != "" && !status.IsTerminal() {
		if mapped, ok := endedReasonStatuses[reason]; ok {
			status = mapped
		} else {
			status = entity.CallStatusCompleted
		}
	}

	p := &Patch{
		CallID:          callID,
		VapiAssistantID: stringField(payload, "assistantId"),
		Source:          SourceAPISync,
		Status:          status,
		Direction:       direction(stringField(payload, "type")),
		StartTime:       timeField(payload, "startedAt"),
		EndTime:         timeField(payload, "endedAt"),
		Cost:            floatField(payload, "cost"),
		WebhookData:     payload,
	}

	if artifact := mapField(payload, "artifact"); artifact != nil {
		p.Transcript = optString(stringField(artifact, "transcript"))
	}
	if analysis := mapField(payload, "analysis"); analysis != nil {
		p.Summary = optString(stringField(analysis, "summary"))
	}
	if phone := mapField(payload, "phoneNumber"); phone != nil {
		p.PhoneNumber = optString(stringField(phone, "number"))
	}
	if customer := mapField(payload, "customer"); customer != nil {
		p.CallerNumber = optString(stringField(customer, "number"))
	}
	if breakdown := mapField(payload, "costBreakdown"); breakdown != nil {
		p.Metadata = map[string]interface{}{"cost_breakdown": breakdown}
	}

	p.Duration = durationOf(payload, "durationSeconds", "durationMs", p.StartTime, p.EndTime)
	return p, nil
}

// durationOf prefers the provider's own duration fields and falls back to
// the start/end delta. A call with neither stays without a duration.
func durationOf(m map[string]interface{}, secondsKey, msKey string, start, end *time.Time) *int {
	if s := floatField(m, secondsKey); s != nil {
		return intPtr(int(math.Round(*s)))
	}
	if ms := floatField(m, msKey); ms != nil {
		return intPtr(int(math.Round(*ms / 1000)))
	}
	if start != nil && end != nil && !end.Before(*start) {
		return intPtr(int(end.Sub(*start).Round(time.Second).Seconds()))
	}
	return nil
}

func direction(raw string) entity.CallDirection {
	switch raw {
	case "outbound", "outboundPhoneCall":
		return entity.CallDirectionOutbound
	case "inbound", "inboundPhoneCall":
		return entity.CallDirectionInbound
	default:
		return entity.CallDirectionInbound
	}
}

func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func floatField(m map[string]interface{}, key string) *float64 {
	if m == nil {
		return nil
	}
	switch v := m[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	return nil
}

func mapField(m map[string]interface{}, key string) map[string]interface{} {
	if m == nil {
		return nil
	}
	sub, _ := m[key].(map[string]interface{})
	return sub
}

func timeField(m map[string]interface{}, key string) *time.Time {
	raw := stringField(m, key)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func intPtr(v int) *int {
	return &v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
