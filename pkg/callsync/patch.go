package callsync

import (
	"time"

	"ai-voicedesk-be/internal/entity"
)

// Patch is one event's observation of a call. Only fields the event
// actually carried are set; nil means "not observed", never "clear".
type Patch struct {
	CallID          string
	VapiAssistantID string
	Source          Source

	Status       entity.CallStatus // empty when the event carried none
	Direction    entity.CallDirection
	PhoneNumber  *string
	CallerNumber *string
	StartTime    *time.Time
	EndTime      *time.Time
	Duration     *int
	Transcript   *string
	Summary      *string
	Cost         *float64
	Currency     string
	RecordingURL *string
	Metadata     map[string]interface{}
	WebhookData  map[string]interface{}
}

// Apply merges p into existing and reports whether anything changed.
// existing may be nil, in which case the returned record is the patch
// materialized as a new row. This function is the reference for the
// SQL merge the gorm repository performs in one statement; both must
// agree field by field.
//
// Merge policy:
//   - status only moves to an equal or higher lifecycle rank, and a
//     terminal status is never replaced;
//   - content fields (transcript, summary, recording url, numbers,
//     times, duration, cost) are never cleared by a later event that
//     lacks them; a later non-empty value wins;
//   - metadata accumulates key by key;
//   - webhook_data is always replaced with the latest payload.
func Apply(existing *entity.CallLog, p *Patch) (*entity.CallLog, bool) {
	if existing == nil {
		rec := &entity.CallLog{
			CallId:       p.CallID,
			Status:       p.Status,
			Direction:    p.Direction,
			PhoneNumber:  p.PhoneNumber,
			CallerNumber: p.CallerNumber,
			StartTime:    p.StartTime,
			EndTime:      p.EndTime,
			Duration:     p.Duration,
			Transcript:   p.Transcript,
			Summary:      p.Summary,
			Cost:         p.Cost,
			Currency:     p.Currency,
			RecordingURL: p.RecordingURL,
			Metadata:     copyMap(p.Metadata),
			WebhookData:  copyMap(p.WebhookData),
		}
		if rec.Status == "" {
			rec.Status = entity.CallStatusInitiated
		}
		if rec.Direction == "" {
			rec.Direction = entity.CallDirectionInbound
		}
		if rec.Currency == "" {
			rec.Currency = "USD"
		}
		return rec, true
	}

	merged := *existing
	changed := false

	if p.Status != "" && !merged.Status.IsTerminal() && p.Status.Rank() >= merged.Status.Rank() && p.Status != merged.Status {
		merged.Status = p.Status
		changed = true
	}
	if p.Direction != "" && p.Direction != merged.Direction {
		merged.Direction = p.Direction
		changed = true
	}
	if p.Currency != "" && p.Currency != merged.Currency {
		merged.Currency = p.Currency
		changed = true
	}

	changed = fillString(&merged.PhoneNumber, p.PhoneNumber) || changed
	changed = fillString(&merged.CallerNumber, p.CallerNumber) || changed
	changed = fillTime(&merged.StartTime, p.StartTime) || changed
	changed = fillTime(&merged.EndTime, p.EndTime) || changed
	changed = fillInt(&merged.Duration, p.Duration) || changed
	changed = fillString(&merged.Transcript, p.Transcript) || changed
	changed = fillString(&merged.Summary, p.Summary) || changed
	changed = fillFloat(&merged.Cost, p.Cost) || changed
	changed = fillString(&merged.RecordingURL, p.RecordingURL) || changed

	if len(p.Metadata) > 0 {
		if merged.Metadata == nil {
			merged.Metadata = map[string]interface{}{}
		} else {
			merged.Metadata = copyMap(merged.Metadata)
		}
		for k, v := range p.Metadata {
			merged.Metadata[k] = v
			changed = true
		}
	}
	if len(p.WebhookData) > 0 {
		merged.WebhookData = copyMap(p.WebhookData)
		changed = true
	}

	return &merged, changed
}

func fillString(dst **string, src *string) bool {
	if src == nil || *src == "" {
		return false
	}
	if *dst != nil && **dst == *src {
		return false
	}
	v := *src
	*dst = &v
	return true
}

func fillTime(dst **time.Time, src *time.Time) bool {
	if src == nil {
		return false
	}
	if *dst != nil && (*dst).Equal(*src) {
		return false
	}
	v := *src
	*dst = &v
	return true
}

func fillInt(dst **int, src *int) bool {
	if src == nil {
		return false
	}
	if *dst != nil && **dst == *src {
		return false
	}
	v := *src
	*dst = &v
	return true
}

func fillFloat(dst **float64, src *float64) bool {
	if src == nil {
		return false
	}
	if *dst != nil && **dst == *src {
		return false
	}
	v := *src
	*dst = &v
	return true
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
