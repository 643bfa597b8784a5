// Package api fetches meditation records from the meditations REST endpoint
// and validates their JSON shape.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mindfulmakers/ai-meditation/internal/timeline"
)

// Record is one meditation as returned by the endpoint.
type Record struct {
	ID         string
	Title      string
	DurationMs int64
	// Timeline is kept as sent; see Events.
	Timeline json.RawMessage
}

// Events returns the record's normalized timeline.
func (r Record) Events() []timeline.Event {
	return timeline.NormalizeJSON(r.Timeline)
}

// DecodeRecords parses a response body. A payload that is not a JSON array
// yields no records; array elements that are not valid records are dropped.
func DecodeRecords(body []byte) ([]Record, error) {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal meditations: %w", err)
	}
	if _, ok := payload.([]any); !ok {
		return []Record{}, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(body, &elements); err != nil {
		return nil, fmt.Errorf("unmarshal meditations: %w", err)
	}

	records := make([]Record, 0, len(elements))
	for _, raw := range elements {
		if rec, ok := ParseRecord(raw); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// ParseRecord validates one element. It requires a string id, a string title,
// a numeric durationMs and a timeline key of any value.
func ParseRecord(raw json.RawMessage) (Record, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Record{}, false
	}

	var rec Record
	if !decodeString(fields["id"], &rec.ID) {
		return Record{}, false
	}
	if !decodeString(fields["title"], &rec.Title) {
		return Record{}, false
	}
	duration, ok := decodeNumber(fields["durationMs"])
	if !ok {
		return Record{}, false
	}
	rec.DurationMs = clampDuration(duration)

	tl, ok := fields["timeline"]
	if !ok {
		return Record{}, false
	}
	rec.Timeline = tl
	return rec, true
}

func decodeString(raw json.RawMessage, dst *string) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func decodeNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

// clampDuration keeps the sign so callers can see a negative duration, and
// bounds the magnitude to what a time.Duration can hold.
func clampDuration(f float64) int64 {
	switch {
	case f >= float64(timeline.MaxOffsetMs):
		return timeline.MaxOffsetMs
	case f <= -float64(timeline.MaxOffsetMs):
		return -timeline.MaxOffsetMs
	default:
		return int64(f)
	}
}
