package timeline

import (
	"encoding/json"
	"math"
	"sort"
	"time"
)

// MaxOffsetMs is the largest offset that still fits in a time.Duration.
const MaxOffsetMs = int64(math.MaxInt64 / int64(time.Millisecond))

// NormalizeJSON decodes raw and normalizes the result. Anything that does not
// decode to a JSON array yields no events.
func NormalizeJSON(raw json.RawMessage) []Event {
	if len(raw) == 0 {
		return []Event{}
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return []Event{}
	}
	return Normalize(decoded)
}

// Normalize converts a decoded timeline payload into events sorted by offset.
// Entries that are not objects are dropped; malformed fields fall back to
// defaults instead of rejecting the entry. Equal offsets keep payload order.
func Normalize(raw any) []Event {
	entries, ok := raw.([]any)
	if !ok {
		return []Event{}
	}

	events := make([]Event, 0, len(entries))
	for _, entry := range entries {
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		events = append(events, eventFromFields(fields))
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].AtMs < events[j].AtMs
	})
	return events
}

func eventFromFields(fields map[string]any) Event {
	ev := Event{
		AtMs: offsetMs(fields["atMs"]),
		Kind: KindUnknown,
	}
	if kind, ok := fields["kind"].(string); ok {
		ev.Kind = kind
	}
	if file, ok := fields["file"].(string); ok {
		ev.File = file
		ev.HasFile = true
	}
	if effectID, ok := fields["effectId"].(string); ok {
		ev.EffectID = effectID
		ev.HasEffectID = true
	}
	return ev
}

func offsetMs(v any) int64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= float64(MaxOffsetMs) {
		return MaxOffsetMs
	}
	return int64(math.Floor(f))
}
