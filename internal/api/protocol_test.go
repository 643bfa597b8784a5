package api

import (
	"encoding/json"
	"testing"
)

func TestParseRecordValid(t *testing.T) {
	raw := json.RawMessage(`{"id": "m-1", "title": "Body Scan", "durationMs": 90000.7, "timeline": [], "extra": true}`)
	rec, ok := ParseRecord(raw)
	if !ok {
		t.Fatal("expected a valid record")
	}
	if rec.ID != "m-1" || rec.Title != "Body Scan" {
		t.Errorf("rec = %+v", rec)
	}
	if rec.DurationMs != 90000 {
		t.Errorf("durationMs = %d, want 90000", rec.DurationMs)
	}
	if string(rec.Timeline) != "[]" {
		t.Errorf("timeline = %s, want []", rec.Timeline)
	}
}

func TestParseRecordRejects(t *testing.T) {
	cases := map[string]string{
		"missing durationMs": `{"id": "x", "title": "y", "timeline": []}`,
		"missing timeline":   `{"id": "x", "title": "y", "durationMs": 10}`,
		"numeric id":         `{"id": 1, "title": "y", "durationMs": 10, "timeline": []}`,
		"null title":         `{"id": "x", "title": null, "durationMs": 10, "timeline": []}`,
		"string duration":    `{"id": "x", "title": "y", "durationMs": "10", "timeline": []}`,
		"bool duration":      `{"id": "x", "title": "y", "durationMs": true, "timeline": []}`,
		"array":              `[1, 2]`,
		"null":               `null`,
		"string":             `"record"`,
	}
	for name, raw := range cases {
		if rec, ok := ParseRecord(json.RawMessage(raw)); ok {
			t.Errorf("%s: accepted %+v", name, rec)
		}
	}
}

func TestParseRecordTimelineAnyShape(t *testing.T) {
	for _, tl := range []string{`null`, `"text"`, `{"a": 1}`, `[{"atMs": 1}]`} {
		raw := json.RawMessage(`{"id": "x", "title": "y", "durationMs": 0, "timeline": ` + tl + `}`)
		if _, ok := ParseRecord(raw); !ok {
			t.Errorf("timeline %s should be accepted", tl)
		}
	}
}

func TestParseRecordNegativeDurationKept(t *testing.T) {
	rec, ok := ParseRecord(json.RawMessage(`{"id": "x", "title": "y", "durationMs": -5, "timeline": []}`))
	if !ok {
		t.Fatal("negative duration is still numeric")
	}
	if rec.DurationMs != -5 {
		t.Errorf("durationMs = %d, want -5", rec.DurationMs)
	}
}

func TestDecodeRecordsFiltersMalformed(t *testing.T) {
	body := []byte(`[
		{"id": "x", "title": "y"},
		"junk",
		{"id": "a", "title": "A", "durationMs": 1000, "timeline": []},
		{"id": "b", "title": "B", "durationMs": 2000, "timeline": []}
	]`)
	records, err := DecodeRecords(body)
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ID != "a" || records[1].ID != "b" {
		t.Errorf("order = %q, %q; want a, b", records[0].ID, records[1].ID)
	}
}

func TestDecodeRecordsNonArray(t *testing.T) {
	for _, body := range []string{`{}`, `null`, `"x"`, `3`} {
		records, err := DecodeRecords([]byte(body))
		if err != nil {
			t.Errorf("%s: unexpected error %v", body, err)
		}
		if records == nil || len(records) != 0 {
			t.Errorf("%s: records = %v, want empty", body, records)
		}
	}
}

func TestDecodeRecordsInvalidJSON(t *testing.T) {
	if _, err := DecodeRecords([]byte(`[{`)); err == nil {
		t.Error("expected error for truncated JSON")
	}
}
