package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// startMockAPI serves body with status on every request.
func startMockAPI(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("accept = %q, want application/json", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientFetch(t *testing.T) {
	body := `[
		{"id": "m-1", "title": "Morning Calm", "durationMs": 60000, "timeline": [{"atMs": 0, "kind": "effect", "effectId": "calm"}]},
		{"id": "x", "title": "y"},
		{"id": "m-2", "title": "Evening Rest", "durationMs": 1200, "timeline": null}
	]`
	srv := startMockAPI(t, http.StatusOK, body)

	client := NewClient(srv.URL + "/meditations/")
	records, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ID != "m-1" || records[0].Title != "Morning Calm" || records[0].DurationMs != 60000 {
		t.Errorf("records[0] = %+v", records[0])
	}
	if records[1].ID != "m-2" {
		t.Errorf("records[1].ID = %q, want m-2", records[1].ID)
	}
	if events := records[0].Events(); len(events) != 1 || events[0].EffectID != "calm" {
		t.Errorf("records[0].Events() = %+v", events)
	}
	if events := records[1].Events(); len(events) != 0 {
		t.Errorf("records[1].Events() = %+v, want none", events)
	}
}

func TestClientFetchNonArray(t *testing.T) {
	srv := startMockAPI(t, http.StatusOK, `{"results": []}`)

	records, err := NewClient(srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestClientFetchStatusError(t *testing.T) {
	srv := startMockAPI(t, http.StatusForbidden, `{"detail": "nope"}`)

	_, err := NewClient(srv.URL).Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error for 403")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("err = %T, want *FetchError", err)
	}
	if fetchErr.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", fetchErr.StatusCode)
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("message %q should carry the status code", err.Error())
	}
}

func TestClientFetchInvalidJSON(t *testing.T) {
	srv := startMockAPI(t, http.StatusOK, `<html>`)

	if _, err := NewClient(srv.URL).Fetch(context.Background()); err == nil {
		t.Error("expected error for a non-JSON body")
	}
}

func TestClientFetchConnectFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Fetch(context.Background())
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("err = %v, want *FetchError", err)
	}
	if fetchErr.StatusCode != 0 {
		t.Errorf("status = %d, want 0 for a network failure", fetchErr.StatusCode)
	}
	if fetchErr.Unwrap() == nil {
		t.Error("network failure should wrap its cause")
	}
}

func TestClientFetchCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := NewClient(srv.URL).Fetch(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestWithHTTPClient(t *testing.T) {
	hc := &http.Client{Timeout: time.Second}
	c := NewClient("http://example.test", WithHTTPClient(hc), WithHTTPClient(nil))
	if c.http != hc {
		t.Error("WithHTTPClient should replace the default client")
	}
	if c.Endpoint() != "http://example.test" {
		t.Errorf("endpoint = %q", c.Endpoint())
	}
}
