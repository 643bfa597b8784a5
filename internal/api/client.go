package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "github.com/mindfulmakers/ai-meditation/internal/api"

	// DefaultTimeout bounds one fetch when no HTTP client is supplied.
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 8 << 20
)

// FetchError reports a failed fetch. StatusCode is zero when no response was
// received.
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("unable to fetch meditations (%d)", e.StatusCode)
	}
	return fmt.Sprintf("unable to fetch meditations: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client fetches meditation records over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
	tracer   trace.Tracer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient returns a client for the meditations endpoint URL.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: DefaultTimeout},
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL the client fetches.
func (c *Client) Endpoint() string { return c.endpoint }

// Fetch retrieves the meditation list. Cancelling ctx aborts the request.
func (c *Client) Fetch(ctx context.Context) ([]Record, error) {
	ctx, span := c.tracer.Start(ctx, "meditations.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("url.full", c.endpoint)),
	)
	defer span.End()

	records, err := c.fetch(ctx, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("meditations.count", len(records)))
	return records, nil
}

func (c *Client) fetch(ctx context.Context, span trace.Span) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{Err: fmt.Errorf("read body: %w", err)}
	}
	return DecodeRecords(body)
}
