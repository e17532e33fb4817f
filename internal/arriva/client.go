package arriva

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "arrivatui/internal/errors"
	"arrivatui/internal/model"
	"arrivatui/internal/parser"
	"arrivatui/internal/query"
	"arrivatui/internal/telemetry"
)

const (
	DefaultStopsURL  = "https://arriva.gal/plataforma/api/superparadas/index/buscador.json"
	DefaultTripsURL  = "https://arriva.es/es/galicia/para-viajar/arriva"
	DefaultUserAgent = "curl/8.7.1"

	// The catalogue endpoint wants a JSON body but ignores its content.
	stopsRequestBody = `{"key":"value"}`
	maxErrorBody     = 512
)

// Client talks to the stop catalogue and trip search endpoints.
type Client struct {
	StopsURL   string
	TripsURL   string
	UserAgent  string
	HTTPClient *http.Client
	Metrics    *telemetry.Metrics
}

// NewClient creates a new client with the given request timeout.
func NewClient(stopsURL, tripsURL string, timeout time.Duration) *Client {
	return &Client{
		StopsURL:  stopsURL,
		TripsURL:  tripsURL,
		UserAgent: DefaultUserAgent,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchStops downloads the full stop catalogue.
func (c *Client) FetchStops(ctx context.Context) ([]model.Stop, error) {
	body, err := c.post(ctx, "fetch stops", "stops", c.StopsURL, "application/json; charset=UTF-8", stopsRequestBody)
	if err != nil {
		return nil, err
	}
	return model.DecodeCatalogue(body)
}

// FetchTrips runs one search and returns the decoded response document.
func (c *Client) FetchTrips(ctx context.Context, q query.TripQuery) (map[string]any, error) {
	body, err := c.post(ctx, "fetch trips", "trips", c.TripsURL, "application/x-www-form-urlencoded; charset=UTF-8", q.Payload())
	if err != nil {
		return nil, err
	}

	doc, err := parser.DecodeDocument(body)
	if err != nil {
		return nil, apperrors.NewTransportError("fetch trips", 0, "unexpected response body", err)
	}
	return doc, nil
}

// post sends payload to url. op names the call in errors, endpoint labels its metrics.
func (c *Client) post(ctx context.Context, op, endpoint, url, contentType, payload string) (body []byte, err error) {
	started := time.Now()
	defer func() { c.Metrics.ObserveFetch(endpoint, started, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewTransportError(op, 0, "failed to create request", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "*/*")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	telemetry.LogDebug("Sending request", "op", op, "url", url, "bytes", len(payload))

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, apperrors.NewTransportError(op, 0, "failed to execute request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(snippet))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, apperrors.NewTransportError(op, resp.StatusCode, msg, nil)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewTransportError(op, 0, "failed to read response", err)
	}
	telemetry.LogDebug("Received response", "op", op, "status", resp.StatusCode, "bytes", len(body), "took", time.Since(started))
	return body, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) String() string {
	return fmt.Sprintf("arriva client (stops=%s trips=%s)", c.StopsURL, c.TripsURL)
}
