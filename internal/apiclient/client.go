// Package apiclient is the thin authenticated wrapper over the remote
// energy API. Each call is a single attempt: no retry, no caching, and no
// network traffic at all when the session cannot produce a token.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gridview/internal/apiclient/metrics"
	"gridview/pkg/platform/sentinel"
)

// TokenSource yields a fresh bearer token for the current session, or
// sentinel.ErrUnauthenticated when none exists.
type TokenSource interface {
	CurrentToken(ctx context.Context) (string, error)
}

// Client issues requests against the energy API.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// New builds a client for the given base URL.
func New(baseURL string, tokens TokenSource, m *metrics.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		http:    http.DefaultClient,
		metrics: m,
		tracer:  otel.Tracer("gridview/apiclient"),
	}
}

// apiRequest describes one call. out, when non-nil, receives the decoded
// 2xx body.
type apiRequest struct {
	method       string
	path         string
	body         any
	requiresAuth bool
	out          any
}

func (c *Client) do(ctx context.Context, apiReq apiRequest) error {
	ctx, span := c.tracer.Start(ctx, "apiclient.request", trace.WithAttributes(
		attribute.String("http.method", apiReq.method),
		attribute.String("http.path", apiReq.path),
	))
	defer span.End()

	var token string
	if apiReq.requiresAuth {
		// Fail fast: an absent session must never produce network traffic.
		var err error
		token, err = c.tokens.CurrentToken(ctx)
		if err != nil {
			if errors.Is(err, sentinel.ErrUnauthenticated) {
				c.metrics.IncrementUnauthedShortfall()
			}
			return err
		}
	}

	var bodyReader *bytes.Reader
	if apiReq.body != nil {
		payload, err := json.Marshal(apiReq.body)
		if err != nil {
			return errors.Wrap(err, "error marshaling request body")
		}
		bodyReader = bytes.NewReader(payload)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, apiReq.method, c.baseURL+apiReq.path, bodyReader)
	if err != nil {
		return errors.Wrapf(err, "error creating request %s %s", apiReq.method, apiReq.path)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "error invoking energy API")
	}
	defer resp.Body.Close()

	c.metrics.ObserveRequest(apiReq.path, resp.StatusCode)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if apiReq.out != nil {
		if err := json.NewDecoder(resp.Body).Decode(apiReq.out); err != nil {
			return errors.Wrap(err, "error unmarshaling response body")
		}
	}
	return nil
}

// decodeError shapes a non-2xx response into *Error. The backend promises
// a JSON body with a "message" field; anything else degrades to a generic
// message rather than failing the failure path.
func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode, Message: fallbackMessage}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
	}
	return apiErr
}
