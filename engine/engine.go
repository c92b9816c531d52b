package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Sentinel failures shared by the proving and verification engine clients.
var (
	// ErrUnavailable means the engine could not be reached, or kept failing
	// after the retry.
	ErrUnavailable = errors.New("engine unavailable")
	// ErrTimeout means the call exceeded its deadline or was cancelled.
	ErrTimeout = errors.New("engine request timed out")
)

// Rejection is a semantic refusal from an engine (HTTP 4xx or an envelope
// with success=false). Never retried.
type Rejection struct {
	StatusCode  int
	Message     string
	Description string
}

func (r *Rejection) Error() string {
	if r.Description != "" {
		return fmt.Sprintf("engine rejected request (HTTP %d): %s", r.StatusCode, r.Description)
	}
	return fmt.Sprintf("engine rejected request (HTTP %d): %s", r.StatusCode, r.Message)
}

// Envelope is the response wrapper both engines speak.
type Envelope struct {
	Status      int             `json:"status"`
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// Client is a thin HTTP client for one engine endpoint. Safe for concurrent
// use; all blocking is bounded by the caller's context.
type Client struct {
	client  *http.Client
	baseURL string
	log     *logrus.Logger
}

// NewClient creates a Client for the engine at baseURL.
func NewClient(baseURL string, log *logrus.Logger) *Client {
	return &Client{
		client:  &http.Client{},
		baseURL: baseURL,
		log:     log,
	}
}

const retryBackoff = 500 * time.Millisecond

// Post sends body as JSON to path and decodes the envelope data into out.
// Transport errors and engine 5xx responses are retried once after a short
// backoff; semantic rejections are returned as *Rejection and never retried.
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("error encoding JSON body: %w", err)
	}

	uri := c.baseURL + path
	for attempt := 1; ; attempt++ {
		res, statusCode, err := c.do(ctx, uri, jsonBody)
		if err == nil {
			return decodeEnvelope(res, statusCode, out)
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %v", ErrTimeout, ctxErr)
		}
		if statusCode >= 400 && statusCode < 500 {
			return err
		}
		if attempt >= 2 {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		c.log.Warnf("Attempt %d: engine request to %s failed: %v, retrying in %s", attempt, uri, err, retryBackoff)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		case <-time.After(retryBackoff):
		}
	}
}

// Ping performs a lightweight liveness call against the engine.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/health", nil)
	if err != nil {
		return fmt.Errorf("error creating ping request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: ping returned HTTP %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) do(ctx context.Context, uri string, jsonBody []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, 0, fmt.Errorf("error creating POST request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("error making HTTP request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, resp.StatusCode, fmt.Errorf("engine returned HTTP %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		rej := rejectionFrom(bodyBytes, resp.StatusCode)
		return nil, resp.StatusCode, rej
	}

	return bodyBytes, resp.StatusCode, nil
}

func decodeEnvelope(res []byte, statusCode int, out any) error {
	var env Envelope
	if err := json.Unmarshal(res, &env); err != nil {
		return fmt.Errorf("%w: error unmarshalling response: %v", ErrUnavailable, err)
	}
	if !env.Success {
		return &Rejection{StatusCode: statusCode, Message: env.Message, Description: env.Description}
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: error unmarshalling response data: %v", ErrUnavailable, err)
		}
	}
	return nil
}

func rejectionFrom(body []byte, statusCode int) *Rejection {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &Rejection{StatusCode: statusCode, Message: http.StatusText(statusCode)}
	}
	return &Rejection{StatusCode: statusCode, Message: env.Message, Description: env.Description}
}
