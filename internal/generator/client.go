package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

// ErrUpstreamInvalid marks any failure of the external generator: non-200
// status, timeout, unreadable body or missing required keys. Callers treat
// all of them the same way and never retry.
var ErrUpstreamInvalid = errors.New("quiz generator returned an invalid response")

// Client calls the external AI quiz generator over HTTP.
type Client struct {
	url   string
	httpc *http.Client
	log   zerolog.Logger
}

// NewClient creates a generator client. The http.Client's timeout bounds the
// whole generation call.
func NewClient(url string, httpc *http.Client, log zerolog.Logger) *Client {
	return &Client{
		url:   url,
		httpc: httpc,
		log:   log.With().Str("component", "generator_client").Logger(),
	}
}

// generateRequest is the wire payload sent to the generator. The user id is
// optional and only used for generator-side personalization.
type generateRequest struct {
	ResourceURL string `json:"resource_url"`
	UserID      string `json:"id_user,omitempty"`
}

// Generate asks the external service for a quiz over the given resource URL
// and decodes the raw response. Every failure mode wraps ErrUpstreamInvalid.
func (c *Client) Generate(ctx context.Context, resourceURL string, userID int64) (*RawQuizResponse, error) {
	payload := generateRequest{ResourceURL: resourceURL}
	if userID > 0 {
		payload.UserID = strconv.FormatInt(userID, 10)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal generator request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build generator request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		// Timeouts and transport failures are indistinguishable from a
		// broken upstream as far as callers are concerned.
		return nil, fmt.Errorf("%w: %v", ErrUpstreamInvalid, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Msg("Generator returned non-200")
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamInvalid, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstreamInvalid, err)
	}

	decoded, err := DecodeRaw(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamInvalid, err)
	}

	return decoded, nil
}
