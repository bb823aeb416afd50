// Package portal implements the HTTP client for the Ruppin student portal
// web API. Every endpoint is a JSON POST; authenticated calls carry a bearer
// token. Transport failures and non-2xx replies surface as ErrUpstream,
// unexpected payload shapes as ErrUpstreamParse.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/myruppin/portal-companion/pkg/config"
	appErrors "github.com/myruppin/portal-companion/pkg/errors"
)

// emptyParams is the body the portal expects on parameterless data endpoints.
const emptyParams = `{"urlParameters":{}}`

// Client talks to the portal API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New constructs a Client from configuration.
func New(cfg config.Portal, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// postJSON issues an authenticated POST and decodes the reply into dest.
// A non-nil dest must be a pointer. Pass token == "" for unauthenticated
// endpoints (login).
func (c *Client) postJSON(ctx context.Context, path, token string, body interface{}, dest interface{}) error {
	var payload []byte
	switch b := body.(type) {
	case nil:
		payload = []byte(emptyParams)
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode request body")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "portal request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "read portal response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("portal returned non-2xx",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return appErrors.Wrap(
			fmt.Errorf("unexpected status %d", resp.StatusCode),
			appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "portal request failed",
		)
	}

	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstreamParse.Code, appErrors.ErrUpstreamParse.Status, "decode portal response")
	}
	return nil
}

// flexString tolerates the portal's habit of sending numbers where the app
// expects strings (grades and weights in particular).
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string { return string(f) }

// or returns the value, or def when the field was absent or empty.
func (f flexString) or(def string) string {
	if f == "" {
		return def
	}
	return string(f)
}
