package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"AssetSentinel/internal/logger"
	"AssetSentinel/internal/storage"
)

const maxErrorBody = 64 << 10

// Credentials supplies the values sent with every request.
type Credentials interface {
	Token() string
	TenantID() string
}

// TwoFactorRecorder is notified after a successful second-factor check.
type TwoFactorRecorder interface {
	MarkTwoFactorVerified(at time.Time) error
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Options configures optional client behaviour.
type Options struct {
	Timeout       time.Duration
	Jar           http.CookieJar
	SettingsCache storage.Store
	TwoFactor     TwoFactorRecorder
	Logger        *logrus.Logger
}

// Client talks to the asset-management backend. Requests are sent once;
// there is no retry and no batching.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	creds     Credentials
	cache     storage.Store
	twoFactor TwoFactorRecorder
	log       *logrus.Entry
	now       func() time.Time
}

// NewClient creates a client for baseURL. creds may be nil for anonymous calls.
func NewClient(baseURL string, creds Credentials, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: timeout,
			Jar:     opts.Jar,
		},
		creds:     creds,
		cache:     opts.SettingsCache,
		twoFactor: opts.TwoFactor,
		log:       logger.WithComponent(opts.Logger, "api"),
		now:       time.Now,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if token := c.creds.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if tenant := c.creds.TenantID(); tenant != "" {
			req.Header.Set("Tenant-ID", tenant)
			req.Header.Set("X-Tenant-ID", tenant)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
		c.log.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}).Debug("request failed")
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func errorMessage(status int, raw []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" {
		return msg
	}
	return http.StatusText(status)
}
