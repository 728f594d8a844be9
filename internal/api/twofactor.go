package api

import (
	"context"
	"errors"
	"net/http"
)

// TwoFactorSetup is returned when enrolling a new authenticator.
type TwoFactorSetup struct {
	Secret      string   `json:"secret"`
	QRCode      string   `json:"qrCode"`
	BackupCodes []string `json:"backupCodes,omitempty"`
}

// TwoFactorStatus reports whether the account has a second factor.
type TwoFactorStatus struct {
	Enabled bool `json:"enabled"`
}

type codeRequest struct {
	Code string `json:"code"`
}

func (c *Client) TwoFactorSetup(ctx context.Context) (*TwoFactorSetup, error) {
	var setup TwoFactorSetup
	if err := c.do(ctx, http.MethodPost, "/api/2fa/setup", nil, &setup); err != nil {
		return nil, err
	}
	return &setup, nil
}

// TwoFactorVerify checks code with the backend. On success the session is
// marked as verified now.
func (c *Client) TwoFactorVerify(ctx context.Context, code string) (bool, error) {
	if code == "" {
		return false, errors.New("verification code is required")
	}
	var result struct {
		Verified bool `json:"verified"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/2fa/verify", codeRequest{Code: code}, &result); err != nil {
		return false, err
	}
	if result.Verified && c.twoFactor != nil {
		if err := c.twoFactor.MarkTwoFactorVerified(c.now()); err != nil {
			c.log.WithError(err).Warn("failed to record 2FA verification")
		}
	}
	return result.Verified, nil
}

func (c *Client) TwoFactorDisable(ctx context.Context, code string) error {
	if code == "" {
		return errors.New("verification code is required")
	}
	return c.do(ctx, http.MethodPost, "/api/2fa/disable", codeRequest{Code: code}, nil)
}

func (c *Client) TwoFactorStatus(ctx context.Context) (*TwoFactorStatus, error) {
	var status TwoFactorStatus
	if err := c.do(ctx, http.MethodGet, "/api/2fa/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Logout tells the backend to end the session. Callers clear local state
// regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}
