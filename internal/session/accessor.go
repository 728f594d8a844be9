package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"AssetSentinel/internal/storage"
)

// Credentials is what a successful login leaves behind.
type Credentials struct {
	Token    string
	TenantID string
	UserID   string
}

// Accessor reads and writes the canonical session keys. Values set with
// remember=false live in the session store only.
type Accessor struct {
	persistent storage.Store
	session    storage.Store
	jar        *CookieJar
}

// NewAccessor creates an accessor. sessionStore and jar may be nil.
func NewAccessor(persistent, sessionStore storage.Store, jar *CookieJar) *Accessor {
	if sessionStore == nil {
		sessionStore = storage.NewMemoryStore()
	}
	if jar == nil {
		jar = NewCookieJar()
	}
	return &Accessor{persistent: persistent, session: sessionStore, jar: jar}
}

// Jar returns the cookie jar shared with the HTTP client.
func (a *Accessor) Jar() *CookieJar { return a.jar }

func (a *Accessor) lookup(key string) string {
	if v := storage.Lookup(a.persistent, key); v != "" {
		return v
	}
	return storage.Lookup(a.session, key)
}

// Token returns the bearer token, or "".
func (a *Accessor) Token() string { return a.lookup(storage.KeyToken) }

// TenantID returns the tenant id, or "".
func (a *Accessor) TenantID() string { return a.lookup(storage.KeyTenantID) }

// UserID returns the stored user id. When none is stored it falls back to
// the user_id, userId or sub claim of the token, read without verification.
func (a *Accessor) UserID() string {
	if v := a.lookup(storage.KeyUserID); v != "" {
		return v
	}
	return userIDFromToken(a.Token())
}

// IsAuthenticated reports whether a token is present. It never fails;
// unreadable storage counts as signed out.
func (a *Accessor) IsAuthenticated() bool {
	return a.Token() != ""
}

// SetCredentials stores the result of a login.
func (a *Accessor) SetCredentials(c Credentials, remember bool) error {
	if c.Token == "" {
		return errors.New("token is required")
	}
	target := a.persistent
	if !remember {
		target = a.session
	}
	values := map[string]string{
		storage.KeyToken:    c.Token,
		storage.KeyTenantID: c.TenantID,
		storage.KeyUserID:   c.UserID,
	}
	for k, v := range values {
		if v == "" {
			// drop values left by a previous login
			if err := target.Remove(k); err != nil {
				return fmt.Errorf("clear %s: %w", k, err)
			}
			continue
		}
		if err := target.Set(k, v); err != nil {
			return fmt.Errorf("store %s: %w", k, err)
		}
	}
	return target.Set(storage.KeySchemaVersion, SchemaVersion)
}

// MarkTwoFactorVerified records a successful second-factor check.
func (a *Accessor) MarkTwoFactorVerified(at time.Time) error {
	return a.persistent.Set(storage.KeyLast2FAVerification, strconv.FormatInt(at.UnixMilli(), 10))
}

// LastTwoFactorVerification returns when the second factor was last
// verified. Both unix milliseconds and RFC 3339 values are understood.
func (a *Accessor) LastTwoFactorVerification() (time.Time, bool) {
	raw := a.lookup(storage.KeyLast2FAVerification)
	if raw == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// NeedsTwoFactor reports whether the last verification is missing or older
// than window.
func (a *Accessor) NeedsTwoFactor(now time.Time, window time.Duration) bool {
	last, ok := a.LastTwoFactorVerification()
	if !ok {
		return true
	}
	return now.Sub(last) > window
}

func userIDFromToken(token string) string {
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	for _, name := range []string{"user_id", "userId", "sub"} {
		switch v := claims[name].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
