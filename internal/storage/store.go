package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when a key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Well-known keys. Together they form the persisted schema of the client.
const (
	KeyToken               = "token"
	KeyTenantID            = "tenantId"
	KeyUserID              = "userId"
	KeyLast2FAVerification = "last2FAVerification"
	KeySchemaVersion       = "sessionSchemaVersion"
	KeyGlobalSettings      = "globalSettings"
	KeyBorrowedMoney       = "borrowed-money"
	KeyLentMoney           = "lent-money"
)

// Store is a string key-value store. Implementations make no attempt to
// coordinate concurrent writers in different processes: the last write wins.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
	Keys() ([]string, error)
	Clear() error
}

// GetJSON decodes the JSON value stored under key into v.
func GetJSON(s Store, key string, v any) error {
	raw, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON stores v under key as JSON.
func SetJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(key, string(data))
}

// Lookup returns the value under key, or "" when it is missing or unreadable.
func Lookup(s Store, key string) string {
	if s == nil {
		return ""
	}
	v, err := s.Get(key)
	if err != nil {
		return ""
	}
	return v
}
