package session

import (
	"errors"
	"fmt"

	"AssetSentinel/internal/storage"
)

// LogoutKeys is the fixed set of keys cleared on logout: the canonical
// session keys, the schema stamp, cached settings and every legacy key.
func LogoutKeys() []string {
	keys := append([]string{}, canonicalKeys...)
	keys = append(keys, storage.KeySchemaVersion, storage.KeyGlobalSettings)
	return append(keys, LegacyKeys()...)
}

// Logout clears LogoutKeys from both stores and expires every cookie.
// Ledger data is left in place. All keys are attempted even if one fails.
func (a *Accessor) Logout() error {
	var errs []error
	for _, s := range []storage.Store{a.persistent, a.session} {
		for _, key := range LogoutKeys() {
			if err := s.Remove(key); err != nil {
				errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
			}
		}
	}
	a.jar.ExpireAll()
	return errors.Join(errs...)
}
