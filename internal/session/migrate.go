package session

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/PaesslerAG/jsonpath"

	"AssetSentinel/internal/storage"
)

// SchemaVersion is the current canonical session schema.
const SchemaVersion = "1"

// legacySource is one place an older client version kept a value: either a
// plain key, or a JSONPath into the object serialized under Key.
type legacySource struct {
	Key  string
	Path string
}

// Legacy lookups per canonical key, highest precedence first: plain keys,
// then prefixed keys, then fields nested in serialized objects.
var legacySources = map[string][]legacySource{
	storage.KeyToken: {
		{Key: "authToken"},
		{Key: "accessToken"},
		{Key: "app_token"},
		{Key: "app_authToken"},
		{Key: "session", Path: "$.token"},
		{Key: "session", Path: "$.accessToken"},
		{Key: "user", Path: "$.token"},
	},
	storage.KeyTenantID: {
		{Key: "tenant_id"},
		{Key: "tenantID"},
		{Key: "app_tenantId"},
		{Key: "session", Path: "$.tenantId"},
		{Key: "session", Path: "$.tenant.id"},
		{Key: "user", Path: "$.tenantId"},
	},
	storage.KeyUserID: {
		{Key: "user_id"},
		{Key: "app_userId"},
		{Key: "session", Path: "$.userId"},
		{Key: "session", Path: "$.user.id"},
		{Key: "user", Path: "$.id"},
	},
	storage.KeyLast2FAVerification: {
		{Key: "app_last2FAVerification"},
		{Key: "session", Path: "$.last2FAVerification"},
	},
}

// canonicalKeys lists the keys written by the canonical schema.
var canonicalKeys = []string{
	storage.KeyToken,
	storage.KeyTenantID,
	storage.KeyUserID,
	storage.KeyLast2FAVerification,
}

// LegacyKeys returns every key an older client version may have written.
func LegacyKeys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, canonical := range canonicalKeys {
		for _, src := range legacySources[canonical] {
			if !seen[src.Key] {
				seen[src.Key] = true
				keys = append(keys, src.Key)
			}
		}
	}
	return keys
}

// MigrationReport describes what Migrate moved.
type MigrationReport struct {
	AlreadyCurrent bool
	// Migrated maps canonical keys to the legacy key they were read from.
	Migrated map[string]string
	Removed  []string
}

// Migrate rewrites legacy session values into the canonical schema in the
// persistent store. Stores are searched in order, persistent first. Legacy
// keys are removed from every store afterwards and the schema version is
// stamped, so running Migrate again is a no-op.
func Migrate(persistent storage.Store, others ...storage.Store) (*MigrationReport, error) {
	report := &MigrationReport{Migrated: make(map[string]string)}
	if storage.Lookup(persistent, storage.KeySchemaVersion) == SchemaVersion {
		report.AlreadyCurrent = true
		return report, nil
	}

	stores := append([]storage.Store{persistent}, others...)
	for _, canonical := range canonicalKeys {
		if storage.Lookup(persistent, canonical) != "" {
			continue
		}
		value, from := resolveLegacy(stores, legacySources[canonical])
		if value == "" {
			continue
		}
		if err := persistent.Set(canonical, value); err != nil {
			return nil, fmt.Errorf("write %s: %w", canonical, err)
		}
		report.Migrated[canonical] = from
	}

	for _, key := range LegacyKeys() {
		for _, s := range stores {
			if _, err := s.Get(key); err != nil {
				continue
			}
			if err := s.Remove(key); err != nil {
				return nil, fmt.Errorf("remove legacy %s: %w", key, err)
			}
			report.Removed = append(report.Removed, key)
		}
	}

	if err := persistent.Set(storage.KeySchemaVersion, SchemaVersion); err != nil {
		return nil, fmt.Errorf("stamp schema version: %w", err)
	}
	return report, nil
}

func resolveLegacy(stores []storage.Store, sources []legacySource) (value, from string) {
	for _, s := range stores {
		for _, src := range sources {
			raw := storage.Lookup(s, src.Key)
			if raw == "" {
				continue
			}
			if src.Path == "" {
				return raw, src.Key
			}
			if v := extract(raw, src.Path); v != "" {
				return v, src.Key + src.Path[1:]
			}
		}
	}
	return "", ""
}

// extract evaluates path against the JSON document raw and returns the
// result as a string. Unparseable documents and missing fields yield "".
func extract(raw, path string) string {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return ""
	}
	v, err := jsonpath.Get(path, doc)
	if err != nil || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
