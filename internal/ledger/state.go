package ledger

import (
	"errors"
	"fmt"
	"time"

	"AssetSentinel/internal/model"
	"AssetSentinel/internal/storage"
)

// storageKey maps a ledger kind to the key its collection lives under.
func storageKey(kind model.LedgerKind) (string, error) {
	switch kind {
	case model.LedgerBorrowed:
		return storage.KeyBorrowedMoney, nil
	case model.LedgerLent:
		return storage.KeyLentMoney, nil
	}
	return "", fmt.Errorf("%w: unknown ledger kind %q", ErrInvalidEntry, kind)
}

// LoadEntries reads one collection. A missing key yields an empty list.
func LoadEntries(store storage.Store, kind model.LedgerKind) ([]model.LedgerEntry, error) {
	key, err := storageKey(kind)
	if err != nil {
		return nil, err
	}
	var entries []model.LedgerEntry
	if err := storage.GetJSON(store, key, &entries); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []model.LedgerEntry{}, nil
		}
		return nil, err
	}
	if entries == nil {
		entries = []model.LedgerEntry{}
	}
	return entries, nil
}

// SaveEntries writes one collection as a JSON array.
func SaveEntries(store storage.Store, kind model.LedgerKind, entries []model.LedgerEntry) error {
	key, err := storageKey(kind)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []model.LedgerEntry{}
	}
	return storage.SetJSON(store, key, entries)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
