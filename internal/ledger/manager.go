package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"AssetSentinel/internal/model"
	"AssetSentinel/internal/storage"
)

// ErrNotFound is returned when no entry has the requested ID.
var ErrNotFound = errors.New("ledger entry not found")

// ErrInvalidEntry is wrapped by errors for input Add rejects.
var ErrInvalidEntry = errors.New("invalid ledger entry")

// Manager maintains the borrowed and lent collections. Operations on one
// entry never touch the others.
type Manager struct {
	mu    sync.Mutex
	store storage.Store
	now   func() time.Time
}

// NewManager creates a Manager over store.
func NewManager(store storage.Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// SetClock overrides the clock used for IDs and start dates.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// List returns the entries of one collection in insertion order.
func (m *Manager) List(kind model.LedgerKind) ([]model.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return LoadEntries(m.store, kind)
}

// Get returns the entry with id.
func (m *Manager) Get(kind model.LedgerKind, id string) (model.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, err := LoadEntries(m.store, kind)
	if err != nil {
		return model.LedgerEntry{}, err
	}
	if i := indexOf(entries, id); i >= 0 {
		return entries[i], nil
	}
	return model.LedgerEntry{}, ErrNotFound
}

// Add appends entry. An entry whose ID already exists replaces the stored
// one in place, so re-adding is idempotent: a zero StartDate keeps the stored
// start and a settled entry stays settled. An empty ID is derived from the
// current time. Rejected input wraps ErrInvalidEntry.
func (m *Manager) Add(kind model.LedgerKind, entry model.LedgerEntry) (model.LedgerEntry, error) {
	if !entry.Amount.IsPositive() {
		return model.LedgerEntry{}, fmt.Errorf("%w: amount must be positive", ErrInvalidEntry)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := LoadEntries(m.store, kind)
	if err != nil {
		return model.LedgerEntry{}, err
	}

	now := m.now()
	if entry.ID == "" {
		entry.ID = nextID(entries, now)
	}
	i := indexOf(entries, entry.ID)
	if i >= 0 {
		stored := entries[i]
		if entry.StartDate.IsZero() {
			entry.StartDate = stored.StartDate
		}
		entry.Done = entry.Done || stored.Done
	}
	if !entry.EndDate.IsZero() && !entry.StartDate.IsZero() && entry.EndDate.Before(entry.StartDate) {
		return model.LedgerEntry{}, fmt.Errorf("%w: end date is before start date", ErrInvalidEntry)
	}
	if entry.StartDate.IsZero() {
		entry.StartDate = now
	}

	if i >= 0 {
		entries[i] = entry
	} else {
		entries = append(entries, entry)
	}
	if err := SaveEntries(m.store, kind, entries); err != nil {
		return model.LedgerEntry{}, err
	}
	return entry, nil
}

// MarkDone flags the entry as settled. Marking a settled entry again is a no-op.
func (m *Manager) MarkDone(kind model.LedgerKind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := LoadEntries(m.store, kind)
	if err != nil {
		return err
	}
	i := indexOf(entries, id)
	if i < 0 {
		return ErrNotFound
	}
	if entries[i].Done {
		return nil
	}
	entries[i].Done = true
	return SaveEntries(m.store, kind, entries)
}

// Delete removes the entry. Deleting a missing ID is a no-op.
func (m *Manager) Delete(kind model.LedgerKind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := LoadEntries(m.store, kind)
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return SaveEntries(m.store, kind, kept)
}

// Outstanding sums the amounts of open entries.
func (m *Manager) Outstanding(kind model.LedgerKind) (decimal.Decimal, error) {
	entries, err := m.List(kind)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, e := range entries {
		if !e.Done {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

// Reminder is an open entry that is due soon or overdue.
type Reminder struct {
	Kind    model.LedgerKind
	Entry   model.LedgerEntry
	Overdue bool
}

// DueReminders returns open entries with a reminder whose end date is
// before now+within, soonest first.
func (m *Manager) DueReminders(now time.Time, within time.Duration) ([]Reminder, error) {
	var out []Reminder
	deadline := now.Add(within)
	for _, kind := range []model.LedgerKind{model.LedgerBorrowed, model.LedgerLent} {
		entries, err := m.List(kind)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Done || !e.Reminder || e.EndDate.IsZero() || e.EndDate.After(deadline) {
				continue
			}
			out = append(out, Reminder{Kind: kind, Entry: e, Overdue: e.Overdue(now)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Entry.EndDate.Before(out[j].Entry.EndDate)
	})
	return out, nil
}

func indexOf(entries []model.LedgerEntry, id string) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// nextID derives an ID from the current time in milliseconds, bumped past
// any ID already taken.
func nextID(entries []model.LedgerEntry, now time.Time) string {
	ms := now.UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if indexOf(entries, id) < 0 {
			return id
		}
		ms++
	}
}
