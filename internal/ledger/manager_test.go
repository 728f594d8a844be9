package ledger

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"AssetSentinel/internal/model"
	"AssetSentinel/internal/storage"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T) (*Manager, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	m := NewManager(store)
	m.SetClock(func() time.Time { return fixedNow })
	return m, store
}

func entry(id string, amount int64) model.LedgerEntry {
	return model.LedgerEntry{ID: id, Amount: decimal.NewFromInt(amount), Purpose: "p" + id}
}

func TestAdd_AssignsTimestampIDs(t *testing.T) {
	m, _ := newTestManager(t)

	first, err := m.Add(model.LedgerBorrowed, model.LedgerEntry{Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	second, err := m.Add(model.LedgerBorrowed, model.LedgerEntry{Amount: decimal.NewFromInt(20)})
	require.NoError(t, err)

	assert.Equal(t, "1773144000000", first.ID)
	assert.Equal(t, "1773144000001", second.ID)
	assert.Equal(t, fixedNow, first.StartDate)
}

func TestAdd_SameIDIsIdempotent(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Add(model.LedgerLent, entry("1", 10))
	require.NoError(t, err)
	_, err = m.Add(model.LedgerLent, entry("2", 20))
	require.NoError(t, err)

	_, err = m.Add(model.LedgerLent, entry("1", 10))
	require.NoError(t, err)
	_, err = m.Add(model.LedgerLent, entry("1", 10))
	require.NoError(t, err)

	list, err := m.List(model.LedgerLent)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "1", list[0].ID)
	assert.Equal(t, "2", list[1].ID)
}

func TestAdd_ReapplyKeepsStartAndDone(t *testing.T) {
	m, _ := newTestManager(t)
	now := fixedNow
	m.SetClock(func() time.Time { return now })

	first, err := m.Add(model.LedgerLent, entry("x", 10))
	require.NoError(t, err)
	require.NoError(t, m.MarkDone(model.LedgerLent, "x"))

	now = now.Add(48 * time.Hour)
	second, err := m.Add(model.LedgerLent, entry("x", 10))
	require.NoError(t, err)

	assert.True(t, second.StartDate.Equal(first.StartDate), "start %v drifted to %v", first.StartDate, second.StartDate)
	assert.True(t, second.Done)
	stored, err := m.Get(model.LedgerLent, "x")
	require.NoError(t, err)
	assert.True(t, stored.StartDate.Equal(first.StartDate))
	assert.True(t, stored.Done)

	later := fixedNow.AddDate(0, 1, 0)
	moved := entry("x", 12)
	moved.StartDate = later
	third, err := m.Add(model.LedgerLent, moved)
	require.NoError(t, err)
	assert.True(t, third.StartDate.Equal(later), "an explicit start replaces the stored one")
	assert.True(t, third.Amount.Equal(decimal.NewFromInt(12)))
}

func TestAdd_Validation(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Add(model.LedgerLent, model.LedgerEntry{Amount: decimal.Zero})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	_, err = m.Add(model.LedgerLent, model.LedgerEntry{
		Amount:    decimal.NewFromInt(1),
		StartDate: fixedNow,
		EndDate:   fixedNow.AddDate(0, 0, -1),
	})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	_, err = m.Add(model.LedgerKind("gift"), entry("1", 1))
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestMarkDone_IdempotentAndIsolated(t *testing.T) {
	m, _ := newTestManager(t)
	for _, id := range []string{"1", "2", "3"} {
		_, err := m.Add(model.LedgerBorrowed, entry(id, 5))
		require.NoError(t, err)
	}

	require.NoError(t, m.MarkDone(model.LedgerBorrowed, "2"))
	require.NoError(t, m.MarkDone(model.LedgerBorrowed, "2"))

	list, err := m.List(model.LedgerBorrowed)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.False(t, list[0].Done)
	assert.True(t, list[1].Done)
	assert.False(t, list[2].Done)
	assert.Equal(t, entry("1", 5).Purpose, list[0].Purpose)

	assert.ErrorIs(t, m.MarkDone(model.LedgerBorrowed, "nope"), ErrNotFound)
}

func TestDelete_IdempotentAndIsolated(t *testing.T) {
	m, _ := newTestManager(t)
	for _, id := range []string{"1", "2", "3"} {
		_, err := m.Add(model.LedgerLent, entry(id, 5))
		require.NoError(t, err)
	}
	_, err := m.Add(model.LedgerBorrowed, entry("2", 7))
	require.NoError(t, err)

	require.NoError(t, m.Delete(model.LedgerLent, "2"))
	require.NoError(t, m.Delete(model.LedgerLent, "2"))

	lent, err := m.List(model.LedgerLent)
	require.NoError(t, err)
	require.Len(t, lent, 2)
	assert.Equal(t, "1", lent[0].ID)
	assert.Equal(t, "3", lent[1].ID)
	assert.Equal(t, "p3", lent[1].Purpose)

	borrowed, err := m.List(model.LedgerBorrowed)
	require.NoError(t, err)
	assert.Len(t, borrowed, 1, "collections are independent")
}

func TestPersistsUnderFixedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	fs, err := storage.NewFileStore(path)
	require.NoError(t, err)
	m := NewManager(fs)
	_, err = m.Add(model.LedgerBorrowed, entry("42", 100))
	require.NoError(t, err)

	raw, err := fs.Get(storage.KeyBorrowedMoney)
	require.NoError(t, err)
	assert.Contains(t, raw, `"id":"42"`)

	reopened, err := storage.NewFileStore(path)
	require.NoError(t, err)
	got, err := NewManager(reopened).Get(model.LedgerBorrowed, "42")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(got.Amount))
}

func TestOutstanding(t *testing.T) {
	m, _ := newTestManager(t)
	_, _ = m.Add(model.LedgerLent, entry("1", 10))
	_, _ = m.Add(model.LedgerLent, entry("2", 15))
	require.NoError(t, m.MarkDone(model.LedgerLent, "1"))

	total, err := m.Outstanding(model.LedgerLent)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(15).Equal(total), "got %s", total)
}

func TestDueReminders(t *testing.T) {
	m, _ := newTestManager(t)
	due := func(id string, days int, reminder bool) model.LedgerEntry {
		e := entry(id, 1)
		e.StartDate = fixedNow.AddDate(0, -1, 0)
		e.EndDate = fixedNow.AddDate(0, 0, days)
		e.Reminder = reminder
		return e
	}
	_, _ = m.Add(model.LedgerBorrowed, due("soon", 2, true))
	_, _ = m.Add(model.LedgerBorrowed, due("late", 10, true))
	_, _ = m.Add(model.LedgerLent, due("overdue", -1, true))
	_, _ = m.Add(model.LedgerLent, due("quiet", 1, false))
	_, _ = m.Add(model.LedgerLent, due("settled", 1, true))
	require.NoError(t, m.MarkDone(model.LedgerLent, "settled"))

	reminders, err := m.DueReminders(fixedNow, 3*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, reminders, 2)
	assert.Equal(t, "overdue", reminders[0].Entry.ID)
	assert.True(t, reminders[0].Overdue)
	assert.Equal(t, model.LedgerLent, reminders[0].Kind)
	assert.Equal(t, "soon", reminders[1].Entry.ID)
	assert.False(t, reminders[1].Overdue)
}

func TestExportXLSX(t *testing.T) {
	m, _ := newTestManager(t)
	_, _ = m.Add(model.LedgerBorrowed, entry("1", 10))
	_, _ = m.Add(model.LedgerLent, entry("2", 20))
	_, _ = m.Add(model.LedgerLent, entry("3", 30))

	var buf bytes.Buffer
	require.NoError(t, m.ExportXLSX(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Borrowed", "Lent"}, f.GetSheetList())
	rows, err := f.GetRows("Lent")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "3", rows[2][0])
	assert.Equal(t, "p3", rows[2][2])
}
