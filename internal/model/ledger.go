package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerKind selects one of the two borrow/lend collections.
type LedgerKind string

const (
	LedgerBorrowed LedgerKind = "borrowed"
	LedgerLent     LedgerKind = "lent"
)

// ParseLedgerKind accepts "borrowed"/"borrow" and "lent"/"lend".
func ParseLedgerKind(s string) (LedgerKind, error) {
	switch s {
	case "borrowed", "borrow":
		return LedgerBorrowed, nil
	case "lent", "lend":
		return LedgerLent, nil
	}
	return "", fmt.Errorf("unknown ledger kind %q", s)
}

// LedgerEntry is money borrowed from or lent to someone.
type LedgerEntry struct {
	ID           string          `json:"id"`
	Amount       decimal.Decimal `json:"amount"`
	Purpose      string          `json:"purpose"`
	Counterparty string          `json:"counterparty,omitempty"`
	StartDate    time.Time       `json:"startDate"`
	// EndDate is when the money is due back; zero means no expiry.
	EndDate     time.Time `json:"endDate,omitempty"`
	Done        bool      `json:"done"`
	Reminder    bool      `json:"reminder,omitempty"`
	PaymentLink string    `json:"paymentLink,omitempty"`
}

// Overdue reports whether the entry is open and past its end date.
func (e *LedgerEntry) Overdue(now time.Time) bool {
	return !e.Done && !e.EndDate.IsZero() && now.After(e.EndDate)
}
