// Package model defines the records persisted by gofinances and their validation rules.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType carries the direction of a transaction. Amounts never carry a sign.
type TransactionType string

const (
	// TypePositive marks income.
	TypePositive TransactionType = "positive"
	// TypeNegative marks an expense.
	TypeNegative TransactionType = "negative"
)

// DateLayout is the layout dates are written with.
const DateLayout = "2006-01-02"

// ErrMalformedRecord indicates a stored or supplied record that fails shape/type validation.
var ErrMalformedRecord = errors.New("malformed transaction record")

// IsValid reports whether t is one of the known transaction types.
func (t TransactionType) IsValid() bool {
	return t == TypePositive || t == TypeNegative
}

// Transaction is one income or expense entry of a user.
type Transaction struct {
	Date        time.Time
	Amount      decimal.Decimal // Unsigned magnitude
	ID          string
	Title       string
	CategoryKey string
	Type        TransactionType
}

// Validate checks the invariants every persisted record must hold.
func (t *Transaction) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: nil transaction", ErrMalformedRecord)
	}
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrMalformedRecord)
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("%w: unknown type %q", ErrMalformedRecord, t.Type)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrMalformedRecord)
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("%w: negative amount %s", ErrMalformedRecord, t.Amount)
	}
	return nil
}

// IsIncome reports whether the transaction is an income entry.
func (t *Transaction) IsIncome() bool {
	return t.Type == TypePositive
}

// IsExpense reports whether the transaction is an expense entry.
func (t *Transaction) IsExpense() bool {
	return t.Type == TypeNegative
}

// NewDate returns the calendar date y-m-d at UTC midnight.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// TruncateDate drops the time-of-day of t, keeping the calendar date it has in its own location.
func TruncateDate(t time.Time) time.Time {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the calendar date.
// Timestamps keep the date they have in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty date", ErrMalformedRecord)
	}
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: unparseable date %q", ErrMalformedRecord, s)
	}
	return TruncateDate(ts.UTC()), nil
}
