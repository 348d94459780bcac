package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// wireTransaction is the persisted JSON shape of a transaction.
type wireTransaction struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Amount      json.RawMessage `json:"amount"`
	Type        TransactionType `json:"type"`
	CategoryKey string          `json:"categoryKey"`
	Date        string          `json:"date"`
}

// MarshalJSON writes the amount as a decimal string and the date as YYYY-MM-DD.
func (t Transaction) MarshalJSON() ([]byte, error) {
	amount, err := json.Marshal(t.Amount.StringFixed(2))
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireTransaction{
		ID:          t.ID,
		Title:       t.Title,
		Amount:      amount,
		Type:        t.Type,
		CategoryKey: t.CategoryKey,
		Date:        t.Date.Format(DateLayout),
	})
}

// UnmarshalJSON accepts the amount as a JSON string or number and the date as
// YYYY-MM-DD or an RFC 3339 timestamp. Shape errors wrap ErrMalformedRecord.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var w wireTransaction
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	raw := bytes.TrimSpace(w.Amount)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return fmt.Errorf("%w: missing amount", ErrMalformedRecord)
	}
	var amount decimal.Decimal
	if err := amount.UnmarshalJSON(raw); err != nil {
		return fmt.Errorf("%w: non-numeric amount %s", ErrMalformedRecord, raw)
	}

	date, err := ParseDate(w.Date)
	if err != nil {
		return err
	}

	*t = Transaction{
		ID:          w.ID,
		Title:       w.Title,
		Amount:      amount,
		Type:        w.Type,
		CategoryKey: w.CategoryKey,
		Date:        date,
	}
	return nil
}
