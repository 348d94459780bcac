package model

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gofinances/gofinances/internal/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Form field names reported by DraftError.
const (
	FieldTitle    = "title"
	FieldAmount   = "amount"
	FieldType     = "type"
	FieldCategory = "category"
	FieldDate     = "date"
)

// Draft is the raw input of the register form.
type Draft struct {
	Title       string
	Amount      string
	Type        string // positive/negative, income/outcome or up/down
	CategoryKey string
	Date        string // Optional; defaults to today
}

// DraftError lists every field of a Draft that failed validation.
type DraftError struct {
	Fields map[string]string
}

func (e *DraftError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, e.Fields[name])
	}
	return "invalid transaction: " + strings.Join(parts, "; ")
}

// ParseTransactionType maps the accepted spellings of a direction to a TransactionType.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "income", "up":
		return TypePositive, true
	case "negative", "outcome", "expense", "down":
		return TypeNegative, true
	}
	return "", false
}

// ParseAmount reads a decimal amount written with a dot or a comma as decimal separator.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: non-numeric amount %q", ErrMalformedRecord, s)
	}
	return d, nil
}

// Build validates the draft and returns a new transaction with a fresh id.
func (d Draft) Build(now time.Time) (Transaction, error) {
	problems := make(map[string]string)

	title := strings.TrimSpace(d.Title)
	if title == "" {
		problems[FieldTitle] = "Nome é obrigatório"
	}

	amount, err := ParseAmount(d.Amount)
	switch {
	case strings.TrimSpace(d.Amount) == "":
		problems[FieldAmount] = "Preço é obrigatório"
	case err != nil:
		problems[FieldAmount] = "Informe um valor numérico"
	case !amount.Round(2).IsPositive():
		problems[FieldAmount] = "O valor precisa ser positivo"
	}

	txType, ok := ParseTransactionType(d.Type)
	if !ok {
		problems[FieldType] = "Selecione o tipo da transação"
	}

	if !catalog.Has(d.CategoryKey) {
		problems[FieldCategory] = "Selecione a categoria"
	}

	date := TruncateDate(now)
	if strings.TrimSpace(d.Date) != "" {
		parsed, parseErr := ParseDate(d.Date)
		if parseErr != nil {
			problems[FieldDate] = "Data inválida"
		} else {
			date = parsed
		}
	}

	if len(problems) > 0 {
		return Transaction{}, &DraftError{Fields: problems}
	}

	return Transaction{
		ID:          uuid.NewString(),
		Title:       title,
		Amount:      amount.Round(2),
		Type:        txType,
		CategoryKey: d.CategoryKey,
		Date:        date,
	}, nil
}
