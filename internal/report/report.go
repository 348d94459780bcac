// Package report turns a user's transaction list into the dashboard and summary view models.
// Every function here is pure: it performs no I/O and keeps no state between calls.
package report

import (
	"fmt"
	"time"

	"github.com/gofinances/gofinances/internal/catalog"
	"github.com/gofinances/gofinances/internal/locale"
	"github.com/gofinances/gofinances/internal/model"
	"github.com/shopspring/decimal"
)

// NoTransactions is the label used wherever a partition has no records to date it.
const NoTransactions = "Não há transações"

const (
	lastIncomePrefix  = "Última entrada dia "
	lastExpensePrefix = "Última saída dia "
)

var hundred = decimal.NewFromInt(100)

// Row is a transaction prepared for display. FormattedAmount is always unsigned.
type Row struct {
	Category        catalog.Category
	ID              string
	Title           string
	FormattedAmount string
	FormattedDate   string
	CategoryKey     string
	Type            model.TransactionType
}

// Highlight is one dashboard card.
type Highlight struct {
	Amount          string
	LastTransaction string
}

// Highlights holds the income, expenses and net total cards.
type Highlights struct {
	Income   Highlight
	Expenses Highlight
	Total    Highlight

	IncomeSum   decimal.Decimal
	ExpensesSum decimal.Decimal
	Net         decimal.Decimal
}

// CategorySummary is one category's share of a month's expenses.
type CategorySummary struct {
	Key             string
	Name            string
	Color           string
	TotalFormatted  string
	PercentageLabel string
	Total           decimal.Decimal
	Percentage      int64
}

// ValidationError reports a record the engine refused to aggregate.
type ValidationError struct {
	Err   error
	ID    string
	Index int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("record %d (id %q): %v", e.Index, e.ID, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func validate(records []model.Transaction) error {
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return &ValidationError{Index: i, ID: records[i].ID, Err: err}
		}
	}
	return nil
}

// FormatForDisplay returns one row per record, in input order.
func FormatForDisplay(records []model.Transaction) ([]Row, error) {
	if err := validate(records); err != nil {
		return nil, err
	}

	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{
			ID:              r.ID,
			Title:           r.Title,
			FormattedAmount: locale.FormatCurrency(r.Amount),
			FormattedDate:   locale.FormatDate(r.Date),
			Type:            r.Type,
			CategoryKey:     r.CategoryKey,
			Category:        catalog.Lookup(r.CategoryKey),
		}
	}
	return rows, nil
}

// ComputeHighlights sums income and expenses over all records and labels each card
// with the date of its most recent transaction.
func ComputeHighlights(records []model.Transaction) (Highlights, error) {
	if err := validate(records); err != nil {
		return Highlights{}, err
	}

	incomeSum, expensesSum := decimal.Zero, decimal.Zero
	var lastIncome, lastExpense time.Time
	var hasIncome, hasExpense bool

	for _, r := range records {
		switch r.Type {
		case model.TypePositive:
			incomeSum = incomeSum.Add(r.Amount)
			if !hasIncome || r.Date.After(lastIncome) {
				lastIncome = r.Date
			}
			hasIncome = true
		case model.TypeNegative:
			expensesSum = expensesSum.Add(r.Amount)
			if !hasExpense || r.Date.After(lastExpense) {
				lastExpense = r.Date
			}
			hasExpense = true
		}
	}

	net := incomeSum.Sub(expensesSum)

	h := Highlights{
		IncomeSum:   incomeSum,
		ExpensesSum: expensesSum,
		Net:         net,
		Income: Highlight{
			Amount:          locale.FormatCurrency(incomeSum),
			LastTransaction: NoTransactions,
		},
		Expenses: Highlight{
			Amount:          locale.FormatCurrency(expensesSum),
			LastTransaction: NoTransactions,
		},
		Total: Highlight{
			Amount:          locale.FormatCurrency(net),
			LastTransaction: NoTransactions,
		},
	}

	if hasIncome {
		h.Income.LastTransaction = lastIncomePrefix + locale.FormatDayMonth(lastIncome)
	}
	if hasExpense {
		h.Expenses.LastTransaction = lastExpensePrefix + locale.FormatDayMonth(lastExpense)
		h.Total.LastTransaction = intervalLabel(lastExpense)
	}

	return h, nil
}

// intervalLabel spans from the first day of last's month to last: "01 a 16 de abril".
func intervalLabel(last time.Time) string {
	return "01 a " + locale.FormatDayMonth(last)
}

// ComputeCategoryBreakdown splits the expenses of month by catalog category.
// Categories without expenses are omitted; percentages are rounded independently.
func ComputeCategoryBreakdown(records []model.Transaction, month Month) ([]CategorySummary, error) {
	if err := validate(records); err != nil {
		return nil, err
	}

	totalExpenses := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)
	for _, r := range records {
		if r.Type != model.TypeNegative || !month.Contains(r.Date) {
			continue
		}
		totalExpenses = totalExpenses.Add(r.Amount)
		byCategory[r.CategoryKey] = byCategory[r.CategoryKey].Add(r.Amount)
	}

	summaries := []CategorySummary{}
	if totalExpenses.IsZero() {
		return summaries, nil
	}

	for _, c := range catalog.All() {
		sum, ok := byCategory[c.Key]
		if !ok || !sum.IsPositive() {
			continue
		}

		pct := sum.Mul(hundred).Div(totalExpenses).Round(0).IntPart()
		summaries = append(summaries, CategorySummary{
			Key:             c.Key,
			Name:            c.Name,
			Color:           c.Color,
			Total:           sum,
			TotalFormatted:  locale.FormatCurrency(sum),
			Percentage:      pct,
			PercentageLabel: locale.FormatPercent(pct),
		})
	}

	return summaries, nil
}
