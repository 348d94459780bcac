// Package locale formats money and dates for the single locale gofinances renders in (pt-BR, BRL).
package locale

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Tag is the fixed display locale.
var Tag = language.BrazilianPortuguese

// CurrencySymbol is the symbol prepended to every amount.
const CurrencySymbol = "R$"

var printer = message.NewPrinter(Tag)

var monthNames = [...]string{
	time.January:   "janeiro",
	time.February:  "fevereiro",
	time.March:     "março",
	time.April:     "abril",
	time.May:       "maio",
	time.June:      "junho",
	time.July:      "julho",
	time.August:    "agosto",
	time.September: "setembro",
	time.October:   "outubro",
	time.November:  "novembro",
	time.December:  "dezembro",
}

// FormatCurrency renders d with grouping and two decimals, e.g. "R$ 1.259,00".
// Negative values carry a leading minus: "-R$ 10,00".
func FormatCurrency(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	dot := strings.IndexByte(fixed, '.')
	return sign + CurrencySymbol + " " + formatInteger(d, fixed[:dot]) + "," + fixed[dot+1:]
}

var maxInt64 = decimal.NewFromInt(math.MaxInt64)

// formatInteger groups the integer digits of a non-negative d.
func formatInteger(d decimal.Decimal, digits string) string {
	if d.LessThanOrEqual(maxInt64) {
		return printer.Sprintf("%d", d.IntPart())
	}
	return groupThousands(digits)
}

// groupThousands inserts "." every three digits of an unsigned integer string.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatDate renders t as dd/MM/yyyy.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// MonthName returns the lower-case month name.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m]
}

// FormatDayMonth renders t as "13 de abril".
func FormatDayMonth(t time.Time) string {
	return fmt.Sprintf("%d de %s", t.Day(), MonthName(t.Month()))
}

// FormatMonthYear renders a month heading as "abril, 2020".
func FormatMonthYear(year int, month time.Month) string {
	return fmt.Sprintf("%s, %d", MonthName(month), year)
}

// FormatPercent renders a whole percentage as "95%".
func FormatPercent(p int64) string {
	return fmt.Sprintf("%d%%", p)
}
