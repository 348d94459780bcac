package tui

import "github.com/gofinances/gofinances/internal/report"

// summaryLoadedMsg carries the breakdown computed for month.
type summaryLoadedMsg struct {
	err       error
	summaries []report.CategorySummary
	month     report.Month
}
