package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gofinances/gofinances/internal/catalog"
	"github.com/gofinances/gofinances/internal/model"
	"github.com/gofinances/gofinances/internal/report"
	"github.com/gofinances/gofinances/internal/storage"
)

const barWidth = 20

// DisplayAmount prefixes expense amounts with "- ". The engine never embeds a sign.
func DisplayAmount(row report.Row) string {
	if row.Type == model.TypeNegative {
		return "- " + row.FormattedAmount
	}
	return row.FormattedAmount
}

// RenderGreeting renders the dashboard header.
func RenderGreeting(user model.User) string {
	greeting := SubtitleStyle.Render("Olá, ") + BoldStyle.Render(user.Name)
	if user.Email != "" {
		greeting += SubtitleStyle.Render(" <" + user.Email + ">")
	}
	return greeting
}

// RenderHighlights renders the income, expenses and total cards side by side.
func RenderHighlights(h report.Highlights) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		renderCard(CardStyle, "Entradas", IncomeStyle.Render(IncomeIcon), h.Income),
		renderCard(CardStyle, "Saídas", ExpenseStyle.Render(ExpenseIcon), h.Expenses),
		renderCard(TotalCardStyle, "Total", BoldStyle.Render(TotalIcon), h.Total),
	)
}

func renderCard(style lipgloss.Style, title, icon string, card report.Highlight) string {
	header := title + " " + icon
	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		BoldStyle.Render(card.Amount),
		SubtitleStyle.Render(card.LastTransaction),
	))
}

// RenderTransactionList renders the "Listagem" section.
func RenderTransactionList(rows []report.Row) string {
	var b strings.Builder
	b.WriteString(FormatTitle("Listagem"))
	b.WriteString("\n")

	if len(rows) == 0 {
		b.WriteString(SubtitleStyle.Render(report.NoTransactions))
		b.WriteString("\n")
		return b.String()
	}

	for _, row := range rows {
		b.WriteString(RenderRow(row))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderRow renders one transaction card on a single line.
func RenderRow(row report.Row) string {
	amountStyle := IncomeStyle
	if row.Type == model.TypeNegative {
		amountStyle = ExpenseStyle
	}

	category := lipgloss.NewStyle().Foreground(lipgloss.Color(row.Category.Color)).Render(row.Category.Name)

	return fmt.Sprintf("%-32s %s  %s  %s",
		truncate(row.Title, 32),
		amountStyle.Render(fmt.Sprintf("%16s", DisplayAmount(row))),
		category,
		SubtitleStyle.Render(row.FormattedDate))
}

// RenderCategorySummary renders a month's breakdown with proportional bars.
func RenderCategorySummary(month report.Month, summaries []report.CategorySummary) string {
	var b strings.Builder
	b.WriteString(FormatTitle("Resumo por categoria"))
	b.WriteString("\n")
	b.WriteString(BoldStyle.Render(month.Label()))
	b.WriteString("\n\n")

	if len(summaries) == 0 {
		b.WriteString(SubtitleStyle.Render("Nenhum gasto neste mês"))
		b.WriteString("\n")
		return b.String()
	}

	for _, s := range summaries {
		color := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color))
		filled := int(s.Percentage) * barWidth / 100
		if filled > barWidth {
			filled = barWidth
		}
		bar := color.Render(strings.Repeat("█", filled)) + SubtitleStyle.Render(strings.Repeat("░", barWidth-filled))
		fmt.Fprintf(&b, "%s %-14s %s %5s  %s\n",
			color.Render("●"), s.Name, bar, s.PercentageLabel, s.TotalFormatted)
	}
	return b.String()
}

// RenderCategories lists the catalog.
func RenderCategories(categories []catalog.Category) string {
	var b strings.Builder
	b.WriteString(FormatTitle("Categorias"))
	b.WriteString("\n")
	for _, c := range categories {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("●")
		fmt.Fprintf(&b, "%s %-10s %-12s %s\n", swatch, c.Key, c.Name, SubtitleStyle.Render(c.Icon))
	}
	return b.String()
}

// RenderUser renders the whoami output.
func RenderUser(user model.User) string {
	lines := []string{
		"Nome:   " + user.Name,
		"E-mail: " + user.Email,
		"ID:     " + user.ID,
	}
	if user.Photo != "" {
		lines = append(lines, "Foto:   "+user.Photo)
	}
	return RenderBox("Usuário", strings.Join(lines, "\n"))
}

// StorageNotice returns a non-fatal notice for storage failures, or "" for other errors.
func StorageNotice(err error) string {
	if !errors.Is(err, storage.ErrStorageUnavailable) {
		return ""
	}
	return FormatWarning("Não foi possível acessar os dados salvos. Tente novamente mais tarde.")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
