package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gofinances/gofinances/internal/cli"
	"github.com/gofinances/gofinances/internal/report"
	"github.com/gofinances/gofinances/internal/storage"
)

// Loader computes the category breakdown of a month.
type Loader func(ctx context.Context, month report.Month) ([]report.CategorySummary, error)

// SummaryModel browses the monthly category breakdown one month at a time.
// Every month change issues a new load; results for a month that is no
// longer selected are dropped.
type SummaryModel struct {
	ctx       context.Context
	err       error
	load      Loader
	config    Config
	help      help.Model
	keys      KeyMap
	summaries []report.CategorySummary
	spinner   spinner.Model
	month     report.Month
	shown     report.Month // month the summaries belong to
	hasShown  bool
	loading   bool
	quitting  bool
}

// NewSummaryModel creates a model positioned on month.
func NewSummaryModel(ctx context.Context, load Loader, month report.Month, opts ...Option) SummaryModel {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	h := help.New()
	h.ShowAll = cfg.ShowHelp
	h.Width = cfg.Width

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = cli.InfoStyle

	return SummaryModel{
		ctx:     ctx,
		load:    load,
		config:  cfg,
		help:    h,
		keys:    DefaultKeyMap(),
		spinner: s,
		month:   month,
		loading: true,
	}
}

// Month returns the selected month.
func (m SummaryModel) Month() report.Month { return m.month }

// Summaries returns the breakdown shown for the selected month.
func (m SummaryModel) Summaries() []report.CategorySummary { return m.summaries }

// Err returns the last load failure for the selected month.
func (m SummaryModel) Err() error { return m.err }

// Loading reports whether a load for the selected month is in flight.
func (m SummaryModel) Loading() bool { return m.loading }

// Init implements tea.Model.
func (m SummaryModel) Init() tea.Cmd {
	return tea.Batch(m.fetch(m.month), m.spinner.Tick)
}

// Update implements tea.Model.
func (m SummaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case summaryLoadedMsg:
		if msg.month != m.month {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		switch {
		case msg.err == nil:
			m.summaries = msg.summaries
			m.shown, m.hasShown = msg.month, true
		case errors.Is(msg.err, storage.ErrStorageUnavailable) && m.showing(msg.month):
			// keep the breakdown already on screen
		default:
			m.summaries = nil
			m.hasShown = false
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.config.Width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// showing reports whether the held summaries are month's breakdown.
func (m SummaryModel) showing(month report.Month) bool {
	return m.hasShown && m.shown == month
}

func (m SummaryModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		return m.selectMonth(m.month.Prev())
	case key.Matches(msg, m.keys.Next):
		return m.selectMonth(m.month.Next())
	case key.Matches(msg, m.keys.Today):
		return m.selectMonth(report.MonthOf(m.config.Now()))
	case key.Matches(msg, m.keys.Refresh):
		return m.selectMonth(m.month)
	}
	return m, nil
}

func (m SummaryModel) selectMonth(month report.Month) (tea.Model, tea.Cmd) {
	wasLoading := m.loading
	m.month = month
	m.loading = true
	m.err = nil
	if wasLoading {
		return m, m.fetch(month)
	}
	return m, tea.Batch(m.fetch(month), m.spinner.Tick)
}

func (m SummaryModel) fetch(month report.Month) tea.Cmd {
	ctx, load := m.ctx, m.load
	return func() tea.Msg {
		summaries, err := load(ctx, month)
		return summaryLoadedMsg{month: month, summaries: summaries, err: err}
	}
}

// View implements tea.Model.
func (m SummaryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	switch {
	case m.loading:
		b.WriteString(cli.FormatTitle("Resumo por categoria"))
		b.WriteString("\n")
		b.WriteString(cli.BoldStyle.Render(m.month.Label()))
		b.WriteString("\n\n")
		b.WriteString(m.spinner.View())
		b.WriteString(" Carregando...\n")
	case m.err != nil && m.showing(m.month):
		b.WriteString(cli.StorageNotice(m.err))
		b.WriteString("\n\n")
		b.WriteString(cli.RenderCategorySummary(m.month, m.summaries))
	case m.err != nil:
		b.WriteString(cli.FormatTitle("Resumo por categoria"))
		b.WriteString("\n")
		b.WriteString(cli.BoldStyle.Render(m.month.Label()))
		b.WriteString("\n\n")
		if notice := cli.StorageNotice(m.err); notice != "" {
			b.WriteString(notice)
		} else {
			b.WriteString(cli.FormatError(m.err.Error()))
		}
		b.WriteString("\n")
	default:
		b.WriteString(cli.RenderCategorySummary(m.month, m.summaries))
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}
