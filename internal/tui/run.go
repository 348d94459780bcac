package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gofinances/gofinances/internal/report"
)

// RunSummary runs the interactive monthly summary until the user quits
// or ctx is cancelled.
func RunSummary(ctx context.Context, load Loader, month report.Month, opts ...Option) error {
	if load == nil {
		return errors.New("summary loader is required")
	}

	model := NewSummaryModel(ctx, load, month, opts...)

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if model.config.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	if model.config.Input != nil {
		programOpts = append(programOpts, tea.WithInput(model.config.Input))
	}
	if model.config.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(model.config.Output))
	}

	if _, err := tea.NewProgram(model, programOpts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("summary view failed: %w", err)
	}
	return nil
}
