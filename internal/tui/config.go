package tui

import (
	"io"
	"time"
)

// Config holds TUI configuration.
type Config struct {
	Input     io.Reader
	Output    io.Writer
	Now       func() time.Time
	Width     int
	AltScreen bool
	ShowHelp  bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Now:       time.Now,
		Width:     80,
		AltScreen: true,
		ShowHelp:  false,
	}
}

// WithInput reads key presses from r instead of the terminal.
func WithInput(r io.Reader) Option {
	return func(c *Config) { c.Input = r }
}

// WithOutput renders to w instead of the terminal.
func WithOutput(w io.Writer) Option {
	return func(c *Config) { c.Output = w }
}

// WithClock overrides the clock used by the "current month" shortcut.
func WithClock(now func() time.Time) Option {
	return func(c *Config) { c.Now = now }
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) { c.AltScreen = enabled }
}

// WithWidth sets the initial render width.
func WithWidth(width int) Option {
	return func(c *Config) { c.Width = width }
}

// WithFullHelp starts with the expanded help footer.
func WithFullHelp() Option {
	return func(c *Config) { c.ShowHelp = true }
}
