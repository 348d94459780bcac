package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/schollz/progressbar/v3"
)

// ImportProgress tracks how many statement files have been processed and saved.
type ImportProgress struct {
	bar    *progressbar.ProgressBar
	writer io.Writer
	files  atomic.Int64
	saved  atomic.Int64
}

// NewImportProgress creates a progress bar over total files writing to w.
func NewImportProgress(w io.Writer, total int) *ImportProgress {
	p := &ImportProgress{writer: w}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[magenta][bold]Importando extratos...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return p
}

// FileDone records a processed file and how many of its transactions were saved.
func (p *ImportProgress) FileDone(saved int) {
	p.files.Add(1)
	p.saved.Add(int64(saved))
	if err := p.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Finish completes the bar.
func (p *ImportProgress) Finish() {
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
}

// Saved returns the number of transactions saved so far.
func (p *ImportProgress) Saved() int {
	return int(p.saved.Load())
}

// Summary describes the work done so far, for interrupt notices.
func (p *ImportProgress) Summary() string {
	return fmt.Sprintf("%d arquivo(s) processado(s), %d transação(ões) salva(s).", p.files.Load(), p.saved.Load())
}
