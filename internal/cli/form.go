package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gofinances/gofinances/internal/catalog"
	"github.com/gofinances/gofinances/internal/model"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// FormReader asks for the register form fields the user did not pass as flags.
type FormReader struct {
	reader      *bufio.Reader
	out         io.Writer
	readingLock sync.Mutex
}

// NewFormReader creates a reader over in that writes prompts to out.
func NewFormReader(in io.Reader, out io.Writer) *FormReader {
	return &FormReader{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// ReadLine reads a trimmed line, returning ErrInputCancelled if ctx ends first.
func (r *FormReader) ReadLine(ctx context.Context) (string, error) {
	type result struct {
		err   error
		value string
	}
	resultCh := make(chan result, 1)

	go func() {
		r.readingLock.Lock()
		defer r.readingLock.Unlock()

		value, err := r.reader.ReadString('\n')
		if errors.Is(err, io.EOF) && value != "" {
			err = nil
		}
		resultCh <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-resultCh:
		return strings.TrimSpace(res.value), res.err
	}
}

// Ask prompts for label unless current is already set.
func (r *FormReader) Ask(ctx context.Context, label, current string) (string, error) {
	if strings.TrimSpace(current) != "" {
		return current, nil
	}
	if _, err := fmt.Fprint(r.out, FormatPrompt(label)); err != nil {
		return "", err
	}
	return r.ReadLine(ctx)
}

// FillDraft prompts for every empty required field of d.
func (r *FormReader) FillDraft(ctx context.Context, d *model.Draft) error {
	var err error
	if d.Title, err = r.Ask(ctx, "Nome", d.Title); err != nil {
		return err
	}
	if d.Amount, err = r.Ask(ctx, "Preço", d.Amount); err != nil {
		return err
	}
	if d.Type, err = r.Ask(ctx, "Tipo (income/outcome)", d.Type); err != nil {
		return err
	}
	if d.CategoryKey == "" {
		if _, err := fmt.Fprint(r.out, RenderCategories(catalog.All())); err != nil {
			return err
		}
	}
	if d.CategoryKey, err = r.Ask(ctx, "Categoria", d.CategoryKey); err != nil {
		return err
	}
	return nil
}
