package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/gofinances/gofinances/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormReader_ReadLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "successful read", input: "Mercado\n", expected: "Mercado"},
		{name: "extra whitespace", input: "  Mercado  \n", expected: "Mercado"},
		{name: "empty line", input: "\n", expected: ""},
		{name: "last line without newline", input: "59", expected: "59"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewFormReader(strings.NewReader(tt.input), io.Discard)
			got, err := r.ReadLine(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormReader_ReadLineEOF(t *testing.T) {
	r := NewFormReader(strings.NewReader(""), io.Discard)
	_, err := r.ReadLine(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestFormReader_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	r := NewFormReader(pr, io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.ReadLine(ctx)
	assert.ErrorIs(t, err, ErrInputCancelled)
}

func TestFormReader_FillDraft(t *testing.T) {
	var out bytes.Buffer
	r := NewFormReader(strings.NewReader("Hamburgueria Pizzy\noutcome\nfood\n"), &out)

	d := model.Draft{Amount: "59"}
	require.NoError(t, r.FillDraft(context.Background(), &d))

	assert.Equal(t, "Hamburgueria Pizzy", d.Title)
	assert.Equal(t, "59", d.Amount)
	assert.Equal(t, "outcome", d.Type)
	assert.Equal(t, "food", d.CategoryKey)

	prompts := out.String()
	assert.Contains(t, prompts, "Nome")
	assert.NotContains(t, prompts, "Preço")
	assert.Contains(t, prompts, "Alimentação")
}

func TestFormReader_FillDraftComplete(t *testing.T) {
	var out bytes.Buffer
	r := NewFormReader(strings.NewReader(""), &out)

	d := model.Draft{Title: "a", Amount: "1", Type: "income", CategoryKey: "salary"}
	require.NoError(t, r.FillDraft(context.Background(), &d))
	assert.Empty(t, out.String())
}
