package cli

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gofinances/gofinances/internal/catalog"
	"github.com/gofinances/gofinances/internal/model"
	"github.com/gofinances/gofinances/internal/report"
	"github.com/gofinances/gofinances/internal/storage"
	"github.com/gofinances/gofinances/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayAmount(t *testing.T) {
	assert.Equal(t, "- R$ 59,00", DisplayAmount(report.Row{Type: model.TypeNegative, FormattedAmount: "R$ 59,00"}))
	assert.Equal(t, "R$ 12.000,00", DisplayAmount(report.Row{Type: model.TypePositive, FormattedAmount: "R$ 12.000,00"}))
}

func TestRenderDashboardParts(t *testing.T) {
	records := testutil.SampleTransactions()

	h, err := report.ComputeHighlights(records)
	require.NoError(t, err)
	cards := RenderHighlights(h)
	for _, want := range []string{"Entradas", "Saídas", "Total", "R$ 12.000,00", "R$ 1.259,00", "R$ 10.741,00", "01 a 16 de abril"} {
		assert.Contains(t, cards, want)
	}

	rows, err := report.FormatForDisplay(records)
	require.NoError(t, err)
	list := RenderTransactionList(rows)
	assert.Contains(t, list, "Listagem")
	assert.Contains(t, list, "- R$ 59,00")
	assert.Contains(t, list, "10/04/2020")
	assert.NotContains(t, list, "- R$ 12.000,00")

	assert.Contains(t, RenderTransactionList(nil), report.NoTransactions)
	assert.Contains(t, RenderGreeting(model.User{Name: "Ana"}), "Olá, ")
}

func TestRenderCategorySummary(t *testing.T) {
	month := report.Month{Year: 2020, Month: time.April}
	summaries, err := report.ComputeCategoryBreakdown(testutil.SampleTransactions(), month)
	require.NoError(t, err)

	out := RenderCategorySummary(month, summaries)
	assert.Contains(t, out, "abril, 2020")
	assert.Contains(t, out, "Alimentação")
	assert.Contains(t, out, "95%")
	assert.Contains(t, out, "R$ 1.200,00")

	empty := RenderCategorySummary(month.Next(), nil)
	assert.Contains(t, empty, "maio, 2020")
	assert.Contains(t, empty, "Nenhum gasto neste mês")
}

func TestRenderCategories(t *testing.T) {
	out := RenderCategories(catalog.All())
	for _, c := range catalog.All() {
		assert.Contains(t, out, c.Key)
		assert.Contains(t, out, c.Name)
	}
}

func TestRenderUser(t *testing.T) {
	out := RenderUser(model.User{ID: "42", Name: "Ana", Email: "ana@example.com"})
	assert.Contains(t, out, "Ana")
	assert.Contains(t, out, "ana@example.com")
	assert.NotContains(t, out, "Foto")
}

func TestStorageNotice(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", storage.ErrStorageUnavailable)
	assert.Contains(t, StorageNotice(wrapped), "Não foi possível acessar os dados salvos")
	assert.Empty(t, StorageNotice(errors.New("other")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "curto", truncate("curto", 10))
	long := strings.Repeat("á", 40)
	got := truncate(long, 32)
	assert.Equal(t, 32, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))
}
