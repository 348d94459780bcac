package model

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraft_Build(t *testing.T) {
	now := time.Date(2020, time.April, 13, 15, 4, 5, 0, time.UTC)

	t.Run("valid draft", func(t *testing.T) {
		txn, err := Draft{
			Title:       "  Desenvolvimento de site ",
			Amount:      "12000",
			Type:        "income",
			CategoryKey: "salary",
		}.Build(now)
		require.NoError(t, err)

		assert.NotEmpty(t, txn.ID)
		assert.Equal(t, "Desenvolvimento de site", txn.Title)
		assert.Equal(t, TypePositive, txn.Type)
		assert.True(t, decimal.NewFromInt(12000).Equal(txn.Amount))
		assert.True(t, NewDate(2020, time.April, 13).Equal(txn.Date))
		assert.NoError(t, txn.Validate())
	})

	t.Run("explicit date and comma amount", func(t *testing.T) {
		txn, err := Draft{
			Title:       "Aluguel",
			Amount:      "1.200,50",
			Type:        "down",
			CategoryKey: "housing",
			Date:        "2020-04-10",
		}.Build(now)
		require.NoError(t, err)
		assert.Equal(t, "1200.5", txn.Amount.String())
		assert.Equal(t, TypeNegative, txn.Type)
		assert.True(t, NewDate(2020, time.April, 10).Equal(txn.Date))
	})

	t.Run("ids are unique", func(t *testing.T) {
		d := Draft{Title: "a", Amount: "1", Type: "up", CategoryKey: "food"}
		a, err := d.Build(now)
		require.NoError(t, err)
		b, err := d.Build(now)
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("reports every invalid field", func(t *testing.T) {
		_, err := Draft{Amount: "-3", Type: "sideways", CategoryKey: "category", Date: "ontem"}.Build(now)
		require.Error(t, err)

		var draftErr *DraftError
		require.True(t, errors.As(err, &draftErr))
		assert.Equal(t, "Nome é obrigatório", draftErr.Fields[FieldTitle])
		assert.Equal(t, "O valor precisa ser positivo", draftErr.Fields[FieldAmount])
		assert.Equal(t, "Selecione o tipo da transação", draftErr.Fields[FieldType])
		assert.Equal(t, "Selecione a categoria", draftErr.Fields[FieldCategory])
		assert.Equal(t, "Data inválida", draftErr.Fields[FieldDate])
		assert.Contains(t, err.Error(), "amount: O valor precisa ser positivo")
	})

	t.Run("non numeric amount", func(t *testing.T) {
		_, err := Draft{Title: "x", Amount: "doze", Type: "up", CategoryKey: "food"}.Build(now)
		var draftErr *DraftError
		require.True(t, errors.As(err, &draftErr))
		assert.Equal(t, "Informe um valor numérico", draftErr.Fields[FieldAmount])
	})

	t.Run("amount rounding to zero cents", func(t *testing.T) {
		_, err := Draft{Title: "x", Amount: "0.004", Type: "up", CategoryKey: "food"}.Build(now)
		var draftErr *DraftError
		require.True(t, errors.As(err, &draftErr))
		assert.Equal(t, "O valor precisa ser positivo", draftErr.Fields[FieldAmount])

		txn, err := Draft{Title: "x", Amount: "0.005", Type: "up", CategoryKey: "food"}.Build(now)
		require.NoError(t, err)
		assert.Equal(t, "0.01", txn.Amount.StringFixed(2))
	})
}

func TestParseTransactionType(t *testing.T) {
	for _, s := range []string{"positive", "Income", "up"} {
		got, ok := ParseTransactionType(s)
		assert.True(t, ok, s)
		assert.Equal(t, TypePositive, got, s)
	}
	for _, s := range []string{"negative", "outcome", "DOWN", "expense"} {
		got, ok := ParseTransactionType(s)
		assert.True(t, ok, s)
		assert.Equal(t, TypeNegative, got, s)
	}
	_, ok := ParseTransactionType("")
	assert.False(t, ok)
}
