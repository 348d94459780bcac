// Package testutil provides fixtures shared by the gofinances test suites.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofinances/gofinances/internal/model"
	"github.com/gofinances/gofinances/internal/storage"
	"github.com/shopspring/decimal"
)

// SetupTestStore creates a migrated SQLite store in a temporary directory.
// It is closed automatically when the test ends.
//
// Example:
//
//	kv := testutil.SetupTestStore(t)
//	store := transactions.NewStore(kv)
func SetupTestStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	kv, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "gofinances.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := kv.Migrate(context.Background()); err != nil {
		_ = kv.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = kv.Close()
	})

	return kv
}

// Transaction builds a record with the amount given as a decimal string.
func Transaction(id, title, amount string, typ model.TransactionType, category string, date time.Time) model.Transaction {
	return model.Transaction{
		ID:          id,
		Title:       title,
		Amount:      decimal.RequireFromString(amount),
		Type:        typ,
		CategoryKey: category,
		Date:        date,
	}
}

// SampleTransactions returns the April 2020 month used across the test suites:
// R$ 12.000,00 of income and R$ 1.259,00 of expenses split between food and housing.
func SampleTransactions() []model.Transaction {
	return []model.Transaction{
		Transaction("1", "Desenvolvimento de site", "12000", model.TypePositive, "salary", model.NewDate(2020, time.April, 13)),
		Transaction("2", "Hamburgueria Pizzy", "59", model.TypeNegative, "food", model.NewDate(2020, time.April, 10)),
		Transaction("3", "Aluguel do apartamento", "1200", model.TypeNegative, "housing", model.NewDate(2020, time.April, 16)),
	}
}
