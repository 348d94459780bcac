package transactions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gofinances/gofinances/internal/common"
	"github.com/gofinances/gofinances/internal/model"
	"github.com/gofinances/gofinances/internal/storage"
	"github.com/gofinances/gofinances/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() Option {
	return WithRetryOptions(common.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond})
}

func TestStore_LoadEmpty(t *testing.T) {
	store := NewStore(storage.NewMemoryStorage())

	records, err := store.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestStore_AppendAndLoad(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testutil.SetupTestStore(t))

	for _, r := range testutil.SampleTransactions() {
		require.NoError(t, store.Append(ctx, "u1", r))
	}

	records, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{records[0].ID, records[1].ID, records[2].ID})
	assert.Equal(t, "1200", records[2].Amount.String())
	assert.True(t, model.NewDate(2020, time.April, 16).Equal(records[2].Date))

	other, err := store.Load(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestStore_AppendRejectsDuplicatesAndInvalid(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryStorage())
	sample := testutil.SampleTransactions()

	require.NoError(t, store.Append(ctx, "u1", sample[0]))
	assert.ErrorIs(t, store.Append(ctx, "u1", sample[0]), ErrDuplicateTransaction)

	bad := sample[1]
	bad.Type = "sideways"
	assert.ErrorIs(t, store.Append(ctx, "u1", bad), model.ErrMalformedRecord)

	assert.ErrorIs(t, store.Append(ctx, " ", sample[1]), ErrMissingUser)

	records, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestStore_LoadSkipsMalformedRecords(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStorage()
	snapshot := `[
		{"id":"1","title":"Salário","amount":"5000","type":"positive","categoryKey":"salary","date":"2021-02-05T13:00:00.000Z"},
		{"id":"2","title":"Sem valor","type":"negative","categoryKey":"food","date":"2021-02-06"},
		{"id":"3","title":"Mercado","amount":120.5,"type":"negative","categoryKey":"food","date":"2021-02-07"},
		{"id":"4","title":"Tipo errado","amount":"10","type":"sideways","categoryKey":"food","date":"2021-02-08"},
		"not an object",
		{"id":"5","title":"Negativo","amount":"-3","type":"negative","categoryKey":"food","date":"2021-02-09"}
	]`
	require.NoError(t, kv.SetItem(ctx, storage.TransactionsKey("u1"), snapshot))

	records, err := NewStore(kv).Load(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].ID)
	assert.True(t, model.NewDate(2021, time.February, 5).Equal(records[0].Date))
	assert.Equal(t, "3", records[1].ID)
	assert.Equal(t, "120.5", records[1].Amount.String())
}

func TestStore_CorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStorage()
	require.NoError(t, kv.SetItem(ctx, storage.TransactionsKey("u1"), `{"id":"1"}`))
	store := NewStore(kv)

	_, err := store.Load(ctx, "u1")
	assert.ErrorIs(t, err, ErrCorruptSnapshot)

	err = store.Append(ctx, "u1", testutil.SampleTransactions()[0])
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestStore_RetriesTransientReadFailures(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStorage()
	store := NewStore(kv, fastRetry())
	require.NoError(t, store.Append(ctx, "u1", testutil.SampleTransactions()[0]))

	kv.FailNextGets(2)
	records, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestStore_StorageUnavailable(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStorage()
	store := NewStore(kv, fastRetry())

	kv.FailNextGets(3)
	_, err := store.Load(ctx, "u1")
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)

	kv.FailNextSets(1)
	err = store.Append(ctx, "u1", testutil.SampleTransactions()[0])
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)

	records, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_LoadReturnsIndependentCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryStorage())
	require.NoError(t, store.Append(ctx, "u1", testutil.SampleTransactions()[0]))

	a, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	a[0].Title = "changed"

	b, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Desenvolvimento de site", b[0].Title)
}

func TestStore_ConcurrentAppendsAndLoads(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testutil.SetupTestStore(t))

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r := testutil.Transaction(
				string(rune('a'+i)), "t", "1", model.TypeNegative, "food", model.NewDate(2021, time.May, 1))
			assert.NoError(t, store.Append(ctx, "u1", r))
		}(i)
		go func() {
			defer wg.Done()
			_, err := store.Load(ctx, "u1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	records, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, records, n)
}

func TestStore_AppendBatch(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryStorage())
	sample := testutil.SampleTransactions()
	require.NoError(t, store.Append(ctx, "u1", sample[0]))

	added, err := store.AppendBatch(ctx, "u1", []model.Transaction{sample[0], sample[1], sample[2], sample[1]})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	records, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, records, 3)

	bad := sample[2]
	bad.ID = ""
	_, err = store.AppendBatch(ctx, "u1", []model.Transaction{bad})
	assert.ErrorIs(t, err, model.ErrMalformedRecord)

	added, err = store.AppendBatch(ctx, "u1", sample)
	require.NoError(t, err)
	assert.Zero(t, added)
}
