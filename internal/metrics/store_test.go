package metrics

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "nested", "stats.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreIncrement(t *testing.T) {
	store := openTestStore(t)
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return day }

	require.NoError(t, store.Increment(ChannelWebhook))
	require.NoError(t, store.Increment(ChannelWebhook))
	require.NoError(t, store.Increment(ChannelSlack))

	count, err := store.CountOn(ChannelWebhook, "2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = store.CountOn(ChannelWebhook, "2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestStoreTotalsAcrossDays(t *testing.T) {
	store := openTestStore(t)
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return day }
	require.NoError(t, store.Increment(ChannelMCP))

	day = day.AddDate(0, 0, 1)
	require.NoError(t, store.Increment(ChannelMCP))
	require.NoError(t, store.Increment(ChannelCLI))

	totals, err := store.Totals()
	require.NoError(t, err)
	assert.Equal(t, map[Channel]int64{
		ChannelWebhook:  0,
		ChannelAPI:      0,
		ChannelSlack:    0,
		ChannelMCP:      2,
		ChannelCLI:      1,
		ChannelTelegram: 0,
	}, totals)
}

func TestStoreConcurrentIncrements(t *testing.T) {
	store := openTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Increment(ChannelAPI))
		}()
	}
	wg.Wait()

	totals, err := store.Totals()
	require.NoError(t, err)
	assert.Equal(t, int64(20), totals[ChannelAPI])
}

func TestGlobalRecordInvocation(t *testing.T) {
	t.Cleanup(func() { _ = Close() })

	// no store: silently ignored
	RecordInvocation(ChannelCLI)
	assert.Nil(t, Stats())

	require.NoError(t, Init(filepath.Join(t.TempDir(), "stats.db")))
	require.NoError(t, Init("ignored-second-call.db"))

	RecordInvocation(ChannelCLI)
	RecordInvocation(ChannelCLI)
	assert.Equal(t, int64(2), Stats()[ChannelCLI])

	require.NoError(t, Close())
	assert.Nil(t, Stats())
}
