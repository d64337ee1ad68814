package metrics

import (
	"log"
	"sync"
)

var (
	mu          sync.RWMutex
	globalStore *Store
)

// Init opens the process-wide store at path, or DefaultPath when path is empty.
// Calling it again after a successful open is a no-op.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()
	if globalStore != nil {
		return nil
	}
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	store, err := OpenStore(path)
	if err != nil {
		return err
	}
	globalStore = store
	return nil
}

// RecordInvocation counts one answer request on channel. Without an
// initialized store it does nothing; stats never block answering.
func RecordInvocation(channel Channel) {
	mu.RLock()
	store := globalStore
	mu.RUnlock()
	if store == nil {
		return
	}
	if err := store.Increment(channel); err != nil {
		log.Printf("metrics: failed to record invocation for %s: %v", channel, err)
	}
}

// Stats returns cumulative totals, or nil when no store is open.
func Stats() map[Channel]int64 {
	mu.RLock()
	store := globalStore
	mu.RUnlock()
	if store == nil {
		return nil
	}
	totals, err := store.Totals()
	if err != nil {
		log.Printf("metrics: failed to get stats: %v", err)
		return nil
	}
	return totals
}

// Close closes the process-wide store.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if globalStore == nil {
		return nil
	}
	err := globalStore.Close()
	globalStore = nil
	return err
}

// SetStoreForTesting replaces the process-wide store.
func SetStoreForTesting(store *Store) {
	mu.Lock()
	defer mu.Unlock()
	globalStore = store
}
