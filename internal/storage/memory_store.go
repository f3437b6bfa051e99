package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/Adda-Baaj/handle-probe/internal/domain"
)

type memoryEntry struct {
	status domain.AccountStatus
	expiry time.Time
}

// memoryStore keeps statuses for the life of the process.
type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func newMemoryStore(opts Options) *memoryStore {
	return &memoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     opts.StatusTTL,
		now:     time.Now,
	}
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) LastStatus(screenName string) (domain.AccountStatus, bool, error) {
	key := domain.NormalizeScreenName(screenName)

	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.expiry.After(m.now()) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.status, true, nil
}

func (m *memoryStore) SaveStatus(screenName string, status domain.AccountStatus) error {
	if _, ok := domain.ParseAccountStatus(string(status)); !ok {
		return fmt.Errorf("invalid account status %q", status)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[domain.NormalizeScreenName(screenName)] = memoryEntry{
		status: status,
		expiry: m.now().Add(m.ttl),
	}
	return nil
}
