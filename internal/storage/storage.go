// Package storage persists the last known status of watched accounts so the
// watcher can tell a change from a repeat across restarts.
package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/Adda-Baaj/handle-probe/internal/domain"
)

// Store tracks the most recent status observed per screen name. Names are
// matched case-insensitively.
type Store interface {
	Close() error
	LastStatus(screenName string) (domain.AccountStatus, bool, error)
	SaveStatus(screenName string, status domain.AccountStatus) error
}

// Options controls how long statuses are remembered.
type Options struct {
	// StatusTTL is how long a saved status stays readable. An account not
	// seen for longer is treated as a first sighting again.
	StatusTTL       time.Duration
	CleanupInterval time.Duration
}

// Backend names accepted by NewStore.
const (
	TypeNone   = "none"
	TypeMemory = "memory"
	TypeBBolt  = "bbolt"
)

// NewStore opens the backend named by typ. path is only used by bbolt.
func NewStore(typ, path string, opts Options) (Store, error) {
	if opts.StatusTTL <= 0 {
		opts.StatusTTL = 30 * 24 * time.Hour
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = 12 * time.Hour
	}

	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "", TypeNone, "disabled":
		return discardStore{}, nil
	case TypeMemory:
		return newMemoryStore(opts), nil
	case TypeBBolt:
		path = strings.TrimSpace(path)
		if path == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

// discardStore never remembers anything, so every check is a first sighting.
type discardStore struct{}

func (discardStore) Close() error { return nil }

func (discardStore) LastStatus(string) (domain.AccountStatus, bool, error) {
	return "", false, nil
}

func (discardStore) SaveStatus(string, domain.AccountStatus) error { return nil }
