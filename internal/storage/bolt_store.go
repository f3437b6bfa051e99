package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adda-Baaj/handle-probe/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	statusBucket     = "account_status"
	expiryValueBytes = 8
)

// boltStore implements a Store backed by BoltDB. Values are an 8-byte
// big-endian unix expiry followed by the status text.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	statusTTL       time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(statusBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		statusTTL:       opts.StatusTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// LastStatus returns the stored status for screenName. Expired entries read as absent.
func (b *boltStore) LastStatus(screenName string) (domain.AccountStatus, bool, error) {
	if b == nil || b.db == nil {
		return "", false, nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return "", false, err
	}

	var (
		status domain.AccountStatus
		found  bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket, err := statuses(tx)
		if err != nil {
			return err
		}

		value := bucket.Get(statusKey(screenName))
		if value == nil {
			return nil
		}

		expiry, s, ok := decodeValue(value)
		if !ok || !expiry.After(now) {
			return nil
		}
		status, found = s, true
		return nil
	})
	return status, found, err
}

// SaveStatus records status for screenName and refreshes its expiry.
func (b *boltStore) SaveStatus(screenName string, status domain.AccountStatus) error {
	if b == nil || b.db == nil {
		return nil
	}
	if _, ok := domain.ParseAccountStatus(string(status)); !ok {
		return fmt.Errorf("invalid account status %q", status)
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := statuses(tx)
		if err != nil {
			return err
		}
		return bucket.Put(statusKey(screenName), encodeValue(now.Add(b.statusTTL), status))
	})
}

// maybeCleanupExpired purges expired entries at most once per cleanup interval.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := statuses(tx)
		if err != nil {
			return err
		}

		var stale [][]byte
		err = bucket.ForEach(func(k, v []byte) error {
			if expiry, _, ok := decodeValue(v); !ok || !expiry.After(now) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

// count returns the number of stored entries, expired or not.
func (b *boltStore) count() int {
	n := 0
	_ = b.db.View(func(tx *bolt.Tx) error {
		if bucket := tx.Bucket([]byte(statusBucket)); bucket != nil {
			n = bucket.Stats().KeyN
		}
		return nil
	})
	return n
}

// statuses returns the status bucket created by openBolt.
func statuses(tx *bolt.Tx) (*bolt.Bucket, error) {
	bucket := tx.Bucket([]byte(statusBucket))
	if bucket == nil {
		return nil, fmt.Errorf("bucket %q missing", statusBucket)
	}
	return bucket, nil
}

func statusKey(screenName string) []byte {
	return []byte(domain.NormalizeScreenName(screenName))
}

func encodeValue(expiry time.Time, status domain.AccountStatus) []byte {
	buf := make([]byte, expiryValueBytes+len(status))
	binary.BigEndian.PutUint64(buf, uint64(expiry.Unix()))
	copy(buf[expiryValueBytes:], status)
	return buf
}

// decodeValue splits a stored value into its expiry and status.
func decodeValue(value []byte) (time.Time, domain.AccountStatus, bool) {
	if len(value) <= expiryValueBytes {
		return time.Time{}, "", false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix <= 0 {
		return time.Time{}, "", false
	}
	status, ok := domain.ParseAccountStatus(string(value[expiryValueBytes:]))
	if !ok {
		return time.Time{}, "", false
	}
	return time.Unix(unix, 0), status, true
}
