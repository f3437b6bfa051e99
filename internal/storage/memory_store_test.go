package storage

import (
	"testing"
	"time"

	"github.com/Adda-Baaj/handle-probe/internal/domain"
)

func TestMemoryStoreExpiresStatuses(t *testing.T) {
	raw, err := NewStore(TypeMemory, "", Options{StatusTTL: time.Minute})
	if err != nil {
		t.Fatalf("NewStore memory: %v", err)
	}
	store := raw.(*memoryStore)
	clock := time.Now()
	store.now = func() time.Time { return clock }

	if err := store.SaveStatus("@_a", domain.StatusSuspended); err != nil {
		t.Fatalf("SaveStatus: %v", err)
	}
	if status, found, _ := store.LastStatus("_A"); !found || status != domain.StatusSuspended {
		t.Fatalf("expected suspended, got %q found=%v", status, found)
	}

	clock = clock.Add(2 * time.Minute)
	if _, found, _ := store.LastStatus("_a"); found {
		t.Fatalf("expected status to expire")
	}
	if err := store.SaveStatus("_a", "gone"); err == nil {
		t.Fatalf("expected error for invalid status")
	}
}
