package hashengine

import (
	"fmt"
	"testing"
)

func TestGrowUnderLoad(t *testing.T) {
	e := newTestEngine(t, 4, WithTunables(Tunables{
		MinBuckets: 4, MaxBuckets: 256, MaxLoad: 0.75, MinLoad: 0.10, MigrateBatch: 2,
	}))

	for i := 0; i < 20; i++ {
		key := fmt.Sprintf("k%02d", i)
		if _, err := e.Put([]byte(key), []byte("v")); err != nil {
			t.Fatalf("Put(%s) failed: %v", key, err)
		}
	}

	// Drive migration to completion with enough additional calls.
	for i := 0; i < 50; i++ {
		e.Get([]byte("k00"))
	}

	stats := e.Stats()
	if stats.BucketCount <= 4 {
		t.Fatalf("BucketCount = %d, expected growth past the initial 4", stats.BucketCount)
	}
	if stats.ItemCount != 20 {
		t.Fatalf("ItemCount = %d, want 20", stats.ItemCount)
	}

	for i := 0; i < 20; i++ {
		key := fmt.Sprintf("k%02d", i)
		if _, err := e.Get([]byte(key)); err != nil {
			t.Fatalf("Get(%s) failed after growth: %v", key, err)
		}
	}

	if e.old.Load() != nil {
		t.Fatalf("expected migration to have finalized after enough follow-up calls")
	}
}

func TestShrinkUnderDeletion(t *testing.T) {
	e := newTestEngine(t, 64, WithTunables(Tunables{
		MinBuckets: 8, MaxBuckets: 256, MaxLoad: 0.75, MinLoad: 0.20, MigrateBatch: 4,
	}))

	for i := 0; i < 30; i++ {
		key := fmt.Sprintf("k%02d", i)
		e.Put([]byte(key), []byte("v"))
	}
	for i := 0; i < 28; i++ {
		key := fmt.Sprintf("k%02d", i)
		if err := e.Delete([]byte(key)); err != nil {
			t.Fatalf("Delete(%s) failed: %v", key, err)
		}
	}

	for i := 0; i < 50; i++ {
		e.Get([]byte("k29"))
	}

	stats := e.Stats()
	if stats.BucketCount >= 64 {
		t.Fatalf("BucketCount = %d, expected shrink below the initial 64", stats.BucketCount)
	}
	if stats.ItemCount != 2 {
		t.Fatalf("ItemCount = %d, want 2", stats.ItemCount)
	}
	for _, key := range []string{"k28", "k29"} {
		if _, err := e.Get([]byte(key)); err != nil {
			t.Fatalf("Get(%s) failed after shrink: %v", key, err)
		}
	}
}

func TestLookupDuringMigrationSeesBothArrays(t *testing.T) {
	e := newTestEngine(t, 4, WithTunables(Tunables{
		MinBuckets: 4, MaxBuckets: 256, MaxLoad: 0.75, MinLoad: 0.10, MigrateBatch: 1,
	}))

	for i := 0; i < 10; i++ {
		key := fmt.Sprintf("k%02d", i)
		e.Put([]byte(key), []byte("v"))
	}

	if e.old.Load() == nil {
		t.Skip("resize already finalized before the assertion; batch size made this race too fast to observe")
	}

	for i := 0; i < 10; i++ {
		key := fmt.Sprintf("k%02d", i)
		if _, err := e.Get([]byte(key)); err != nil {
			t.Fatalf("Get(%s) failed mid-migration: %v", key, err)
		}
	}
}

func TestPutDuringMigrationRemovesStaleOldCopy(t *testing.T) {
	e := newTestEngine(t, 4, WithTunables(Tunables{
		MinBuckets: 4, MaxBuckets: 256, MaxLoad: 0.75, MinLoad: 0.10, MigrateBatch: 1,
	}))
	for i := 0; i < 10; i++ {
		key := fmt.Sprintf("k%02d", i)
		e.Put([]byte(key), []byte("old"))
	}

	if _, err := e.Put([]byte("k00"), []byte("new")); err != nil {
		t.Fatalf("Put(k00) replace during migration failed: %v", err)
	}
	v, err := e.Get([]byte("k00"))
	if err != nil || string(v) != "new" {
		t.Fatalf("Get(k00) = (%q,%v), want (new,nil)", v, err)
	}

	stats := e.Stats()
	if stats.ItemCount != 10 {
		t.Fatalf("ItemCount = %d, want 10 (replace must not change item count)", stats.ItemCount)
	}
}
