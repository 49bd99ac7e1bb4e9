package hashengine

import "testing"

func TestInsertLookupDeleteRoundTrip(t *testing.T) {
	ba := newBucketArray(16)
	digest := uint64(42)
	isNew, prevLen, err := insertIn(ba, digest, []byte("k1"), []byte("v1"))
	if err != nil || !isNew || prevLen != 0 {
		t.Fatalf("insertIn = (%v,%v,%v), want (true,0,nil)", isNew, prevLen, err)
	}

	v, ok := lookupIn(ba, digest, []byte("k1"))
	if !ok || string(v) != "v1" {
		t.Fatalf("lookupIn = (%q,%v), want (v1,true)", v, ok)
	}

	isNew, prevLen, err = insertIn(ba, digest, []byte("k1"), []byte("v2"))
	if err != nil || isNew || prevLen != 2 {
		t.Fatalf("replace insertIn = (%v,%v,%v), want (false,2,nil)", isNew, prevLen, err)
	}
	v, ok = lookupIn(ba, digest, []byte("k1"))
	if !ok || string(v) != "v2" {
		t.Fatalf("lookupIn after replace = (%q,%v), want (v2,true)", v, ok)
	}

	kl, vl, found := deleteIn(ba, digest, []byte("k1"))
	if !found || kl != 2 || vl != 2 {
		t.Fatalf("deleteIn = (%v,%v,%v), want (2,2,true)", kl, vl, found)
	}

	if _, ok := lookupIn(ba, digest, []byte("k1")); ok {
		t.Fatalf("lookupIn found a deleted key")
	}
}

func TestInsertReusesTombstoneAheadOfEmpty(t *testing.T) {
	ba := newBucketArray(4)
	// All four keys collide into bucket 0's probe chain (digest % 4 == 0).
	mustInsert(t, ba, 0, "a", "1")
	mustInsert(t, ba, 0, "b", "2")
	mustInsert(t, ba, 0, "c", "3")

	if _, _, found := deleteIn(ba, 0, []byte("a")); !found {
		t.Fatalf("delete of a failed")
	}

	// a's slot (index 0) is now a tombstone ahead of the first EMPTY slot
	// (index 3). Inserting a new, distinct key must land in index 0.
	isNew, _, err := insertIn(ba, 0, []byte("d"), []byte("4"))
	if err != nil || !isNew {
		t.Fatalf("insertIn(d) = (%v,%v), want (true,nil)", isNew, err)
	}
	if ba.buckets[0].state.Load() != stateOccupied || string(ba.buckets[0].key) != "d" {
		t.Fatalf("expected tombstone at index 0 to be reused by the new key")
	}

	for _, want := range []string{"b", "c", "d"} {
		if v, ok := lookupIn(ba, 0, []byte(want)); !ok {
			t.Fatalf("lookupIn(%s) failed after tombstone reuse", want)
		} else {
			_ = v
		}
	}
	if _, ok := lookupIn(ba, 0, []byte("a")); ok {
		t.Fatalf("deleted key a should not be found")
	}
}

func TestInsertNoSpaceWhenFull(t *testing.T) {
	ba := newBucketArray(2)
	mustInsert(t, ba, 5, "k1", "v1")
	mustInsert(t, ba, 5, "k2", "v2")

	_, _, err := insertIn(ba, 5, []byte("k3"), []byte("v3"))
	if err == nil {
		t.Fatalf("expected NoSpace when the array is saturated, got nil")
	}
	herr, ok := err.(*HashError)
	if !ok || herr.Kind != KindNoSpace {
		t.Fatalf("expected KindNoSpace, got %v", err)
	}
}

func TestLookupSkipsTombstonesAcrossWraparound(t *testing.T) {
	ba := newBucketArray(4)
	mustInsert(t, ba, 3, "a", "1")
	mustInsert(t, ba, 3, "b", "2") // wraps around to index 0
	if _, _, found := deleteIn(ba, 3, []byte("a")); !found {
		t.Fatalf("delete of a failed")
	}
	v, ok := lookupIn(ba, 3, []byte("b"))
	if !ok || string(v) != "2" {
		t.Fatalf("lookupIn(b) across a leading tombstone = (%q,%v), want (2,true)", v, ok)
	}
}

func mustInsert(t *testing.T, ba *bucketArray, digest uint64, key, value string) {
	t.Helper()
	if _, _, err := insertIn(ba, digest, []byte(key), []byte(value)); err != nil {
		t.Fatalf("insertIn(%s) failed: %v", key, err)
	}
}
