package hashengine

import "bytes"

// lookupIn scans ba starting at digest's home slot, stopping at the first
// EMPTY bucket or after one full sweep. Tombstones are skipped. A bucket
// observed OCCUPIED in the lock-free prescan is re-verified under its own
// lock before its key/value are trusted.
func lookupIn(ba *bucketArray, digest uint64, key []byte) ([]byte, bool) {
	n := ba.count()
	if n == 0 {
		return nil, false
	}
	start := digest % n
	for i := uint64(0); i < n; i++ {
		idx := (start + i) % n
		b := &ba.buckets[idx]
		switch b.state.Load() {
		case stateEmpty:
			return nil, false
		case stateOccupied:
			b.mu.Lock()
			if b.state.Load() == stateOccupied && b.hash == digest && bytes.Equal(b.key, key) {
				v := append([]byte(nil), b.value...)
				b.mu.Unlock()
				return v, true
			}
			b.mu.Unlock()
		}
	}
	return nil, false
}

// insertIn writes key/value into ba, replacing an existing occupant with the
// same key or claiming the first tombstone seen during the sweep (falling
// back to the first EMPTY slot if no tombstone was seen). It returns whether
// this created a new entry and, for a replace, the length of the value it
// displaced.
func insertIn(ba *bucketArray, digest uint64, key, value []byte) (isNew bool, prevValueLen int, err error) {
	for {
		isNew, prevValueLen, err, retry := tryInsertOnce(ba, digest, key, value)
		if !retry {
			return isNew, prevValueLen, err
		}
	}
}

func tryInsertOnce(ba *bucketArray, digest uint64, key, value []byte) (isNew bool, prevValueLen int, err error, retry bool) {
	n := ba.count()
	if n == 0 {
		return false, 0, newError(KindNoSpace, "Put", key, "bucket array has no slots"), false
	}
	start := digest % n
	firstTombstone := int64(-1)

	for i := uint64(0); i < n; i++ {
		idx := (start + i) % n
		b := &ba.buckets[idx]
		switch b.state.Load() {
		case stateEmpty:
			target := idx
			if firstTombstone >= 0 {
				target = uint64(firstTombstone)
			}
			tb := &ba.buckets[target]
			tb.mu.Lock()
			if tb.state.Load() == stateOccupied {
				// Lost a race to claim this slot; restart the whole probe.
				tb.mu.Unlock()
				return false, 0, nil, true
			}
			tb.set(digest, key, value)
			tb.mu.Unlock()
			return true, 0, nil, false

		case stateOccupied:
			b.mu.Lock()
			if b.state.Load() == stateOccupied && b.hash == digest && bytes.Equal(b.key, key) {
				prevValueLen = len(b.value)
				b.replaceValue(value)
				b.mu.Unlock()
				return false, prevValueLen, nil, false
			}
			b.mu.Unlock()

		case stateTombstone:
			if firstTombstone < 0 {
				firstTombstone = int64(idx)
			}
		}
	}

	if firstTombstone >= 0 {
		tb := &ba.buckets[firstTombstone]
		tb.mu.Lock()
		if tb.state.Load() == stateOccupied {
			tb.mu.Unlock()
			return false, 0, nil, true
		}
		tb.set(digest, key, value)
		tb.mu.Unlock()
		return true, 0, nil, false
	}

	return false, 0, newError(KindNoSpace, "Put", key, "no free slot found after a full probe sweep"), false
}

// deleteIn marks the bucket holding key as a tombstone and returns the
// key/value lengths that were freed. It stops at the first EMPTY bucket or
// after one full sweep.
func deleteIn(ba *bucketArray, digest uint64, key []byte) (keyLen, valueLen int, found bool) {
	n := ba.count()
	if n == 0 {
		return 0, 0, false
	}
	start := digest % n
	for i := uint64(0); i < n; i++ {
		idx := (start + i) % n
		b := &ba.buckets[idx]
		switch b.state.Load() {
		case stateEmpty:
			return 0, 0, false
		case stateOccupied:
			b.mu.Lock()
			if b.state.Load() == stateOccupied && b.hash == digest && bytes.Equal(b.key, key) {
				kl, vl := b.makeTombstone()
				b.mu.Unlock()
				return kl, vl, true
			}
			b.mu.Unlock()
		}
	}
	return 0, 0, false
}
