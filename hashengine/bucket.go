package hashengine

import (
	"sync"
	"sync/atomic"
)

const (
	stateEmpty uint32 = iota
	stateOccupied
	stateTombstone
)

// bucket is one slot of a bucketArray. state is the publication point: a
// reader may inspect it without the lock, but must take mu and re-check
// state before trusting hash/key/value, since a concurrent writer may have
// changed the slot between the lock-free read and the lock acquisition.
type bucket struct {
	state atomic.Uint32
	mu    sync.Mutex
	hash  uint64
	key   []byte
	value []byte
}

// set installs an OCCUPIED payload. Caller must hold mu.
func (b *bucket) set(hash uint64, key, value []byte) {
	b.hash = hash
	b.key = key
	b.value = value
	b.state.Store(stateOccupied)
}

// replaceValue swaps the value of an already-OCCUPIED bucket and returns the
// length of the value it replaced. Caller must hold mu.
func (b *bucket) replaceValue(value []byte) (oldLen int) {
	oldLen = len(b.value)
	b.value = value
	return oldLen
}

// makeTombstone clears the payload and marks the bucket TOMBSTONE, returning
// the key/value lengths that were freed. Caller must hold mu.
func (b *bucket) makeTombstone() (keyLen, valueLen int) {
	keyLen, valueLen = len(b.key), len(b.value)
	b.key = nil
	b.value = nil
	b.state.Store(stateTombstone)
	return keyLen, valueLen
}

// bucketArray is a fixed-size array of buckets; Engine swaps in a new one to
// grow or shrink and migrates the old one incrementally, a batch at a time,
// from its own Put/Get/Delete calls.
type bucketArray struct {
	buckets []bucket
}

func newBucketArray(n uint32) *bucketArray {
	return &bucketArray{buckets: make([]bucket, n)}
}

func (ba *bucketArray) count() uint64 {
	return uint64(len(ba.buckets))
}
