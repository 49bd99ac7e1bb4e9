// Package oracle provides a reference key/value store used to check
// hashengine.Engine's behavior against a simple, obviously-correct
// implementation under randomized and concurrent workloads.
package oracle

import (
	"hash/maphash"
	"sync"

	"github.com/avifenesh/hashengine/hashmap"
)

// Oracle is a mutex-guarded reference map. Every method copies its
// arguments and return values so callers can't corrupt Oracle's internal
// state by mutating slices after the call returns.
type Oracle struct {
	mu   sync.Mutex
	m    *hashmap.Hashmap[string, []byte]
	seed maphash.Seed
}

// New constructs an empty Oracle.
func New() *Oracle {
	seed := maphash.MakeSeed()
	hash := func(k string) uint64 {
		var h maphash.Hash
		h.SetSeed(seed)
		h.WriteString(k)
		return h.Sum64()
	}
	equal := func(a, b string) bool { return a == b }
	return &Oracle{
		m:    hashmap.New[string, []byte](16, hash, equal),
		seed: seed,
	}
}

// Put inserts or replaces key's value and reports whether it was newly
// created. Put panics on an empty key or value: the oracle exists to check
// an Engine's behavior on well-formed input, so a test driving it with
// malformed input is a bug in the test, not a case to handle gracefully.
func (o *Oracle) Put(key, value []byte) bool {
	if len(key) == 0 || len(value) == 0 {
		panic("oracle: Put requires a non-empty key and value")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	k := string(key)
	_, existed := o.m.Get(k)
	o.m.Set(k, append([]byte(nil), value...))
	return !existed
}

// Get returns a copy of key's value, if present.
func (o *Oracle) Get(key []byte) ([]byte, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.m.Get(string(key))
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

// Delete removes key, reporting whether it was present.
func (o *Oracle) Delete(key []byte) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	k := string(key)
	if _, ok := o.m.Get(k); !ok {
		return false
	}
	o.m.Delete(k)
	return true
}

// Len returns the number of live entries.
func (o *Oracle) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.m.Len()
}

// TotalMemory returns the sum of live key and value byte lengths, the same
// quantity hashengine.Stats.TotalMemory tracks.
func (o *Oracle) TotalMemory() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.m.TotalWeight(func(k string, v []byte) int {
		return len(k) + len(v)
	})
}

// Keys returns every live key, in no particular order.
func (o *Oracle) Keys() [][]byte {
	o.mu.Lock()
	defer o.mu.Unlock()
	keys := o.m.Keys()
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = []byte(k)
	}
	return out
}
