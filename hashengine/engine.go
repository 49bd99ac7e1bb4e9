package hashengine

import (
	"sync"
	"sync/atomic"

	"github.com/avifenesh/hashengine/logger"
)

// Engine is a concurrent, open-addressing hash table. The zero value is not
// usable; construct one with New.
type Engine struct {
	primary atomic.Pointer[bucketArray]
	old     atomic.Pointer[bucketArray]

	migrateCursor  atomic.Uint64
	migrateWorkers atomic.Int32

	itemCount   atomic.Uint32
	totalMemory atomic.Int64

	engineMu sync.Mutex

	tunables Tunables
	logger   logger.Logger
	metrics  *metrics

	k0, k1 uint64

	destroyed atomic.Bool
}

// New constructs an Engine with initialCount buckets, clamped into
// [Tunables.MinBuckets, Tunables.MaxBuckets]. initialCount of zero is
// rejected: there is no sensible table with no slots to grow from.
func New(initialCount uint32, opts ...Option) (*Engine, error) {
	if initialCount == 0 {
		return nil, newError(KindInvalidArgument, "New", nil, "initial bucket count must be greater than zero")
	}

	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.tunables.validate(); err != nil {
		return nil, err
	}

	if initialCount < cfg.tunables.MinBuckets {
		initialCount = cfg.tunables.MinBuckets
	}
	if initialCount > cfg.tunables.MaxBuckets {
		initialCount = cfg.tunables.MaxBuckets
	}

	e := &Engine{
		tunables: cfg.tunables,
		logger:   cfg.logger,
	}

	if cfg.registerer != nil {
		m, err := newMetrics(cfg.registerer)
		if err != nil {
			return nil, err
		}
		e.metrics = m
	}

	e.k0, e.k1 = ensureSubkeys(cfg.entropy, e.logger, e.metrics)
	e.primary.Store(newBucketArray(initialCount))
	return e, nil
}

func (e *Engine) checkAlive(op string) error {
	if e.destroyed.Load() {
		return newError(KindInvalidArgument, op, nil, "engine has been destroyed")
	}
	return nil
}

func (e *Engine) hashKey(key []byte) uint64 {
	return sipHash24(e.k0, e.k1, key)
}

// Put inserts or replaces key's value. It reports whether the key was newly
// created (true) or an existing entry was replaced (false). Both key and
// value must be non-empty.
func (e *Engine) Put(key, value []byte) (isNew bool, err error) {
	if err := e.checkAlive("Put"); err != nil {
		return false, err
	}
	if len(key) == 0 {
		return false, newError(KindInvalidArgument, "Put", key, "key must not be empty")
	}
	if len(value) == 0 {
		return false, newError(KindInvalidArgument, "Put", key, "value must not be empty")
	}

	e.migrateSome(e.tunables.MigrateBatch)

	digest := e.hashKey(key)
	ownedKey := append([]byte(nil), key...)
	ownedValue := append([]byte(nil), value...)

	var removedKeyLen, removedValueLen int
	var replacedAcrossArrays bool
	if old := e.old.Load(); old != nil {
		if kl, vl, found := deleteIn(old, digest, key); found {
			removedKeyLen, removedValueLen, replacedAcrossArrays = kl, vl, true
		}
	}

	primaryIsNew, prevValueLen, err := insertIn(e.primary.Load(), digest, ownedKey, ownedValue)
	if err != nil {
		return false, err
	}

	var deltaMem int64
	switch {
	case replacedAcrossArrays:
		deltaMem = int64(len(ownedKey)+len(ownedValue)) - int64(removedKeyLen+removedValueLen)
		isNew = false
	case primaryIsNew:
		deltaMem = int64(len(ownedKey) + len(ownedValue))
		e.itemCount.Add(1)
		isNew = true
	default:
		deltaMem = int64(len(ownedValue) - prevValueLen)
		isNew = false
	}
	e.totalMemory.Add(deltaMem)

	if e.metrics != nil {
		e.metrics.putTotal.Inc()
	}
	e.maybeResize()
	e.refreshMetrics()
	return isNew, nil
}

// Get returns a copy of the value stored for key, or ErrNotFound.
func (e *Engine) Get(key []byte) ([]byte, error) {
	if err := e.checkAlive("Get"); err != nil {
		return nil, err
	}
	if len(key) == 0 {
		return nil, newError(KindInvalidArgument, "Get", key, "key must not be empty")
	}

	e.migrateSome(e.tunables.MigrateBatch)
	digest := e.hashKey(key)

	if v, ok := lookupIn(e.primary.Load(), digest, key); ok {
		if e.metrics != nil {
			e.metrics.getTotal.Inc()
		}
		return v, nil
	}
	if old := e.old.Load(); old != nil {
		if v, ok := lookupIn(old, digest, key); ok {
			if e.metrics != nil {
				e.metrics.getTotal.Inc()
			}
			return v, nil
		}
	}

	if e.metrics != nil {
		e.metrics.getTotal.Inc()
		e.metrics.notFoundTotal.Inc()
	}
	return nil, newError(KindNotFound, "Get", key, "key not found")
}

// Delete removes key, returning ErrNotFound if it was not present.
func (e *Engine) Delete(key []byte) error {
	if err := e.checkAlive("Delete"); err != nil {
		return err
	}
	if len(key) == 0 {
		return newError(KindInvalidArgument, "Delete", key, "key must not be empty")
	}

	e.migrateSome(e.tunables.MigrateBatch)
	digest := e.hashKey(key)

	kl, vl, found := deleteIn(e.primary.Load(), digest, key)
	if !found {
		if old := e.old.Load(); old != nil {
			kl, vl, found = deleteIn(old, digest, key)
		}
	}
	if !found {
		if e.metrics != nil {
			e.metrics.deleteTotal.Inc()
			e.metrics.notFoundTotal.Inc()
		}
		return newError(KindNotFound, "Delete", key, "key not found")
	}

	e.itemCount.Add(^uint32(0)) // -1
	e.totalMemory.Add(-int64(kl + vl))

	if e.metrics != nil {
		e.metrics.deleteTotal.Inc()
	}
	e.maybeResize()
	e.refreshMetrics()
	return nil
}

// Stats is a point-in-time snapshot of an Engine's size and occupancy.
type Stats struct {
	ItemCount   uint32
	BucketCount uint32
	TotalMemory uint64
}

// Stats returns a snapshot built from independent atomic loads; it is not a
// consistent transaction but each field is individually accurate.
func (e *Engine) Stats() Stats {
	primary := e.primary.Load()
	return Stats{
		ItemCount:   e.itemCount.Load(),
		BucketCount: uint32(primary.count()),
		TotalMemory: uint64(e.totalMemory.Load()),
	}
}

// MigrationProgress returns the fraction of the old bucket array migrated
// so far, or 0 if no resize is currently in flight. Exposed for monitoring
// layers that want to surface it alongside Stats (the Prometheus gauge and
// expvar publication both read it from here).
func (e *Engine) MigrationProgress() float64 {
	return e.migrationProgressRatio()
}

func (e *Engine) refreshMetrics() {
	if e.metrics == nil {
		return
	}
	stats := e.Stats()
	e.metrics.itemCount.Set(float64(stats.ItemCount))
	e.metrics.bucketCount.Set(float64(stats.BucketCount))
	e.metrics.totalMemory.Set(float64(stats.TotalMemory))
	e.metrics.migrationProgress.Set(e.migrationProgressRatio())
}

// Destroy releases the Engine's storage. After Destroy every operation
// returns ErrInvalidArgument. Destroy is idempotent.
func (e *Engine) Destroy() {
	if !e.destroyed.CompareAndSwap(false, true) {
		return
	}
	e.engineMu.Lock()
	defer e.engineMu.Unlock()
	e.primary.Store(newBucketArray(0))
	e.old.Store(nil)
	e.itemCount.Store(0)
	e.totalMemory.Store(0)
}
