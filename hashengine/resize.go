package hashengine

// maybeResize checks the grow/shrink trigger against a lock-free snapshot of
// the current counters and, if crossed, takes engineMu to start a resize.
// The check is repeated under the lock since the snapshot may be stale by
// the time the lock is acquired.
func (e *Engine) maybeResize() {
	if e.old.Load() != nil {
		return // a resize is already in flight; re-evaluate on a later call
	}

	primary := e.primary.Load()
	count := uint32(primary.count())
	item := e.itemCount.Load()

	if shouldGrow(count, item, e.tunables) {
		e.startResize(true)
		return
	}
	if shouldShrink(count, item, e.tunables) {
		e.startResize(false)
	}
}

func shouldGrow(count, item uint32, t Tunables) bool {
	return item >= uint32(float64(count)*t.MaxLoad) && count < t.MaxBuckets
}

func shouldShrink(count, item uint32, t Tunables) bool {
	return count > t.MinBuckets && item < uint32(float64(count)*t.MinLoad)
}

// startResize takes engineMu, re-validates the trigger, and swaps in a
// fresh primary array, pushing the current one to old for migration.
func (e *Engine) startResize(grow bool) {
	e.engineMu.Lock()
	defer e.engineMu.Unlock()

	if e.old.Load() != nil {
		return
	}
	primary := e.primary.Load()
	count := uint32(primary.count())
	item := e.itemCount.Load()

	var newCount uint32
	if grow {
		if !shouldGrow(count, item, e.tunables) {
			return
		}
		newCount = count * 2
		if newCount > e.tunables.MaxBuckets || newCount < count {
			newCount = e.tunables.MaxBuckets
		}
		if newCount <= count {
			return
		}
	} else {
		if !shouldShrink(count, item, e.tunables) {
			return
		}
		newCount = count / 2
		if newCount < e.tunables.MinBuckets {
			newCount = e.tunables.MinBuckets
		}
		if newCount >= count {
			return
		}
	}

	e.primary.Store(newBucketArray(newCount))
	e.old.Store(primary)
	e.migrateCursor.Store(0)

	if e.metrics != nil {
		direction := "shrink"
		if grow {
			direction = "grow"
		}
		e.metrics.resizeTotal.WithLabelValues(direction).Inc()
	}
}

// migrateSome claims up to batch buckets from the old array (if any) and
// moves each claimed OCCUPIED bucket into the current primary array. It is
// called at the top of every Put/Get/Delete so migration makes forward
// progress without a dedicated background goroutine.
func (e *Engine) migrateSome(batch int) {
	e.migrateWorkers.Add(1)
	defer func() {
		if e.migrateWorkers.Add(-1) == 0 {
			e.tryFinalizeResize()
		}
	}()

	old := e.old.Load()
	if old == nil {
		return
	}
	oldCount := old.count()

	for i := 0; i < batch; i++ {
		idx := e.migrateCursor.Add(1) - 1
		if idx >= oldCount {
			return
		}
		e.migrateOneBucket(old, idx)
	}
}

// migrateOneBucket moves the entry at idx (if still OCCUPIED) from old into
// the current primary array. A concurrent Put for the same key may have
// already removed it from old; migrateOneBucket re-checks state under lock
// and is a no-op in that case. The insert into primary happens with b's lock
// released: migration never holds two bucket locks at once.
func (e *Engine) migrateOneBucket(old *bucketArray, idx uint64) {
	b := &old.buckets[idx]
	if b.state.Load() != stateOccupied {
		return
	}

	b.mu.Lock()
	if b.state.Load() != stateOccupied {
		b.mu.Unlock()
		return
	}
	digest, key, value := b.hash, b.key, b.value
	b.mu.Unlock()

	primary := e.primary.Load()
	isNew, _, err := insertIn(primary, digest, key, value)
	if err != nil {
		// The new array is sized with headroom over the trigger that caused
		// this resize, so this should not happen in practice; leave the
		// source bucket occupied so a later migration pass retries it.
		if e.logger != nil {
			e.logger.Errorf("hashengine: failed to migrate key into new array: %v", err)
		}
		return
	}
	if !isNew && e.logger != nil {
		e.logger.Errorf("hashengine: migration found a key already present in the new array")
	}

	b.mu.Lock()
	if b.state.Load() == stateOccupied {
		b.makeTombstone()
	}
	b.mu.Unlock()
}

// tryFinalizeResize tears down the old array once every claimed bucket has
// been migrated and no migration is mid-flight. Idempotent: callable any
// number of times regardless of whether a resize is actually finishing.
func (e *Engine) tryFinalizeResize() {
	e.engineMu.Lock()
	defer e.engineMu.Unlock()

	old := e.old.Load()
	if old == nil {
		return
	}
	if e.migrateWorkers.Load() != 0 {
		return
	}
	if e.migrateCursor.Load() < old.count() {
		return
	}

	e.old.Store(nil)
	e.migrateCursor.Store(0)
	if e.metrics != nil {
		e.metrics.resizeFinalizedTotal.Inc()
	}
}

// migrationProgressRatio returns the fraction of the old array migrated so far,
// or 0 if no resize is in flight.
func (e *Engine) migrationProgressRatio() float64 {
	old := e.old.Load()
	if old == nil {
		return 0
	}
	total := old.count()
	if total == 0 {
		return 1
	}
	done := e.migrateCursor.Load()
	if done > total {
		done = total
	}
	return float64(done) / float64(total)
}
