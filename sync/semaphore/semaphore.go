// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package semaphore

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Weighted is a wrapper around the semaphore that tracks available weight
type Weighted struct {
	sem           *semaphore.Weighted
	maxWeight     int64
	currentWeight int64
	mu            sync.Mutex
}

// NewWeighted initializes a new weighted semaphore with a given capacity
func NewWeighted(maxWeight int64) *Weighted {
	return &Weighted{
		sem:           semaphore.NewWeighted(maxWeight),
		maxWeight:     maxWeight,
		currentWeight: maxWeight,
	}
}

// Acquire tries to acquire the specified weight
func (w *Weighted) Acquire(ctx context.Context, weight int64) error {
	// Block outside mu so that a Release, which takes mu, can free the
	// weight this call is waiting for.
	if err := w.sem.Acquire(ctx, weight); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.currentWeight -= weight
	return nil
}

// Release releases the specified weight back to the semaphore
func (w *Weighted) Release(weight int64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.sem.Release(weight)
	w.currentWeight += weight
}

// Available returns the current available weight
func (w *Weighted) Available() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.currentWeight
}

// Stats is a point-in-time snapshot of a Weighted's capacity and usage.
type Stats struct {
	Max      int64
	Inuse    int64
	Available int64
}

// Stats returns how much of the semaphore's capacity is currently claimed.
// Used by the benchmark harness to report worker-pool saturation alongside
// engine throughput.
func (w *Weighted) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Stats{
		Max:       w.maxWeight,
		Inuse:     w.maxWeight - w.currentWeight,
		Available: w.currentWeight,
	}
}
