// Package cache provides an in-process key/value cache partitioned by
// vehicle ID.
//
// Every operation, for every vehicle, is funneled through one FIFO task
// queue drained by a single goroutine. Serializing the whole cache trades
// parallelism for simplicity: no lost updates, no interleaved partial map
// mutations, no locking beyond the queue itself. Entries never self-expire;
// invalidation is the caller overwriting a key with a fresh value.
package cache

import (
	"context"
	"strings"
	"sync"
)

// VehicleCache is a queue-guarded per-vehicle key/value cache.
type VehicleCache struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once

	// touched only by the queue goroutine
	data map[string]map[string]any
}

// New creates a cache and starts its queue goroutine.
func New() *VehicleCache {
	c := &VehicleCache{
		tasks: make(chan func()),
		done:  make(chan struct{}),
		data:  make(map[string]map[string]any),
	}
	go c.run()

	return c
}

func (c *VehicleCache) run() {
	for {
		select {
		case <-c.done:
			return
		case task := <-c.tasks:
			task()
		}
	}
}

// submit enqueues a task, honoring context cancellation and cache shutdown.
func (c *VehicleCache) submit(ctx context.Context, task func()) bool {
	select {
	case c.tasks <- task:
		return true
	case <-ctx.Done():
		return false
	case <-c.done:
		return false
	}
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Get returns the cached value for (vehicleID, key), or defaultValue when
// the key is absent, the context is cancelled or the cache is closed.
func (c *VehicleCache) Get(ctx context.Context, vehicleID, key string, defaultValue any) any {
	result := make(chan any, 1)
	ok := c.submit(ctx, func() {
		if values, ok := c.data[normalizeID(vehicleID)]; ok {
			if v, found := values[key]; found {
				result <- v
				return
			}
		}
		result <- defaultValue
	})
	if !ok {
		return defaultValue
	}

	return <-result
}

// Set overwrites the value for (vehicleID, key). A nil value deletes the
// key from the vehicle's map instead of storing a nil placeholder.
func (c *VehicleCache) Set(ctx context.Context, vehicleID, key string, value any) {
	ack := make(chan struct{})
	ok := c.submit(ctx, func() {
		defer close(ack)

		id := normalizeID(vehicleID)
		values, found := c.data[id]
		if !found {
			values = make(map[string]any)
			c.data[id] = values
		}

		if value == nil {
			delete(values, key)
		} else {
			values[key] = value
		}
	})
	if !ok {
		return
	}

	<-ack
}

// Close stops the queue goroutine. Pending tasks are discarded; callers are
// expected to be shut down first.
func (c *VehicleCache) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}
