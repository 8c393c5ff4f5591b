// Package ringbuf provides a bounded, concurrency-safe ring of recent
// signal events. When full, the oldest event is overwritten, so the ring
// always retains the newest N events for the events feed.
package ringbuf

import (
	"sync"

	"analysis-systemv1/internal/model"
)

// Ring is a fixed-capacity ring of SignalEvent values.
// Size is rounded up to the next power of two for fast bitwise modulo.
type Ring struct {
	mu   sync.RWMutex
	buf  []model.SignalEvent
	mask uint64
	head uint64 // total events ever pushed
}

// New creates a ring. capacity is rounded up to the next power of two.
// Minimum capacity is 2.
func New(capacity int) *Ring {
	cap := nextPow2(capacity)
	if cap < 2 {
		cap = 2
	}
	return &Ring{
		buf:  make([]model.SignalEvent, cap),
		mask: uint64(cap - 1),
	}
}

// Push appends an event, overwriting the oldest one when the ring is full.
func (r *Ring) Push(ev model.SignalEvent) {
	r.mu.Lock()
	r.buf[r.head&r.mask] = ev
	r.head++
	r.mu.Unlock()
}

// Snapshot returns up to limit events, newest first. limit <= 0 means all
// retained events.
func (r *Ring) Snapshot(limit int) []model.SignalEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := int(r.head)
	if n > len(r.buf) {
		n = len(r.buf)
	}
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.SignalEvent, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r.buf[(r.head-1-uint64(i))&r.mask])
	}
	return out
}

// Len returns the number of retained events.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(r.head) > len(r.buf) {
		return len(r.buf)
	}
	return int(r.head)
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int {
	return len(r.buf)
}

// Total returns the number of events ever pushed, including overwritten ones.
func (r *Ring) Total() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.head
}

// nextPow2 returns the smallest power of 2 >= n.
func nextPow2(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
