// Package live holds the bounded buffer of streamed tick points.
package live

import (
	"sync"

	"txf-bar-engine/internal/domain"
)

// DefaultCapacity bounds the buffer when no explicit capacity is given.
const DefaultCapacity = 1000

// Buffer is a fixed-capacity FIFO of the most recent live points. Append
// and Snapshot are safe for concurrent use. The backing slice is never
// handed out: Snapshot returns an independent copy, so a reader cannot
// observe a concurrent append mid-write.
type Buffer struct {
	mu       sync.Mutex
	data     []domain.Bar
	capacity int
}

// NewBuffer creates a buffer holding at most capacity points.
// A non-positive capacity falls back to DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		data:     make([]domain.Bar, 0, capacity),
		capacity: capacity,
	}
}

// Append adds a point, evicting the oldest one when the buffer is full.
func (b *Buffer) Append(p domain.Bar) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.data) == b.capacity {
		copy(b.data, b.data[1:])
		b.data = b.data[:len(b.data)-1]
	}
	b.data = append(b.data, p)
}

// Snapshot returns a copy of the current contents, oldest first.
func (b *Buffer) Snapshot() []domain.Bar {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.Bar, len(b.data))
	copy(out, b.data)
	return out
}

// Len returns the number of buffered points.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}
