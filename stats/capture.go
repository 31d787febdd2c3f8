package stats

import (
	"sync"

	"github.com/kbukum/streamkit/stream"
)

// Capture is an ordered in-memory sink. It records every delivered sample
// and its metadata, in arrival order. Arrival order only matches emission
// order for a synchronous capture behind a single producer.
type Capture[T any] struct {
	*stream.Consumer[T]

	mu      sync.Mutex
	samples []T
	metas   []stream.Metadata
}

// NewCapture creates an empty capture sink.
func NewCapture[T any](opts ...stream.ConsumerOption) *Capture[T] {
	c := &Capture[T]{}
	c.Consumer = stream.NewConsumer[T](stream.HandlerFunc[T](c.record), opts...)
	return c
}

func (c *Capture[T]) record(sample T, md stream.Metadata) {
	c.mu.Lock()
	c.samples = append(c.samples, sample)
	c.metas = append(c.metas, md)
	c.mu.Unlock()
}

// Samples returns a copy of the captured samples in arrival order.
func (c *Capture[T]) Samples() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.samples))
	copy(out, c.samples)
	return out
}

// Metadata returns a copy of the captured metadata in arrival order.
func (c *Capture[T]) Metadata() []stream.Metadata {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]stream.Metadata, len(c.metas))
	copy(out, c.metas)
	return out
}

// Len returns the number of captured samples.
func (c *Capture[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.samples)
}

// Reset discards everything captured so far.
func (c *Capture[T]) Reset() {
	c.mu.Lock()
	c.samples = nil
	c.metas = nil
	c.mu.Unlock()
}
