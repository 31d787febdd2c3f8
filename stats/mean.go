package stats

import (
	"sync"

	"github.com/kbukum/streamkit/stream"
)

// Mean accumulates the running mean of vector samples using the
// provisional-means recurrence. Accumulation is commutative, so Mean is
// safe in asynchronous mode. The dimension is fixed by the first sample;
// samples of a different dimension are ignored.
type Mean struct {
	*stream.Consumer[[]float64]

	mu   sync.Mutex
	n    int
	mean []float64
}

// NewMean creates a running mean estimator.
func NewMean(opts ...stream.ConsumerOption) *Mean {
	m := &Mean{}
	m.Consumer = stream.NewConsumer[[]float64](stream.HandlerFunc[[]float64](m.accumulate), opts...)
	return m
}

func (m *Mean) accumulate(sample []float64, _ stream.Metadata) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mean == nil {
		m.mean = make([]float64, len(sample))
	}
	if len(sample) != len(m.mean) {
		return
	}
	m.n++
	for i, x := range sample {
		m.mean[i] += (x - m.mean[i]) / float64(m.n)
	}
}

// Mean returns a copy of the current mean vector, or nil before the first
// sample.
func (m *Mean) Mean() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mean == nil {
		return nil
	}
	out := make([]float64, len(m.mean))
	copy(out, m.mean)
	return out
}

// Count returns the number of accumulated samples.
func (m *Mean) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.n
}
