package stats

import (
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/kbukum/streamkit/fault"
	"github.com/kbukum/streamkit/stream"
)

// Histogram accumulates scalar samples into fixed-width bins over
// [min, max). Samples outside the range land in the underflow/overflow
// counters. Counting is commutative, so Histogram is safe in asynchronous
// mode.
type Histogram struct {
	*stream.Consumer[float64]

	min, max float64
	width    float64

	mu     sync.Mutex
	counts []int
	under  int
	over   int
	n      int
}

// NewHistogram creates a histogram with bins equal-width bins over
// [min, max).
func NewHistogram(min, max float64, bins int, opts ...stream.ConsumerOption) *Histogram {
	fault.Checkf(bins >= 1, fault.CodeBadArgument, "stats.NewHistogram: bins must be >= 1, got %d", bins)
	fault.Checkf(max > min, fault.CodeBadArgument, "stats.NewHistogram: max must exceed min (got [%g, %g))", min, max)

	h := &Histogram{
		min:    min,
		max:    max,
		width:  (max - min) / float64(bins),
		counts: make([]int, bins),
	}
	h.Consumer = stream.NewConsumer[float64](stream.HandlerFunc[float64](h.accumulate), opts...)
	return h
}

func (h *Histogram) accumulate(sample float64, _ stream.Metadata) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.n++
	switch {
	case sample < h.min:
		h.under++
	case sample >= h.max:
		h.over++
	default:
		i := int((sample - h.min) / h.width)
		if i >= len(h.counts) { // guard against float rounding at the edge
			i = len(h.counts) - 1
		}
		h.counts[i]++
	}
}

// Counts returns a copy of the per-bin counts.
func (h *Histogram) Counts() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]int, len(h.counts))
	copy(out, h.counts)
	return out
}

// Edges returns the bins+1 bin boundaries from min to max.
func (h *Histogram) Edges() []float64 {
	edges := make([]float64, len(h.counts)+1)
	floats.Span(edges, h.min, h.max)
	return edges
}

// Underflow returns the number of samples below min.
func (h *Histogram) Underflow() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.under
}

// Overflow returns the number of samples at or above max.
func (h *Histogram) Overflow() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.over
}

// Count returns the total number of samples seen, including under- and
// overflow.
func (h *Histogram) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.n
}

// Density returns the normalized histogram: per-bin counts divided by
// (n * width), so the result integrates to the in-range fraction of the
// stream. Returns nil before the first sample.
func (h *Histogram) Density() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.n == 0 {
		return nil
	}
	out := make([]float64, len(h.counts))
	norm := float64(h.n) * h.width
	for i, c := range h.counts {
		out[i] = float64(c) / norm
	}
	return out
}
