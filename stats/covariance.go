package stats

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/kbukum/streamkit/stream"
)

// Covariance accumulates the running sample covariance matrix of vector
// samples with the single-pass co-moment recurrence. Accumulation is
// commutative, so Covariance is safe in asynchronous mode. The dimension
// is fixed by the first sample; samples of a different dimension are
// ignored.
type Covariance struct {
	*stream.Consumer[[]float64]

	mu     sync.Mutex
	n      int
	mean   []float64
	comom  *mat.SymDense
	deltas []float64
}

// NewCovariance creates a running covariance estimator.
func NewCovariance(opts ...stream.ConsumerOption) *Covariance {
	c := &Covariance{}
	c.Consumer = stream.NewConsumer[[]float64](stream.HandlerFunc[[]float64](c.accumulate), opts...)
	return c
}

func (c *Covariance) accumulate(sample []float64, _ stream.Metadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	dim := len(sample)
	if c.mean == nil {
		c.mean = make([]float64, dim)
		c.comom = mat.NewSymDense(dim, nil)
		c.deltas = make([]float64, dim)
	}
	if dim != len(c.mean) {
		return
	}

	c.n++
	for i, x := range sample {
		c.deltas[i] = x - c.mean[i]
		c.mean[i] += c.deltas[i] / float64(c.n)
	}
	// comom_ij += delta_i * (x_j - mean'_j), with mean' already updated.
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			c.comom.SetSym(i, j, c.comom.At(i, j)+c.deltas[i]*(sample[j]-c.mean[j]))
		}
	}
}

// Cov returns the current sample covariance matrix (normalized by n-1),
// or nil before the second sample.
func (c *Covariance) Cov() *mat.SymDense {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n < 2 {
		return nil
	}
	dim := len(c.mean)
	out := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			out.SetSym(i, j, c.comom.At(i, j)/float64(c.n-1))
		}
	}
	return out
}

// Mean returns a copy of the current mean vector, or nil before the first
// sample.
func (c *Covariance) Mean() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mean == nil {
		return nil
	}
	out := make([]float64, len(c.mean))
	copy(out, c.mean)
	return out
}

// Count returns the number of accumulated samples.
func (c *Covariance) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
