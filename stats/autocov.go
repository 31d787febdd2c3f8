package stats

import (
	"sync"

	"github.com/kbukum/streamkit/fault"
	"github.com/kbukum/streamkit/stream"
)

// Autocovariance accumulates the autocovariance of a scalar stream for
// lags 0..maxLag, keeping a ring buffer of the most recent maxLag samples.
// The recurrence depends on arrival order, so Autocovariance must run
// synchronously behind a single producer.
type Autocovariance struct {
	*stream.Consumer[float64]

	maxLag int

	mu      sync.Mutex
	n       int
	sum     float64
	lagProd []float64 // sum of x_t * x_{t-lag} per lag
	ring    []float64 // last maxLag samples, ring[head-1] most recent
	head    int
	filled  int
}

// NewAutocovariance creates an autocovariance estimator for lags
// 0..maxLag.
func NewAutocovariance(maxLag int, opts ...stream.ConsumerOption) *Autocovariance {
	fault.Checkf(maxLag >= 0, fault.CodeBadArgument, "stats.NewAutocovariance: maxLag must be >= 0, got %d", maxLag)

	a := &Autocovariance{
		maxLag:  maxLag,
		lagProd: make([]float64, maxLag+1),
		ring:    make([]float64, maxLag),
	}
	a.Consumer = stream.NewConsumer[float64](stream.HandlerFunc[float64](a.accumulate), opts...)
	return a
}

func (a *Autocovariance) accumulate(sample float64, _ stream.Metadata) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.n++
	a.sum += sample
	a.lagProd[0] += sample * sample
	for lag := 1; lag <= a.maxLag && lag <= a.filled; lag++ {
		idx := (a.head - lag + len(a.ring)) % len(a.ring)
		a.lagProd[lag] += sample * a.ring[idx]
	}
	if a.maxLag > 0 {
		a.ring[a.head] = sample
		a.head = (a.head + 1) % len(a.ring)
		if a.filled < a.maxLag {
			a.filled++
		}
	}
}

// At returns the estimated autocovariance at the given lag:
// E[x_t x_{t-lag}] - mean^2, with the product averaged over the n-lag
// available pairs. Returns 0 when fewer than lag+2 samples have arrived.
func (a *Autocovariance) At(lag int) float64 {
	fault.Checkf(lag >= 0 && lag <= a.maxLag, fault.CodeBadArgument,
		"stats.Autocovariance.At: lag must be in [0, %d], got %d", a.maxLag, lag)

	a.mu.Lock()
	defer a.mu.Unlock()
	pairs := a.n - lag
	if pairs < 2 {
		return 0
	}
	mean := a.sum / float64(a.n)
	return a.lagProd[lag]/float64(pairs) - mean*mean
}

// Count returns the number of accumulated samples.
func (a *Autocovariance) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.n
}

// MaxLag returns the largest tracked lag.
func (a *Autocovariance) MaxLag() int { return a.maxLag }
