package sampler

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/kbukum/streamkit/fault"
	"github.com/kbukum/streamkit/logger"
	"github.com/kbukum/streamkit/stream"
)

// Option configures a sampler.
type Option func(*config)

type config struct {
	seed    int64
	seedSet bool
	name    string
}

// WithSeed fixes the random source for reproducible chains.
func WithSeed(seed int64) Option {
	return func(c *config) {
		c.seed = seed
		c.seedSet = true
	}
}

// WithSamplerName tags the sampler for logging.
func WithSamplerName(name string) Option {
	return func(c *config) { c.name = name }
}

func applyOptions(name string, opts []Option) config {
	cfg := config{name: name}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.seedSet {
		cfg.seed = time.Now().UnixNano()
	}
	return cfg
}

// RandomWalkMH is a Gaussian random-walk Metropolis-Hastings sampler.
// Each step proposes state + step*N(0, I) and accepts with probability
// min(1, pi(proposal)/pi(state)).
type RandomWalkMH struct {
	*stream.Producer[[]float64]

	target Target
	step   float64
	rng    *rand.Rand
	name   string

	mu       sync.Mutex
	state    []float64
	logp     float64
	accepted int
	total    int
}

// NewRandomWalkMH creates a sampler at the given initial state. step is
// the per-coordinate proposal standard deviation.
func NewRandomWalkMH(target Target, initial []float64, step float64, opts ...Option) *RandomWalkMH {
	fault.Check(target != nil, fault.CodeBadArgument, "sampler.NewRandomWalkMH: target must not be nil")
	fault.Check(len(initial) > 0, fault.CodeBadArgument, "sampler.NewRandomWalkMH: initial state must not be empty")
	fault.Checkf(step > 0, fault.CodeBadArgument, "sampler.NewRandomWalkMH: step must be positive, got %g", step)

	cfg := applyOptions("rwmh", opts)
	state := make([]float64, len(initial))
	copy(state, initial)

	return &RandomWalkMH{
		Producer: stream.NewProducer[[]float64](stream.WithProducerName(cfg.name)),
		target:   target,
		step:     step,
		rng:      rand.New(rand.NewSource(cfg.seed)),
		name:     cfg.name,
		state:    state,
		logp:     target(state),
	}
}

// Run advances the chain n steps, emitting every state. It returns early
// with ctx.Err() if the context is canceled between steps.
func (s *RandomWalkMH) Run(ctx context.Context, n int) error {
	start := time.Now()
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Step()
	}
	logger.Debug("chain segment finished", logger.Fields(
		logger.FieldStage, s.name,
		logger.FieldSamples, n,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return nil
}

// Step advances the chain once and emits the resulting state.
func (s *RandomWalkMH) Step() {
	s.mu.Lock()

	proposal := make([]float64, len(s.state))
	for i, x := range s.state {
		proposal[i] = x + s.step*s.rng.NormFloat64()
	}
	logq := s.target(proposal)

	accepted := math.Log(s.rng.Float64()) < logq-s.logp
	if accepted {
		s.state = proposal
		s.logp = logq
		s.accepted++
	}
	s.total++

	out := make([]float64, len(s.state))
	copy(out, s.state)
	logp := s.logp
	s.mu.Unlock()

	md := stream.NewMetadata().
		With(MetaLogDensity, logp).
		With(MetaAccepted, accepted)
	s.Emit(out, md)
}

// AcceptanceRate returns the fraction of steps that moved.
func (s *RandomWalkMH) AcceptanceRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.total == 0 {
		return 0
	}
	return float64(s.accepted) / float64(s.total)
}

// State returns a copy of the current chain state.
func (s *RandomWalkMH) State() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, len(s.state))
	copy(out, s.state)
	return out
}
