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

// DelayedRejectionMH is a two-stage delayed-rejection Metropolis-Hastings
// sampler. A rejected first-stage proposal triggers a second, bolder or
// more cautious attempt (scaled by shrink) whose acceptance probability
// follows the two-stage Tierney-Mira rule with symmetric proposals:
//
//	a2 = min{1, [pi(y2) (1 - a1(y2, y1))] / [pi(x) (1 - a1(x, y1))]}
//
// where a1(u, v) = min{1, pi(v)/pi(u)}. The first-stage ratio in the
// numerator is recomputed from the rejected proposal y1 as seen from y2;
// no running acceptance state carries across steps.
type DelayedRejectionMH struct {
	*stream.Producer[[]float64]

	target Target
	step   float64
	shrink float64
	rng    *rand.Rand
	name   string

	mu          sync.Mutex
	state       []float64
	logp        float64
	accepted    int
	secondStage int
	total       int
}

// NewDelayedRejectionMH creates a two-stage sampler. step is the
// first-stage proposal standard deviation; the second stage uses
// step*shrink.
func NewDelayedRejectionMH(target Target, initial []float64, step, shrink float64, opts ...Option) *DelayedRejectionMH {
	fault.Check(target != nil, fault.CodeBadArgument, "sampler.NewDelayedRejectionMH: target must not be nil")
	fault.Check(len(initial) > 0, fault.CodeBadArgument, "sampler.NewDelayedRejectionMH: initial state must not be empty")
	fault.Checkf(step > 0, fault.CodeBadArgument, "sampler.NewDelayedRejectionMH: step must be positive, got %g", step)
	fault.Checkf(shrink > 0, fault.CodeBadArgument, "sampler.NewDelayedRejectionMH: shrink must be positive, got %g", shrink)

	cfg := applyOptions("drmh", opts)
	state := make([]float64, len(initial))
	copy(state, initial)

	return &DelayedRejectionMH{
		Producer: stream.NewProducer[[]float64](stream.WithProducerName(cfg.name)),
		target:   target,
		step:     step,
		shrink:   shrink,
		rng:      rand.New(rand.NewSource(cfg.seed)),
		name:     cfg.name,
		state:    state,
		logp:     target(state),
	}
}

// Run advances the chain n steps, emitting every state. It returns early
// with ctx.Err() if the context is canceled between steps.
func (s *DelayedRejectionMH) Run(ctx context.Context, n int) error {
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
func (s *DelayedRejectionMH) Step() {
	s.mu.Lock()

	accepted := false
	stage := 0

	// Stage one: plain random walk.
	y1 := s.propose(s.state, s.step)
	logp1 := s.target(y1)
	if math.Log(s.rng.Float64()) < logp1-s.logp {
		s.state = y1
		s.logp = logp1
		accepted = true
		stage = 1
	} else {
		// Stage two: shrunk proposal, Tierney-Mira acceptance.
		y2 := s.propose(s.state, s.step*s.shrink)
		logp2 := s.target(y2)

		// log(1 - a1(u, y1)) for both endpoints; -Inf log-ratio means
		// a1 = 1 and the corresponding factor vanishes.
		logNum := log1mExpMin0(logp1 - logp2)
		logDen := log1mExpMin0(logp1 - s.logp)

		logAlpha2 := (logp2 + logNum) - (s.logp + logDen)
		if math.Log(s.rng.Float64()) < logAlpha2 {
			s.state = y2
			s.logp = logp2
			accepted = true
			stage = 2
			s.secondStage++
		}
	}
	if accepted {
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
	if accepted {
		md = md.With(MetaStage, stage)
	}
	s.Emit(out, md)
}

func (s *DelayedRejectionMH) propose(from []float64, sd float64) []float64 {
	out := make([]float64, len(from))
	for i, x := range from {
		out[i] = x + sd*s.rng.NormFloat64()
	}
	return out
}

// log1mExpMin0 computes log(1 - exp(min(0, v))) stably. v is a
// log-density difference; v >= 0 means the inner acceptance was certain,
// so the complement is zero and the result is -Inf.
func log1mExpMin0(v float64) float64 {
	if v >= 0 {
		return math.Inf(-1)
	}
	// log(1 - e^v) for v < 0.
	if v > -math.Ln2 {
		return math.Log(-math.Expm1(v))
	}
	return math.Log1p(-math.Exp(v))
}

// AcceptanceRate returns the fraction of steps that moved (either stage).
func (s *DelayedRejectionMH) AcceptanceRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.total == 0 {
		return 0
	}
	return float64(s.accepted) / float64(s.total)
}

// SecondStageRate returns the fraction of steps accepted at stage two.
func (s *DelayedRejectionMH) SecondStageRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.total == 0 {
		return 0
	}
	return float64(s.secondStage) / float64(s.total)
}

// State returns a copy of the current chain state.
func (s *DelayedRejectionMH) State() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, len(s.state))
	copy(out, s.state)
	return out
}
