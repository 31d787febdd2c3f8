package sampler

// Target is an unnormalized log-density over R^d. Implementations must be
// safe for repeated calls from the sampling goroutine; they are never
// called concurrently by one sampler.
type Target func(x []float64) float64

// Metadata keys attached to every emitted sample.
const (
	// MetaLogDensity is the log target density at the emitted state.
	MetaLogDensity = "log_density"
	// MetaAccepted reports whether the emitted state is a fresh move.
	MetaAccepted = "accepted"
	// MetaStage is the delayed-rejection stage (1 or 2) that produced an
	// accepted move; absent for plain Metropolis-Hastings.
	MetaStage = "dr_stage"
)
