// Package sampler provides Markov-chain Monte-Carlo producers for
// streamkit pipelines: a Gaussian random-walk Metropolis-Hastings sampler
// and a two-stage delayed-rejection variant.
//
// Samplers embed *stream.Producer[[]float64] and emit every chain state,
// including repeats on rejection, together with per-sample metadata:
//
//	MetaLogDensity  float64  log target density at the emitted state
//	MetaAccepted    bool     whether the step moved
//	MetaStage       int      delayed rejection stage that produced the move
//
// Run drives the chain for a fixed number of steps and honors context
// cancellation between steps. Samplers are single-goroutine producers: a
// given sampler's Run must not be called concurrently with itself.
package sampler
