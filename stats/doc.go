// Package stats provides streaming statistical estimators that plug into
// streamkit pipelines as consumers: running Mean, Covariance, Histogram,
// Autocovariance, and an ordered Capture sink.
//
// Every estimator embeds *stream.Consumer and locks its own accumulator,
// so it is safe behind concurrent upstream producers. Mean, Covariance and
// Histogram accumulate commutatively and may run in asynchronous mode;
// Autocovariance and Capture depend on arrival order and must stay
// synchronous behind a single producer.
//
// Results are readable at any time; call Flush first when the estimator
// runs asynchronously so every issued sample has been folded in. Call
// DisconnectAndFlush (or close the owning chain) before discarding an
// estimator.
package stats
