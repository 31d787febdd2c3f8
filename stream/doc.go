// Package stream provides a type-safe, push-based event-streaming pipeline:
// producers fan samples out to subscribed consumers, filters transform
// samples in flight, and chain combinators compose stages into larger
// pipelines.
//
// # Stages
//
// A pipeline is built from three kinds of stages:
//
//   - Producer[T]: embeddable fan-out base. Concrete producers (samplers,
//     readers, generators) embed *Producer[T] and call Emit from their own
//     generation loop.
//   - Consumer[T]: embeddable delivery base wrapping a Handler[T]. Concrete
//     consumers (estimators, sinks) embed *Consumer[T] and implement
//     Consume.
//   - Filter[In, Out]: both at once. Concrete filters implement only
//     Transform, which maps an incoming sample to zero or one outgoing
//     samples.
//
// Each sample travels with a Metadata side channel: an ordered, string-keyed
// collection of dynamically-typed values (log-likelihoods, acceptance flags,
// timestamps). Metadata is immutable after creation; readers must tolerate
// absent keys and unexpected value types.
//
// # Wiring
//
// Stages are wired either explicitly:
//
//	estimator.ConnectTo(sampler)
//
// or with the chain combinators, which compose two adjacent stages into a
// compound stage that can itself be re-composed:
//
//	thinned := stream.Through(sampler, filters.KeepNth[[]float64](10))
//	seg := stream.Pipe(thinned, estimator)
//
// Pipe, Through, Into, and Fuse cover the four producer/filter/consumer
// pairings. Compounds reference their operands by default; wrap construction
// with OwnLeft/OwnRight/OwnBoth so Close tears the operands down too.
//
// # Concurrency
//
// Emit is a synchronous fan-out on the caller's goroutine. Each consumer
// chooses its own processing mode before connecting:
//
//   - Synchronous (default): Consume runs inline on the emitting goroutine.
//     Deliveries from concurrent upstream producers are NOT serialized;
//     handlers must lock their own state.
//   - Asynchronous: the delivery is handed to a fire-and-forget task. At
//     most queueSize tasks may be outstanding; beyond that the emitting
//     goroutine blocks until work drains (admission control, not an error).
//     Completion order is unspecified.
//
// Flush blocks until all deferred work issued so far has completed.
// DisconnectAndFlush atomically severs every subscription and then drains;
// once it returns no Consume call is active or pending. Every concrete
// consumer must arrange for DisconnectAndFlush (directly or via a chain
// Close) before discarding state its handler touches.
//
// A sample delivered concurrently with a disconnect is silently discarded;
// that is the documented, race-free degenerate outcome, not an error.
package stream
