// Package filters provides ready-made pipeline filters: positional
// selection (KeepNth, DropFirst), predicate gating (Where), type
// conversion (Convert), and vector projection (Component).
//
// All constructors return a *stream.Filter and accept the usual consumer
// options. Positional filters (KeepNth, DropFirst) count deliveries in
// arrival order; feeding them from an asynchronous upstream stage with a
// queue size above one makes "Nth" depend on completion order, so keep
// them synchronous when position matters.
package filters
