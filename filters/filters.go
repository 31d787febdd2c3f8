package filters

import (
	"sync"

	"github.com/kbukum/streamkit/fault"
	"github.com/kbukum/streamkit/stream"
)

// KeepNth passes every n-th sample (the n-th, 2n-th, 3n-th, ... in arrival
// order) and drops the rest. n = 1 passes everything.
func KeepNth[T any](n int, opts ...stream.ConsumerOption) *stream.Filter[T, T] {
	fault.Checkf(n >= 1, fault.CodeBadArgument, "filters.KeepNth: n must be >= 1, got %d", n)

	var mu sync.Mutex
	var seen int
	return stream.NewFilter[T, T](stream.TransformerFunc[T, T](
		func(sample T, md stream.Metadata) (T, stream.Metadata, bool) {
			mu.Lock()
			seen++
			keep := seen%n == 0
			mu.Unlock()
			return sample, md, keep
		}), opts...)
}

// DropFirst drops the first n samples (burn-in) and passes everything
// after.
func DropFirst[T any](n int, opts ...stream.ConsumerOption) *stream.Filter[T, T] {
	fault.Checkf(n >= 0, fault.CodeBadArgument, "filters.DropFirst: n must be >= 0, got %d", n)

	var mu sync.Mutex
	var seen int
	return stream.NewFilter[T, T](stream.TransformerFunc[T, T](
		func(sample T, md stream.Metadata) (T, stream.Metadata, bool) {
			mu.Lock()
			seen++
			keep := seen > n
			mu.Unlock()
			return sample, md, keep
		}), opts...)
}

// Where passes only samples for which pred returns true. The predicate
// sees the sample and its metadata; read metadata defensively with
// stream.Value.
func Where[T any](pred func(sample T, md stream.Metadata) bool, opts ...stream.ConsumerOption) *stream.Filter[T, T] {
	fault.Check(pred != nil, fault.CodeBadArgument, "filters.Where: predicate must not be nil")

	return stream.NewFilter[T, T](stream.TransformerFunc[T, T](
		func(sample T, md stream.Metadata) (T, stream.Metadata, bool) {
			return sample, md, pred(sample, md)
		}), opts...)
}

// Convert maps every sample from A to B, passing metadata through
// unchanged.
func Convert[A, B any](fn func(A) B, opts ...stream.ConsumerOption) *stream.Filter[A, B] {
	fault.Check(fn != nil, fault.CodeBadArgument, "filters.Convert: conversion must not be nil")

	return stream.NewFilter[A, B](stream.TransformerFunc[A, B](
		func(sample A, md stream.Metadata) (B, stream.Metadata, bool) {
			return fn(sample), md, true
		}), opts...)
}

// Component projects vector samples onto their i-th coordinate. Samples
// shorter than i+1 are dropped.
func Component(i int, opts ...stream.ConsumerOption) *stream.Filter[[]float64, float64] {
	fault.Checkf(i >= 0, fault.CodeBadArgument, "filters.Component: index must be >= 0, got %d", i)

	return stream.NewFilter[[]float64, float64](stream.TransformerFunc[[]float64, float64](
		func(sample []float64, md stream.Metadata) (float64, stream.Metadata, bool) {
			if i >= len(sample) {
				return 0, md, false
			}
			return sample[i], md, true
		}), opts...)
}
