package main

import (
	"github.com/kbukum/streamkit/fault"
	"github.com/kbukum/streamkit/sampler"
)

// gaussianTarget is an isotropic standard normal in dim dimensions, up
// to an additive constant.
func gaussianTarget() sampler.Target {
	return func(x []float64) float64 {
		var s float64
		for _, v := range x {
			s += v * v
		}
		return -0.5 * s
	}
}

// bananaTarget is the classic twisted-Gaussian test density: the first
// coordinate is wide, the second follows a parabola in the first, and
// any remaining coordinates are standard normal.
func bananaTarget(b float64) sampler.Target {
	return func(x []float64) float64 {
		if len(x) < 2 {
			var s float64
			for _, v := range x {
				s += v * v
			}
			return -0.5 * s
		}
		logp := -x[0] * x[0] / 200
		t := x[1] + b*x[0]*x[0] - 100*b
		logp -= 0.5 * t * t
		for _, v := range x[2:] {
			logp -= 0.5 * v * v
		}
		return logp
	}
}

// targetFor maps a config name to a log-density.
func targetFor(name string) sampler.Target {
	switch name {
	case "gaussian":
		return gaussianTarget()
	case "banana":
		return bananaTarget(0.03)
	default:
		panic(fault.Newf(fault.CodeInvalidConfig, "unknown target %q", name))
	}
}
