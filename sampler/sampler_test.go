package sampler

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/kbukum/streamkit/fault"
	"github.com/kbukum/streamkit/stats"
	"github.com/kbukum/streamkit/stream"
)

func stdNormal(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v * v
	}
	return -0.5 * s
}

func TestRandomWalkEmitsEveryStep(t *testing.T) {
	smp := NewRandomWalkMH(stdNormal, []float64{0, 0}, 0.5, WithSeed(1))
	cap := stats.NewCapture[[]float64]()
	cap.ConnectTo(smp)

	const steps = 200
	if err := smp.Run(context.Background(), steps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cap.Len() != steps {
		t.Fatalf("expected %d emitted states, got %d", steps, cap.Len())
	}
	for i, s := range cap.Samples() {
		if len(s) != 2 {
			t.Fatalf("state %d has dimension %d, want 2", i, len(s))
		}
	}
}

func TestRandomWalkMetadataKeys(t *testing.T) {
	smp := NewRandomWalkMH(stdNormal, []float64{1}, 0.5, WithSeed(7))
	cap := stats.NewCapture[[]float64]()
	cap.ConnectTo(smp)

	smp.Step()
	smp.Step()

	for _, md := range cap.Metadata() {
		if _, ok := stream.Value[float64](md, MetaLogDensity); !ok {
			t.Error("expected log density on every sample")
		}
		if _, ok := stream.Value[bool](md, MetaAccepted); !ok {
			t.Error("expected acceptance flag on every sample")
		}
	}
}

func TestRandomWalkAcceptanceRateReasonable(t *testing.T) {
	smp := NewRandomWalkMH(stdNormal, []float64{0}, 1.0, WithSeed(42))
	if err := smp.Run(context.Background(), 2000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rate := smp.AcceptanceRate()
	if rate <= 0.1 || rate >= 0.95 {
		t.Errorf("acceptance rate %g outside sane range for unit steps on a standard normal", rate)
	}
}

func TestRandomWalkSeedReproducibility(t *testing.T) {
	run := func() [][]float64 {
		smp := NewRandomWalkMH(stdNormal, []float64{0.5, -0.5}, 0.8, WithSeed(99))
		cap := stats.NewCapture[[]float64]()
		cap.ConnectTo(smp)
		if err := smp.Run(context.Background(), 100); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return cap.Samples()
	}

	if !reflect.DeepEqual(run(), run()) {
		t.Error("identical seeds must yield identical chains")
	}
}

func TestRandomWalkRunHonorsCancellation(t *testing.T) {
	smp := NewRandomWalkMH(stdNormal, []float64{0}, 0.5, WithSeed(3))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := smp.Run(ctx, 1000); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRandomWalkConstructorFaults(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"nil target", func() { NewRandomWalkMH(nil, []float64{0}, 0.5) }},
		{"empty initial", func() { NewRandomWalkMH(stdNormal, nil, 0.5) }},
		{"zero step", func() { NewRandomWalkMH(stdNormal, []float64{0}, 0) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if f, ok := r.(*fault.Fault); !ok || f.Code != fault.CodeBadArgument {
					t.Errorf("expected CodeBadArgument fault, got %v", r)
				}
			}()
			tc.fn()
		})
	}
}

func TestRandomWalkInitialStateIsCopied(t *testing.T) {
	initial := []float64{1, 2}
	smp := NewRandomWalkMH(stdNormal, initial, 0.5, WithSeed(1))
	initial[0] = 100

	if smp.State()[0] == 100 {
		t.Error("sampler must copy the initial state")
	}
}

func TestRandomWalkMeanConvergesOnShiftedNormal(t *testing.T) {
	// Unit normal centered at (3, -2): the chain mean should land nearby.
	shifted := func(x []float64) float64 {
		d0, d1 := x[0]-3, x[1]+2
		return -0.5 * (d0*d0 + d1*d1)
	}

	smp := NewRandomWalkMH(shifted, []float64{3, -2}, 1.0, WithSeed(5))
	mean := stats.NewMean()
	mean.ConnectTo(smp)

	if err := smp.Run(context.Background(), 20000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := mean.Mean()
	if math.Abs(got[0]-3) > 0.5 || math.Abs(got[1]+2) > 0.5 {
		t.Errorf("chain mean %v too far from (3, -2)", got)
	}
}

func TestDelayedRejectionEmitsEveryStep(t *testing.T) {
	smp := NewDelayedRejectionMH(stdNormal, []float64{0, 0}, 1.0, 0.2, WithSeed(11))
	cap := stats.NewCapture[[]float64]()
	cap.ConnectTo(smp)

	const steps = 300
	if err := smp.Run(context.Background(), steps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cap.Len() != steps {
		t.Fatalf("expected %d emitted states, got %d", steps, cap.Len())
	}
}

func TestDelayedRejectionStageMetadata(t *testing.T) {
	smp := NewDelayedRejectionMH(stdNormal, []float64{0}, 1.0, 0.2, WithSeed(13))
	cap := stats.NewCapture[[]float64]()
	cap.ConnectTo(smp)

	if err := smp.Run(context.Background(), 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, md := range cap.Metadata() {
		accepted, ok := stream.Value[bool](md, MetaAccepted)
		if !ok {
			t.Fatal("expected acceptance flag on every sample")
		}
		stage, hasStage := stream.Value[int](md, MetaStage)
		if accepted {
			if !hasStage || (stage != 1 && stage != 2) {
				t.Fatalf("accepted sample must carry stage 1 or 2, got %v/%v", stage, hasStage)
			}
		} else if hasStage {
			t.Fatal("rejected sample must not carry a stage")
		}
	}
}

func TestDelayedRejectionBeatsPlainRejectionRate(t *testing.T) {
	// With a deliberately oversized first-stage step the second stage
	// rescues some moves, so some fraction of acceptances is stage two.
	smp := NewDelayedRejectionMH(stdNormal, []float64{0}, 5.0, 0.1, WithSeed(17))
	if err := smp.Run(context.Background(), 5000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if smp.SecondStageRate() <= 0 {
		t.Error("expected at least one second-stage acceptance with an oversized first stage")
	}
	if smp.AcceptanceRate() <= smp.SecondStageRate() {
		t.Error("overall acceptance must include first-stage moves")
	}
}

func TestDelayedRejectionSeedReproducibility(t *testing.T) {
	run := func() [][]float64 {
		smp := NewDelayedRejectionMH(stdNormal, []float64{1}, 1.0, 0.3, WithSeed(23))
		cap := stats.NewCapture[[]float64]()
		cap.ConnectTo(smp)
		if err := smp.Run(context.Background(), 100); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return cap.Samples()
	}

	if !reflect.DeepEqual(run(), run()) {
		t.Error("identical seeds must yield identical chains")
	}
}

func TestDelayedRejectionConstructorFaults(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"nil target", func() { NewDelayedRejectionMH(nil, []float64{0}, 1, 0.5) }},
		{"empty initial", func() { NewDelayedRejectionMH(stdNormal, nil, 1, 0.5) }},
		{"zero step", func() { NewDelayedRejectionMH(stdNormal, []float64{0}, 0, 0.5) }},
		{"zero shrink", func() { NewDelayedRejectionMH(stdNormal, []float64{0}, 1, 0) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if f, ok := r.(*fault.Fault); !ok || f.Code != fault.CodeBadArgument {
					t.Errorf("expected CodeBadArgument fault, got %v", r)
				}
			}()
			tc.fn()
		})
	}
}

func TestLog1mExpMin0(t *testing.T) {
	tests := []struct {
		v    float64
		want float64
	}{
		{0, math.Inf(-1)},
		{1, math.Inf(-1)},
		{-math.Ln2, math.Log(0.5)},
		{-0.1, math.Log(1 - math.Exp(-0.1))},
		{-10, math.Log(1 - math.Exp(-10))},
	}
	for _, tc := range tests {
		got := log1mExpMin0(tc.v)
		if math.IsInf(tc.want, -1) {
			if !math.IsInf(got, -1) {
				t.Errorf("log1mExpMin0(%g) = %g, want -Inf", tc.v, got)
			}
			continue
		}
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("log1mExpMin0(%g) = %g, want %g", tc.v, got, tc.want)
		}
	}
}
