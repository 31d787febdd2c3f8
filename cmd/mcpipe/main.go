// Command mcpipe runs a Markov-chain Monte-Carlo sampling pipeline:
// a Metropolis-Hastings kernel streams states through burn-in and
// thinning filters into a set of running estimators, with optional
// OpenTelemetry metrics and a live SSE monitor.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/streamkit/config"
	"github.com/kbukum/streamkit/filters"
	"github.com/kbukum/streamkit/logger"
	"github.com/kbukum/streamkit/monitor"
	"github.com/kbukum/streamkit/observability"
	"github.com/kbukum/streamkit/sampler"
	"github.com/kbukum/streamkit/stats"
	"github.com/kbukum/streamkit/stream"
	"github.com/kbukum/streamkit/version"
)

// kernel is the sampler-side contract the pipeline needs: a source of
// states that can be driven, drained, and closed.
type kernel interface {
	stream.Source[[]float64]
	Run(ctx context.Context, n int) error
	AcceptanceRate() float64
	State() []float64
	Flush()
	Close()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mcpipe: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg Config
	if err := config.LoadConfig("mcpipe", &cfg); err != nil {
		return err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Init(cfg.Logging)
	log := logger.GetGlobalLogger().WithComponent("mcpipe")
	log.Info("starting", logger.Fields(
		"version", version.GetShortVersion(),
		"algorithm", cfg.Sampler.Algorithm,
		"target", cfg.Sampler.Target,
		"steps", cfg.Chain.Steps,
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics are optional; the pipeline runs unmetered without them.
	var pm *observability.PipelineMetrics
	if cfg.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, &observability.MeterConfig{
			ServiceName:    cfg.Name,
			ServiceVersion: version.GetShortVersion(),
			Environment:    cfg.Environment,
			Endpoint:       cfg.Metrics.Endpoint,
			Insecure:       cfg.Metrics.Insecure,
			Interval:       time.Duration(cfg.Metrics.IntervalSecs) * time.Second,
		})
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mp.Shutdown(shutdownCtx)
		}()

		pm, err = observability.NewPipelineMetrics(observability.Meter(cfg.Name))
		if err != nil {
			return err
		}
	}

	smp := buildSampler(cfg.Sampler)

	// Sampler -> burn-in -> thinning, fused into one compound source.
	burn := filters.DropFirst[[]float64](cfg.Chain.BurnIn, stream.WithName("burn-in"))
	thin := filters.KeepNth[[]float64](cfg.Chain.Thin, stream.WithName("thin"))
	prep := stream.Fuse[[]float64, []float64, []float64](burn, thin, stream.OwnBoth())
	pipeline := stream.Through[[]float64, []float64](smp, prep, stream.OwnBoth())

	// Optionally splice a metrics tap behind the thinning stage.
	var estSrc stream.Source[[]float64] = pipeline
	closeHead := pipeline.Close
	if pm != nil {
		tap := observability.NewTap[[]float64]("estimators", pm)
		tapped := stream.Through[[]float64, []float64](pipeline, tap, stream.OwnBoth())
		estSrc = tapped
		closeHead = tapped.Close
	}

	var estOpts []stream.ConsumerOption
	if cfg.Chain.Async {
		estOpts = append(estOpts, stream.WithMode(stream.Asynchronous, cfg.Chain.QueueSize))
	}

	mean := stats.NewMean(append(estOpts, stream.WithName("mean"))...)
	cov := stats.NewCovariance(append(estOpts, stream.WithName("covariance"))...)
	mean.ConnectTo(estSrc)
	cov.ConnectTo(estSrc)

	// Scalar estimators watch one coordinate. The autocovariance depends
	// on arrival order, so it always runs synchronously.
	comp := filters.Component(cfg.Histogram.Component, stream.WithName("component"))
	scalar := stream.Through[[]float64, float64](estSrc, comp, stream.OwnRight())
	hist := stats.NewHistogram(cfg.Histogram.Min, cfg.Histogram.Max, cfg.Histogram.Bins,
		append(estOpts, stream.WithName("histogram"))...)
	acv := stats.NewAutocovariance(cfg.Chain.MaxLag, stream.WithName("autocovariance"))
	hist.ConnectTo(scalar)
	acv.ConnectTo(scalar)

	// Live monitoring over SSE.
	var hub *monitor.Hub
	if cfg.Monitor.Enabled {
		hub = monitor.NewHub()
		go hub.Run()
		defer hub.Stop()

		pub := monitor.NewPublisher(hub, time.Duration(cfg.Monitor.SnapshotSecs)*time.Second,
			snapshotFunc(smp, mean, cov, acv))
		pub.Start()
		defer pub.Stop()

		srv := monitor.NewServer(cfg.Monitor, hub, healthFunc(&cfg, smp, mean, hub))
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Stop(shutdownCtx)
		}()
	}

	start := time.Now()
	err := smp.Run(ctx, cfg.Chain.Steps)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		log.Warn("sampling interrupted", logger.Fields("error", err.Error()))
	}

	// Drain deferred deliveries before reading the estimators.
	smp.Flush()

	logSummary(log, cfg, smp, mean, cov, hist, acv, time.Since(start))

	// Teardown order follows data flow: scalar branch, then the head of
	// the pipeline, then the remaining plain consumers.
	scalar.Close()
	closeHead()
	mean.DisconnectAndFlush()
	cov.DisconnectAndFlush()
	hist.DisconnectAndFlush()
	acv.DisconnectAndFlush()

	return nil
}

func buildSampler(cfg SamplerConfig) kernel {
	target := targetFor(cfg.Target)
	initial := make([]float64, cfg.Dimension)

	var opts []sampler.Option
	if cfg.Seed != 0 {
		opts = append(opts, sampler.WithSeed(cfg.Seed))
	}

	switch cfg.Algorithm {
	case "drmh":
		opts = append(opts, sampler.WithSamplerName("drmh"))
		return sampler.NewDelayedRejectionMH(target, initial, cfg.StepSize, cfg.Shrink, opts...)
	default:
		opts = append(opts, sampler.WithSamplerName("rwmh"))
		return sampler.NewRandomWalkMH(target, initial, cfg.StepSize, opts...)
	}
}

// snapshotFunc assembles the live view streamed to SSE clients.
func snapshotFunc(smp kernel, mean *stats.Mean, cov *stats.Covariance, acv *stats.Autocovariance) monitor.SnapshotFunc {
	return func() monitor.Snapshot {
		snap := monitor.Snapshot{
			Timestamp: time.Now().UTC(),
			Samples:   mean.Count(),
			Values: map[string]float64{
				"acceptance_rate": smp.AcceptanceRate(),
			},
			Vectors: map[string][]float64{
				"mean":  mean.Mean(),
				"state": smp.State(),
			},
		}
		if acv.Count() > 2 {
			snap.Values["autocov_lag0"] = acv.At(0)
		}
		if c := cov.Cov(); c != nil {
			n, _ := c.Dims()
			diag := make([]float64, n)
			for i := 0; i < n; i++ {
				diag[i] = c.At(i, i)
			}
			snap.Vectors["variance"] = diag
		}
		return snap
	}
}

// healthFunc reports pipeline liveness for /healthz.
func healthFunc(cfg *Config, smp kernel, mean *stats.Mean, hub *monitor.Hub) monitor.HealthFunc {
	return func(_ context.Context) *observability.PipelineHealth {
		ph := observability.NewPipelineHealth(cfg.Name, version.GetShortVersion())
		ph.AddComponent(observability.Health{
			Name:    "sampler",
			Status:  observability.HealthStatusUp,
			Message: fmt.Sprintf("acceptance rate %.3f", smp.AcceptanceRate()),
		})
		ph.AddComponent(observability.Health{
			Name:    "estimators",
			Status:  observability.HealthStatusUp,
			Message: fmt.Sprintf("%d samples accumulated", mean.Count()),
		})
		ph.AddComponent(observability.Health{
			Name:    "monitor",
			Status:  observability.HealthStatusUp,
			Message: fmt.Sprintf("%d clients connected", hub.ClientCount()),
		})
		return ph
	}
}

func logSummary(log *logger.Logger, cfg Config, smp kernel, mean *stats.Mean,
	cov *stats.Covariance, hist *stats.Histogram, acv *stats.Autocovariance, elapsed time.Duration) {

	fields := logger.Fields(
		"elapsed_ms", elapsed.Milliseconds(),
		"acceptance_rate", smp.AcceptanceRate(),
		"samples", mean.Count(),
		"mean", mean.Mean(),
		"hist_underflow", hist.Underflow(),
		"hist_overflow", hist.Overflow(),
	)

	if c := cov.Cov(); c != nil {
		n, _ := c.Dims()
		diag := make([]float64, n)
		for i := 0; i < n; i++ {
			diag[i] = c.At(i, i)
		}
		fields["variance"] = diag
	}

	// Integrated autocorrelation time for the watched coordinate, using
	// the initial positive sequence of autocovariances.
	if c0 := acv.At(0); c0 > 0 {
		tau := 1.0
		for lag := 1; lag <= acv.MaxLag(); lag++ {
			rho := acv.At(lag) / c0
			if rho <= 0 {
				break
			}
			tau += 2 * rho
		}
		fields["iact"] = tau
		fields["ess"] = float64(acv.Count()) / tau
	}

	log.Info("sampling finished", fields)
}
