// Package observability provides OpenTelemetry metrics integration and
// health reporting for streamkit pipelines.
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("mcpipe"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewPipelineMetrics(observability.Meter("mcpipe"))
//	tap := observability.NewTap[[]float64]("proposals", metrics)
//
// A Tap is a pass-through pipeline stage that counts and times the
// samples flowing through it, so any edge of a chain can be metered by
// splicing one in.
//
// Health Checks:
//
//	health := observability.NewPipelineHealth("mcpipe", "1.0.0")
//	health.AddComponent(stage.CheckHealth(ctx))
package observability
