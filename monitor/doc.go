// Package monitor exposes a running pipeline over HTTP: a health
// endpoint, version info, and a Server-Sent Events stream of periodic
// estimator snapshots.
//
// # Architecture
//
//   - Hub: central router managing SSE client connections
//   - Publisher: samples a SnapshotFunc on a ticker and broadcasts JSON
//   - Server: Gin-backed HTTP server wiring /healthz, /version, /events
//
// # Usage
//
//	hub := monitor.NewHub()
//	go hub.Run()
//	pub := monitor.NewPublisher(hub, time.Second, snapshotFn)
//	pub.Start()
//
//	srv := monitor.NewServer(cfg, hub, health)
//	srv.Start(ctx)
package monitor
