// Package logger provides structured logging for streamkit pipelines
// using zerolog.
//
// It supports JSON and console output, log level configuration, and
// stage-scoped loggers with structured fields.
//
// # Configuration
//
//	log:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("sampler")
//	log.Info("chain finished", logger.Fields(logger.FieldSamples, n))
package logger
