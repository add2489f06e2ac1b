// Package logging provides structured logging for BrewLogic Core.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the controller.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// *Logger satisfies the small Logger interfaces declared by the box,
// connection and telemetry packages, so one logger is handed to each
// component with a "component" attribute:
//
//	logger := logging.New(cfg.Logging, version)
//	engine.SetLogger(logger.Component("box"))
package logging
