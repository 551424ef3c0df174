// Package logging provides a minimal logging interface and adapters for the
// orchestrator.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the runtime and the routing host use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - OrchestratorLogger adapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	h := host.New("a2a_host", llm, manager, func(o *host.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
