// Package runner implements the orchestration layer driving agent runs.
//
// The Runner manages the lifecycle of a conversational run: it loads the
// session, appends the user turn, executes the root agent asynchronously,
// applies event side-effects (state deltas), persists history and streams
// events to the caller.
//
// # Responsibilities (abridged)
//   - Agent run orchestration (async streaming event delivery)
//   - Event processing & side-effect application (session state)
//   - Session history persistence
//   - Run lifecycle management, cancellation and idempotent close
//
// See runner.go for the operational implementation details.
package runner
