// Package core provides the foundational domain types, interfaces and
// execution contexts for the orchestrator's decision-engine runtime:
//
//   - Agents (units of LLM-driven work)
//   - Sessions (stateful conversational containers with event history)
//   - Events (immutable communication + state-delta records)
//   - RunContext / ToolContext (scoped execution & tool sandboxing)
//   - The Runner contract consumed by the host's bridge layer
//
// The package intentionally keeps implementation concerns (persistence,
// concrete agents, model providers) out of scope, exposing small interfaces
// so the routing host can treat the runtime as an opaque event source.
package core
