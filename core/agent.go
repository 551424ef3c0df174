package core

// Agent is the processing unit driven by the Runner. An agent receives its
// input through a RunContext, executes until the turn is complete, and emits
// events back through the context's channel.
//
// Implementations must:
//   - Respect context cancellation for graceful shutdown
//   - Emit events through the provided RunContext
//   - Return only after all events for the run have been emitted
type Agent interface {
	Name() string
	Description() string
	Run(runCtx *RunContext) error
}

// AgentInfo carries identifying details about an agent used in contexts & events.
// Name is the external identifier; Type categorizes implementation (e.g. "host", "remote").
type AgentInfo struct{ Name, Type string }
