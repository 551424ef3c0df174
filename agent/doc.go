// Package agent contains the model-backed agent implementation driving the
// orchestration loop: instruction resolution, conversation assembly, model
// calls and tool execution.
package agent
