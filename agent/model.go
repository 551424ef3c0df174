package agent

import (
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/mehmetalpayy/a2a-agent-orchestrator/core"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/logging"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/model"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/tool"
)

// boolPtr creates a pointer to a boolean value.
// This is useful for optional fields in structs where nil indicates "not set".
func boolPtr(b bool) *bool {
	return &b
}

// ModelAgentOptions configures a ModelAgent instance.
//
// Use functional options with NewModelAgent to override defaults.
type ModelAgentOptions struct {
	Description           string
	Instruction           Instruction
	EnableStreaming       bool
	EnableFunctionCalling bool
	ToolTimeout           time.Duration
	OutputKey             string
	MaxHistoryMessages    int
	Tools                 map[string]tool.Tool
}

// ModelAgent integrates with language models to route natural language inputs
// to registered tools and generate responses.
//
// This agent implementation supports:
//   - Natural language conversation through system prompts
//   - Function calling with registered tools
//   - Streaming responses for real-time interactions
//   - Session state management with output keys
//   - Conversation history assembly with configurable limits
type ModelAgent struct {
	name                  string
	description           string
	llm                   model.Model          // Language model interface
	instruction           Instruction          // Instructions for the LLM
	tools                 map[string]tool.Tool // Registered tools for function calling
	enableFunctionCalling bool                 // Whether to enable tool usage
	enableStreaming       bool                 // Whether to stream responses
	toolTimeout           time.Duration        // Timeout for individual tool calls
	outputKey             string               // Key for saving responses to session state
	maxHistoryMessages    int                  // Maximum number of conversation history messages to keep
}

// NewModelAgent creates a new model-based agent with sensible defaults.
//
// The agent is initialized with:
//   - Empty tool registry for function calling
//   - Streaming disabled (delegation results arrive whole)
//   - Function calling enabled for tool usage
//   - 30-second timeout for tool calls
//   - 40-message conversation history limit
func NewModelAgent(name string, llm model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Instruction:           NewInstructionFromText(fmt.Sprintf("You are %s, a helpful AI assistant.", name)),
		EnableStreaming:       false,
		EnableFunctionCalling: true,
		ToolTimeout:           30 * time.Second,
		MaxHistoryMessages:    40,
		Tools:                 make(map[string]tool.Tool),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ModelAgent{
		name:                  name,
		description:           opts.Description,
		llm:                   llm,
		instruction:           opts.Instruction,
		enableStreaming:       opts.EnableStreaming,
		enableFunctionCalling: opts.EnableFunctionCalling,
		toolTimeout:           opts.ToolTimeout,
		outputKey:             opts.OutputKey,
		maxHistoryMessages:    opts.MaxHistoryMessages,
		tools:                 opts.Tools,
	}
}

// Name returns the agent's display name.
func (a *ModelAgent) Name() string { return a.name }

// Description returns the agent's description.
func (a *ModelAgent) Description() string { return a.description }

// RegisterTool adds a function tool to the agent's capability set.
//
// Registered tools become available for the language model to call during
// conversations when function calling is enabled. Tools should implement
// the tool.Tool interface with proper JSON schema definitions.
func (a *ModelAgent) RegisterTool(t tool.Tool) {
	a.tools[t.Name()] = t
}

// RegisterTools adds multiple tools to the agent's capability set.
func (a *ModelAgent) RegisterTools(tools ...tool.Tool) {
	for _, t := range tools {
		a.RegisterTool(t)
	}
}

// HasTool checks if a tool is registered with the agent.
func (a *ModelAgent) HasTool(name string) bool {
	_, exists := a.tools[name]
	return exists
}

// ListTools returns the names of all registered tools.
func (a *ModelAgent) ListTools() []string {
	names := make([]string, 0, len(a.tools))
	for name := range a.tools {
		names = append(names, name)
	}
	return names
}

// ResolveInstructions produces the final instruction string (system prompt)
// by resolving static or dynamic instruction sources.
func (a *ModelAgent) ResolveInstructions(runCtx *core.RunContext) (string, error) {
	return a.instruction.Resolve(runCtx)
}

// Run implements core.Agent. It drives the model/tool loop until the model
// produces a final response without pending function calls, the model call
// limit is exceeded, or the context is cancelled.
func (a *ModelAgent) Run(runCtx *core.RunContext) error {
	runCtx.LogDebug("agent.run.start", "agent", a.name, "run", runCtx.RunID)

	contents := a.assembleContents(runCtx)

	for {
		select {
		case <-runCtx.Done():
			return runCtx.Err()
		default:
		}

		if err := runCtx.Limiter.Increment(); err != nil {
			return err
		}

		// Instructions are re-resolved per model call so dynamic providers
		// observe state recorded by earlier tool executions in this run.
		instructions, err := a.ResolveInstructions(runCtx)
		if err != nil {
			return fmt.Errorf("resolve instructions: %w", err)
		}

		final, err := a.generateOnce(runCtx, instructions, contents)
		if err != nil {
			return err
		}

		fnCalls := final.GetFunctionCalls()

		if err := runCtx.EmitEvent(final); err != nil {
			return err
		}

		if len(fnCalls) == 0 {
			if a.outputKey != "" && final.Content != nil {
				runCtx.SetState(a.outputKey, textOf(*final.Content))
			}
			runCtx.LogDebug("agent.run.complete", "agent", a.name, "model_calls", runCtx.Limiter.Count())
			return nil
		}

		contents = append(contents, *final.Content)

		responses, err := a.executeFunctionCalls(runCtx, fnCalls)
		if err != nil {
			return err
		}
		contents = append(contents, responses...)
	}
}

// assembleContents builds the model conversation from session history plus the
// current user content, bounded by maxHistoryMessages.
func (a *ModelAgent) assembleContents(runCtx *core.RunContext) []core.Content {
	history := runCtx.Session.GetConversationHistory()
	if a.maxHistoryMessages > 0 && len(history) > a.maxHistoryMessages {
		history = history[len(history)-a.maxHistoryMessages:]
	}

	contents := make([]core.Content, 0, len(history)+1)
	for _, ev := range history {
		if ev.Content != nil {
			contents = append(contents, *ev.Content)
		}
	}

	if len(runCtx.UserContent.Parts) > 0 {
		contents = append(contents, runCtx.UserContent)
	}

	return contents
}

// generateOnce performs a single model call, forwarding partial chunks as
// events when streaming is enabled, and returns the final assistant event.
func (a *ModelAgent) generateOnce(runCtx *core.RunContext, instructions string, contents []core.Content) (core.Event, error) {
	req := model.Request{
		Instructions: instructions,
		Contents:     contents,
		Stream:       a.enableStreaming,
	}
	if a.enableFunctionCalling {
		req.Tools = a.toolDefinitions()
	}

	start := time.Now()
	respCh, errCh := a.llm.Generate(runCtx.Context, req)

	var finalContent *core.Content
	var finishReason string

	for resp := range respCh {
		if resp.Partial {
			if a.enableStreaming {
				ev := core.NewEvent(runCtx.RunID, a.name)
				content := resp.Content
				ev.Content = &content
				ev.Partial = boolPtr(true)
				if err := runCtx.EmitEvent(ev); err != nil {
					return core.Event{}, err
				}
			}
			continue
		}
		content := resp.Content
		finalContent = &content
		finishReason = resp.FinishReason
	}

	err := <-errCh
	logging.LogLLMCall(runCtx.Logger(), a.name, time.Since(start), err)
	if err != nil {
		return core.Event{}, fmt.Errorf("model generation failed: %w", err)
	}

	runCtx.LogDebug("agent.model.finish", "agent", a.name, "finish_reason", finishReason)

	if finalContent == nil {
		return core.Event{}, fmt.Errorf("model returned no final response")
	}

	ev := core.NewEvent(runCtx.RunID, a.name)
	ev.Content = finalContent
	ev.TurnComplete = boolPtr(len(ev.GetFunctionCalls()) == 0)
	return ev, nil
}

// executeFunctionCalls runs each requested tool sequentially and returns the
// tool response contents for the next model turn. Each execution also emits a
// function response event carrying any accumulated state delta.
func (a *ModelAgent) executeFunctionCalls(runCtx *core.RunContext, fnCalls []core.FunctionCall) ([]core.Content, error) {
	responses := make([]core.Content, 0, len(fnCalls))

	for _, fc := range fnCalls {
		if runCtx.Context.Err() != nil {
			return nil, runCtx.Context.Err()
		}

		toolCtx := core.NewToolContext(runCtx, fc.ID)

		execStart := time.Now()
		var (
			result any
			err    error
		)
		func() { // panic safety
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("tool panic: %v\n%s", r, debug.Stack())
					runCtx.LogError("agent.function.panic", "agent", a.name, "function", fc.Name, "recover", r)
				}
			}()
			result, err = a.executeTool(toolCtx, fc.Name, fc.Arguments)
		}()

		runCtx.LogInfo(
			"agent.function.executed",
			"agent", a.name,
			"function", fc.Name,
			"duration_ms", time.Since(execStart).Milliseconds(),
			"error", err != nil,
		)

		respEv := core.NewFunctionResponseEvent(a.name, fc.ID, fc.Name, result, err)
		respEv.RunID = runCtx.RunID
		toolCtx.InternalApplyActions(&respEv)

		if emitErr := runCtx.EmitEvent(respEv); emitErr != nil {
			return nil, emitErr
		}

		responses = append(responses, *respEv.Content)
	}

	return responses, nil
}

// executeTool deserializes JSON arguments and invokes the named tool returning
// its result or an error if the tool is unknown or validation fails.
func (a *ModelAgent) executeTool(toolCtx *core.ToolContext, toolName string, args string) (interface{}, error) {
	t, exists := a.tools[toolName]
	if !exists {
		return nil, fmt.Errorf("tool %s not found", toolName)
	}

	argsMap := make(map[string]interface{})
	if args != "" {
		if err := json.Unmarshal([]byte(args), &argsMap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal args: %w", err)
		}
	}

	return t.Call(toolCtx, argsMap)
}

// toolDefinitions converts registered tools to model tool definitions.
func (a *ModelAgent) toolDefinitions() []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(a.tools))
	for _, t := range a.tools {
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

// textOf concatenates text parts of a content block.
func textOf(c core.Content) string {
	var out string
	for _, p := range c.Parts {
		if tp, ok := p.(core.TextPart); ok {
			out += tp.Text
		}
	}
	return out
}
