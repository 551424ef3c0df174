package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mehmetalpayy/a2a-agent-orchestrator/agent"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/core"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/logging"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/model"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/remote"
)

// routingPromptTemplate frames every model call of the host. The instruction
// placeholder carries the configured system prompt, agents the discovered
// catalog and current_agent the session's active routing target.
const routingPromptTemplate = `{{instruction}}

You are an expert delegator that routes user requests to remote agents.

Discovery: review the list of available remote agents below and pick the one
whose description best matches the user's request.

Execution: use the send_message tool to delegate the task. Pass the exact
agent name and a complete, self-contained task description including all
relevant context from the conversation.

Rely on the active agent for follow-up requests about an ongoing task. If no
agent fits, say so instead of guessing. Never fabricate a response on behalf
of a remote agent.

Available remote agents:
{{agents}}

Currently active agent: {{current_agent}}`

// Options configure a Host.
type Options struct {
	// Description summarizes the host for catalog and prompt use.
	Description string
	// SystemPrompt overrides the default instruction text.
	SystemPrompt string
	// SystemPromptVariables are substituted into SystemPrompt placeholders.
	SystemPromptVariables TemplateVariables
	// Streaming requests streamed responses. The host only supports the
	// single-shot form, so enabling it makes ProcessRequest fail.
	Streaming bool
	// TaskTimeout bounds each remote delegation call.
	TaskTimeout time.Duration
	// MaxModelCalls limits model invocations per turn.
	MaxModelCalls int
	// Logger receives structured host diagnostics.
	Logger logging.Logger
}

// Host routes natural language requests to remote A2A agents. An LLM decides
// per turn whether to answer directly or delegate through the send_message
// capability; the remote agent pool is discovered once during Initialize.
type Host struct {
	name         string
	description  string
	systemPrompt string
	streaming    bool
	taskTimeout  time.Duration
	maxCalls     int

	llm     model.Model
	manager *remote.Manager
	logger  logging.Logger

	mu    sync.Mutex
	ready bool
}

// New constructs a routing host around the given model and agent manager.
func New(name string, llm model.Model, manager *remote.Manager, optFns ...func(o *Options)) *Host {
	opts := Options{
		Description:   "A routing agent that delegates tasks to remote agents.",
		TaskTimeout:   60 * time.Second,
		MaxModelCalls: 10,
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	h := &Host{
		name:        name,
		description: opts.Description,
		streaming:   opts.Streaming,
		taskTimeout: opts.TaskTimeout,
		maxCalls:    opts.MaxModelCalls,
		llm:         llm,
		manager:     manager,
		logger:      opts.Logger,
	}

	h.SetSystemPrompt(opts.SystemPrompt, opts.SystemPromptVariables)

	return h
}

// Name returns the host's display name.
func (h *Host) Name() string { return h.name }

// Description returns the host's description.
func (h *Host) Description() string { return h.description }

// SystemPrompt returns the current instruction text.
func (h *Host) SystemPrompt() string { return h.systemPrompt }

// SetSystemPrompt sets or updates the instruction text, substituting template
// variables when provided, and returns the resulting prompt.
func (h *Host) SetSystemPrompt(template string, variables TemplateVariables) string {
	switch {
	case template == "":
	case variables == nil:
		h.systemPrompt = template
	default:
		h.systemPrompt = ReplacePlaceholders(template, variables)
	}
	return h.systemPrompt
}

// Ready reports whether remote agent discovery has completed.
func (h *Host) Ready() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ready
}

// Initialize discovers the configured remote agents. It is idempotent; a
// second call is a no-op.
func (h *Host) Initialize(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ready {
		return nil
	}

	h.logger.Info("host.initialize.start", "host", h.name)
	if err := h.manager.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize remote agent manager: %w", err)
	}

	h.ready = true
	h.logger.Info("host.initialize.complete", "host", h.name)
	return nil
}

// RemoteAgentsDescription extends the host description with the discovered
// agent summary when any agents are available.
func (h *Host) RemoteAgentsDescription() string {
	if details, ok := h.manager.FormattedDetails(); ok {
		return fmt.Sprintf("%s can access the following remote agents: [%s]", h.description, details)
	}
	return h.description
}

// RequestOptions carry per-request overrides for ProcessRequest.
type RequestOptions struct {
	// MessageMetadata is inbound call metadata, e.g. an upstream message id
	// to reuse for outgoing delegations.
	MessageMetadata map[string]any
}

// ProcessRequest handles one user turn: it lazily completes discovery,
// replays the chat history into a fresh engine session, runs the decision
// loop and returns the final assistant message. Streaming hosts fail with
// ErrStreamingUnsupported.
func (h *Host) ProcessRequest(ctx context.Context, userInput string, history []ConversationMessage, optFns ...func(o *RequestOptions)) (ConversationMessage, error) {
	if !h.Ready() {
		if err := h.Initialize(ctx); err != nil {
			return ConversationMessage{}, err
		}
	}

	if h.streaming {
		return ConversationMessage{}, ErrStreamingUnsupported
	}

	var reqOpts RequestOptions
	for _, fn := range optFns {
		fn(&reqOpts)
	}

	h.logger.Info(
		"host.process_request.start",
		"host", h.name,
		"input_len", len(userInput),
		"history_len", len(history),
	)

	bridge := NewRunnerBridge(h.buildAgent(), func(o *BridgeOptions) {
		o.Logger = h.logger
		o.MaxModelCalls = h.maxCalls
	})

	var initialState map[string]any
	if reqOpts.MessageMetadata != nil {
		initialState = map[string]any{stateInboundMetadata: reqOpts.MessageMetadata}
	}

	finalText, err := bridge.RunAndGetFinalResponse(ctx, userInput, PrepareChatHistory(history), initialState)
	if err != nil {
		return ConversationMessage{}, err
	}

	h.logger.Info("host.process_request.complete", "host", h.name, "response_len", len(finalText))

	return NewConversationMessage(RoleAssistant, finalText), nil
}

// buildAgent assembles the per-request decision agent with the routing
// instruction and the delegation capability.
func (h *Host) buildAgent() *agent.ModelAgent {
	a := agent.NewModelAgent(h.name, h.llm, func(o *agent.ModelAgentOptions) {
		o.Description = h.description
		o.Instruction = agent.NewInstructionFromFunc(h.rootInstruction)
	})
	a.RegisterTool(NewSendMessageTool(h.manager, h.taskTimeout))
	return a
}

// rootInstruction renders the routing prompt for the current model call. It
// also activates the conversation session on first use, minting a session id.
func (h *Host) rootInstruction(runCtx *core.RunContext) (string, error) {
	sess := SessionFor(runCtx)
	sess.Activate()

	return ReplacePlaceholders(routingPromptTemplate, TemplateVariables{
		"instruction":   h.systemPrompt,
		"agents":        h.manager.CatalogPrompt(),
		"current_agent": sess.ActiveAgent(),
	}), nil
}
