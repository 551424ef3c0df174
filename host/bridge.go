package host

import (
	"context"
	"fmt"
	"strings"

	"github.com/mehmetalpayy/a2a-agent-orchestrator/core"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/logging"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/runner"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/session"
)

// FallbackResponse is returned when the event stream yields no usable text.
const FallbackResponse = "No response received from delegated agents."

// runnerAPI is the slice of the runtime the bridge depends on.
type runnerAPI interface {
	Run(ctx context.Context, sessionID string, userContent core.Content) (string, <-chan core.Event, <-chan error, error)
	Close() error
}

// BridgeOptions configure a RunnerBridge.
type BridgeOptions struct {
	Runner        runnerAPI
	SessionStore  core.SessionStore
	Logger        logging.Logger
	MaxModelCalls int
}

// RunnerBridge adapts one user turn into a call against the decision-engine
// runtime and reduces its event stream to a single final string. Each bridge
// owns a runner and a fresh session store; the runner is released on every
// exit path of RunAndGetFinalResponse, so a bridge serves exactly one turn.
type RunnerBridge struct {
	agentName string
	runner    runnerAPI
	store     core.SessionStore
	logger    logging.Logger
}

// NewRunnerBridge builds a bridge around the given agent. A dedicated runner
// and in-memory session store are created unless overridden.
func NewRunnerBridge(a core.Agent, optFns ...func(o *BridgeOptions)) *RunnerBridge {
	opts := BridgeOptions{
		Logger:        logging.NoOpLogger{},
		MaxModelCalls: 100,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.SessionStore == nil {
		opts.SessionStore = session.NewInMemoryStore()
	}
	if opts.Runner == nil {
		opts.Runner = runner.New(a, func(o *runner.Options) {
			o.SessionStore = opts.SessionStore
			o.Logger = opts.Logger
			o.MaxModelCalls = opts.MaxModelCalls
		})
	}

	return &RunnerBridge{
		agentName: a.Name(),
		runner:    opts.Runner,
		store:     opts.SessionStore,
		logger:    opts.Logger,
	}
}

// RunAndGetFinalResponse runs one turn and returns the final text answer.
//
// History is replayed into a fresh session as alternating user/assistant
// events, skipping entries with empty text, which seeds the engine's memory
// without re-invoking the model for past turns. The resulting event stream is
// consumed in arrival order; the last non-empty text extracted from a
// non-user event wins. When the stream yields nothing usable the fixed
// fallback string is returned. The runner is closed on every exit path.
func (b *RunnerBridge) RunAndGetFinalResponse(ctx context.Context, userInput string, history []ChatMessage, initialState map[string]any) (string, error) {
	defer func() {
		if err := b.runner.Close(); err != nil {
			b.logger.Warn("bridge.runner_close_failed", "error", err.Error())
		}
	}()

	sessionID := core.NewID()
	if _, err := b.store.Get(sessionID); err != nil {
		return "", err
	}

	if len(initialState) > 0 {
		if err := b.store.ApplyDelta(sessionID, initialState); err != nil {
			return "", err
		}
	}

	if len(history) > 0 {
		b.logger.Info("bridge.replay_history", "count", len(history))
	}
	for _, msg := range history {
		text := strings.TrimSpace(msg.Content)
		if text == "" {
			continue
		}

		role, author := RoleUser, "user"
		if msg.Role != RoleUser {
			role, author = RoleAssistant, b.agentName
		}

		if err := b.store.AppendEvent(sessionID, core.NewHistoryEvent(author, role, text)); err != nil {
			return "", err
		}
	}

	userContent := core.Content{Role: RoleUser, Parts: []core.Part{core.TextPart{Text: userInput}}}

	runID, events, errs, err := b.runner.Run(ctx, sessionID, userContent)
	if err != nil {
		return "", err
	}
	b.logger.Debug("bridge.run_started", "run_id", runID, "session_id", sessionID)

	finalText := FallbackResponse
	for ev := range events {
		if text := extractTextFromEvent(ev); text != "" {
			finalText = text
		}
	}

	if runErr := <-errs; runErr != nil {
		return "", runErr
	}

	return finalText, nil
}

// extractTextFromEvent consolidates meaningful text from a single event.
// User-authored and content-free events yield nothing. Text parts and
// function-response payloads contribute in order, joined by newlines.
func extractTextFromEvent(ev core.Event) string {
	if ev.Author == "user" || ev.Content == nil || len(ev.Content.Parts) == 0 {
		return ""
	}

	var texts []string
	for _, part := range ev.Content.Parts {
		switch p := part.(type) {
		case core.TextPart:
			if p.Text != "" {
				texts = append(texts, p.Text)
			}
		case core.FunctionResponsePart:
			if text := functionResponseText(p.FunctionResponse.Response); text != "" {
				texts = append(texts, text)
			}
		}
	}

	return strings.TrimSpace(strings.Join(texts, "\n"))
}

// functionResponseText extracts the user-facing portion of a tool response:
// the "response" entry of a map payload or a plain string payload. Other
// shapes, such as opaque task handles, carry nothing user-facing.
func functionResponseText(response any) string {
	switch resp := response.(type) {
	case map[string]any:
		if v, ok := resp["response"]; ok {
			if s, ok := v.(string); ok {
				return strings.TrimSpace(s)
			}
			return strings.TrimSpace(fmt.Sprintf("%v", v))
		}
	case string:
		return strings.TrimSpace(resp)
	}
	return ""
}
