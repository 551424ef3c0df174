package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehmetalpayy/a2a-agent-orchestrator/core"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/logging"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/model"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/session"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/tool"
)

// scriptedModel returns each scripted response in order, one per Generate call.
// It lets tests drive multi-turn tool loops deterministically.
type scriptedModel struct {
	responses []model.Response
	calls     int
}

func (s *scriptedModel) Generate(_ context.Context, _ model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 1)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		if s.calls < len(s.responses) {
			out <- s.responses[s.calls]
			s.calls++
		}
	}()
	return out, errCh
}

func (s *scriptedModel) Info() model.Info {
	return model.Info{Name: "scripted", Provider: "test", SupportsTools: true}
}

func textResponse(text string) model.Response {
	return model.Response{
		Content:      core.Content{Role: "assistant", Parts: []core.Part{core.TextPart{Text: text}}},
		FinishReason: "stop",
	}
}

func toolCallResponse(id, name, args string) model.Response {
	return model.Response{
		Content: core.Content{Role: "assistant", Parts: []core.Part{
			core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: id, Name: name, Arguments: args}},
		}},
		FinishReason: "tool_calls",
	}
}

func runAgent(t *testing.T, a *ModelAgent, userText string) []core.Event {
	t.Helper()

	store := session.NewInMemoryStore()
	sess, err := store.Create("sess-1")
	require.NoError(t, err)

	emit := make(chan core.Event, 32)
	runCtx := core.NewRunContext(
		context.Background(),
		"sess-1",
		"run-1",
		core.AgentInfo{Name: a.Name(), Type: "test"},
		core.Content{Role: "user", Parts: []core.Part{core.TextPart{Text: userText}}},
		10,
		emit,
		sess,
		store,
		logging.NoOpLogger{},
	)

	require.NoError(t, a.Run(runCtx))
	close(emit)

	var events []core.Event
	for ev := range emit {
		events = append(events, ev)
	}
	return events
}

func TestModelAgent_PlainResponse(t *testing.T) {
	m := &scriptedModel{responses: []model.Response{textResponse("hello there")}}
	a := NewModelAgent("Host", m)

	events := runAgent(t, a, "hi")
	require.Len(t, events, 1)
	assert.Equal(t, "Host", events[0].Author)
	assert.True(t, events[0].IsFinalResponse())
}

func TestModelAgent_ToolLoop(t *testing.T) {
	m := &scriptedModel{responses: []model.Response{
		toolCallResponse("fc-1", "echo", `{"text":"ping"}`),
		textResponse("done: ping"),
	}}

	echoed := ""
	echoTool := tool.NewFunctionTool(
		"echo",
		"Echoes input text",
		map[string]any{
			"type":       "object",
			"properties": map[string]any{"text": map[string]any{"type": "string"}},
			"required":   []any{"text"},
		},
		func(_ *core.ToolContext, args map[string]any) (any, error) {
			echoed = args["text"].(string)
			return args["text"], nil
		},
	)

	a := NewModelAgent("Host", m)
	a.RegisterTool(echoTool)

	events := runAgent(t, a, "please echo ping")
	assert.Equal(t, "ping", echoed)

	// tool call event, function response event, final assistant event
	require.Len(t, events, 3)
	assert.Len(t, events[0].GetFunctionCalls(), 1)
	assert.Len(t, events[1].GetFunctionResponses(), 1)
	assert.True(t, events[2].IsFinalResponse())
}

func TestModelAgent_ToolStateDeltaOnResponseEvent(t *testing.T) {
	m := &scriptedModel{responses: []model.Response{
		toolCallResponse("fc-1", "mark", `{}`),
		textResponse("marked"),
	}}

	markTool := tool.NewFunctionTool(
		"mark",
		"Marks the active agent",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, _ map[string]any) (any, error) {
			tc.SetState("active_agent", "weather")
			return "ok", nil
		},
	)

	a := NewModelAgent("Host", m)
	a.RegisterTool(markTool)

	events := runAgent(t, a, "mark it")
	require.Len(t, events, 3)
	assert.Equal(t, "weather", events[1].Actions.StateDelta["active_agent"])
}

func TestModelAgent_UnknownToolSurfacesErrorResponse(t *testing.T) {
	m := &scriptedModel{responses: []model.Response{
		toolCallResponse("fc-1", "missing", `{}`),
		textResponse("could not run the tool"),
	}}

	a := NewModelAgent("Host", m)

	events := runAgent(t, a, "call something unknown")
	require.Len(t, events, 3)
	frs := events[1].GetFunctionResponses()
	require.Len(t, frs, 1)
	assert.Contains(t, frs[0].Error, "not found")
}

func TestModelAgent_ModelCallLimit(t *testing.T) {
	// Model keeps asking for tools forever; limiter must stop the loop.
	loops := make([]model.Response, 0, 20)
	for i := 0; i < 20; i++ {
		loops = append(loops, toolCallResponse("fc", "echo", `{"text":"x"}`))
	}
	m := &scriptedModel{responses: loops}

	echoTool := tool.NewFunctionTool(
		"echo",
		"Echoes input text",
		map[string]any{"type": "object", "properties": map[string]any{"text": map[string]any{"type": "string"}}},
		func(_ *core.ToolContext, args map[string]any) (any, error) { return args["text"], nil },
	)

	a := NewModelAgent("Host", m)
	a.RegisterTool(echoTool)

	store := session.NewInMemoryStore()
	sess, err := store.Create("sess-1")
	require.NoError(t, err)

	emit := make(chan core.Event, 64)
	runCtx := core.NewRunContext(
		context.Background(),
		"sess-1",
		"run-1",
		core.AgentInfo{Name: "Host", Type: "test"},
		core.Content{Role: "user", Parts: []core.Part{core.TextPart{Text: "loop"}}},
		3,
		emit,
		sess,
		store,
		logging.NoOpLogger{},
	)

	err = a.Run(runCtx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model call limit reached")
}
