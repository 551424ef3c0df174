package host

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehmetalpayy/a2a-agent-orchestrator/a2a"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/core"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/logging"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/remote"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/session"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/tool"
)

// remoteAgent is a fake A2A agent serving its card and answering message/send
// with a fixed text reply. Received messages are captured for assertions.
type remoteAgent struct {
	srv      *httptest.Server
	received []a2a.Message
}

func newRemoteAgent(t *testing.T, name, description, reply string) *remoteAgent {
	t.Helper()

	ra := &remoteAgent{}

	mux := http.NewServeMux()
	mux.HandleFunc(a2a.WellKnownCardPath, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(a2a.AgentCard{Name: name, Description: description})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			JSONRPC string                `json:"jsonrpc"`
			ID      string                `json:"id"`
			Method  string                `json:"method"`
			Params  a2a.MessageSendParams `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		ra.received = append(ra.received, req.Params.Message)

		result, _ := json.Marshal(a2a.Message{
			Kind:      "message",
			MessageID: "reply-1",
			Role:      "agent",
			Parts:     []a2a.Part{a2a.NewTextPart(reply)},
		})
		_ = json.NewEncoder(w).Encode(a2a.Response{JSONRPC: "2.0", ID: req.ID, Result: result})
	})

	ra.srv = httptest.NewServer(mux)
	t.Cleanup(ra.srv.Close)
	return ra
}

func newToolContext(t *testing.T) *core.ToolContext {
	t.Helper()

	store := session.NewInMemoryStore()
	sess, err := store.Create("sess-1")
	require.NoError(t, err)

	runCtx := core.NewRunContext(
		context.Background(),
		"sess-1",
		"run-1",
		core.AgentInfo{Name: "Host", Type: "host"},
		core.Content{},
		10,
		make(chan core.Event, 8),
		sess,
		store,
		logging.NoOpLogger{},
	)
	return core.NewToolContext(runCtx, "fc-1")
}

func initializedManager(t *testing.T, addresses ...string) *remote.Manager {
	t.Helper()

	m := remote.NewManager(addresses)
	require.NoError(t, m.Initialize(context.Background()))
	return m
}

func TestSendMessageTool_DelegatesAndNormalizes(t *testing.T) {
	agent := newRemoteAgent(t, "weather", "Weather reports", "sunny")
	m := initializedManager(t, agent.srv.URL)

	sendTool := NewSendMessageTool(m, 0)
	toolCtx := newToolContext(t)

	result, err := sendTool.Call(toolCtx, map[string]any{"agent_name": "weather", "task": "forecast for today"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"response": "sunny"}, result)

	require.Len(t, agent.received, 1)
	sent := agent.received[0]
	assert.Equal(t, "user", sent.Role)
	require.Len(t, sent.Parts, 1)
	assert.Equal(t, "forecast for today", sent.Parts[0].Text)
	assert.NotEmpty(t, sent.MessageID)
	assert.NotEmpty(t, sent.ContextID)

	// routing decision recorded in state
	active, ok := toolCtx.GetState(stateActiveAgent)
	require.True(t, ok)
	assert.Equal(t, "weather", active)
}

func TestSendMessageTool_ContextIDStableAcrossCalls(t *testing.T) {
	agent := newRemoteAgent(t, "weather", "Weather reports", "sunny")
	m := initializedManager(t, agent.srv.URL)

	sendTool := NewSendMessageTool(m, 0)
	toolCtx := newToolContext(t)

	args := map[string]any{"agent_name": "weather", "task": "forecast"}
	_, err := sendTool.Call(toolCtx, args)
	require.NoError(t, err)
	_, err = sendTool.Call(toolCtx, args)
	require.NoError(t, err)

	require.Len(t, agent.received, 2)
	assert.Equal(t, agent.received[0].ContextID, agent.received[1].ContextID)
	assert.NotEqual(t, agent.received[0].MessageID, agent.received[1].MessageID)
}

func TestSendMessageTool_ReusesInboundMessageID(t *testing.T) {
	agent := newRemoteAgent(t, "weather", "Weather reports", "sunny")
	m := initializedManager(t, agent.srv.URL)

	sendTool := NewSendMessageTool(m, 0)
	toolCtx := newToolContext(t)
	toolCtx.SetState(stateInboundMetadata, map[string]any{metadataMessageID: "inbound-42"})

	_, err := sendTool.Call(toolCtx, map[string]any{"agent_name": "weather", "task": "forecast"})
	require.NoError(t, err)

	require.Len(t, agent.received, 1)
	assert.Equal(t, "inbound-42", agent.received[0].MessageID)
}

func TestSendMessageTool_RPCErrorYieldsNoResult(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(a2a.WellKnownCardPath, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(a2a.AgentCard{Name: "weather", Description: "Weather reports"})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(a2a.Response{
			JSONRPC: "2.0",
			Error:   &a2a.RPCError{Code: -32000, Message: "agent unavailable"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	m := initializedManager(t, srv.URL)

	sendTool := NewSendMessageTool(m, 0)
	toolCtx := newToolContext(t)

	result, err := sendTool.Call(toolCtx, map[string]any{"agent_name": "weather", "task": "forecast"})
	require.NoError(t, err)
	assert.Nil(t, result)

	// the routing decision still sticks even though the call yielded nothing
	active, ok := toolCtx.GetState(stateActiveAgent)
	require.True(t, ok)
	assert.Equal(t, "weather", active)
}

func TestSendMessageTool_UnknownAgentFailsWithoutStateChange(t *testing.T) {
	m := initializedManager(t)

	sendTool := NewSendMessageTool(m, 0)
	toolCtx := newToolContext(t)

	_, err := sendTool.Call(toolCtx, map[string]any{"agent_name": "ghost", "task": "anything"})
	require.Error(t, err)

	var toolErr *tool.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Contains(t, toolErr.Message, "ghost")

	_, ok := toolCtx.GetState(stateActiveAgent)
	assert.False(t, ok)
}

func TestSendMessageTool_MissingArgumentsFailValidation(t *testing.T) {
	m := initializedManager(t)

	sendTool := NewSendMessageTool(m, 0)

	_, err := sendTool.Call(newToolContext(t), map[string]any{"agent_name": "weather"})
	require.Error(t, err)

	var toolErr *tool.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}
