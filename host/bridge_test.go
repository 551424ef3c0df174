package host

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehmetalpayy/a2a-agent-orchestrator/core"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/session"
)

// fakeRunner feeds a scripted event stream to the bridge and records how
// often it was released.
type fakeRunner struct {
	events   []core.Event
	runErr   error
	startErr error

	lastSessionID string
	closeCount    int
}

func (f *fakeRunner) Run(_ context.Context, sessionID string, _ core.Content) (string, <-chan core.Event, <-chan error, error) {
	if f.startErr != nil {
		return "", nil, nil, f.startErr
	}
	f.lastSessionID = sessionID

	events := make(chan core.Event, len(f.events))
	for _, ev := range f.events {
		events <- ev
	}
	close(events)

	errs := make(chan error, 1)
	if f.runErr != nil {
		errs <- f.runErr
	}
	close(errs)

	return "run-1", events, errs, nil
}

func (f *fakeRunner) Close() error {
	f.closeCount++
	return nil
}

type staticAgent struct{ name string }

func (a staticAgent) Name() string                 { return a.name }
func (a staticAgent) Description() string          { return "" }
func (a staticAgent) Run(_ *core.RunContext) error { return nil }

func newFakeBridge(fr *fakeRunner) (*RunnerBridge, *session.InMemoryStore) {
	store := session.NewInMemoryStore()
	b := NewRunnerBridge(staticAgent{name: "Host"}, func(o *BridgeOptions) {
		o.Runner = fr
		o.SessionStore = store
	})
	return b, store
}

func TestBridge_LastNonEmptyExtractionWins(t *testing.T) {
	fr := &fakeRunner{events: []core.Event{
		core.NewMessageEvent("Host", "X"),
		core.NewFunctionCallEvent("Host", "send_message", `{}`),
		core.NewMessageEvent("Host", "Y"),
	}}
	b, _ := newFakeBridge(fr)

	text, err := b.RunAndGetFinalResponse(context.Background(), "hi", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Y", text)
	assert.Equal(t, 1, fr.closeCount)
}

func TestBridge_FallbackWhenNoUsableText(t *testing.T) {
	fr := &fakeRunner{events: []core.Event{
		core.NewUserMessageEvent("run-1", "user text is ignored"),
		core.NewFunctionCallEvent("Host", "send_message", `{}`),
	}}
	b, _ := newFakeBridge(fr)

	text, err := b.RunAndGetFinalResponse(context.Background(), "hi", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, FallbackResponse, text)
}

func TestBridge_FunctionResponsePayloadExtracted(t *testing.T) {
	fr := &fakeRunner{events: []core.Event{
		core.NewFunctionResponseEvent("Host", "fc-1", "send_message", map[string]any{"response": "sunny"}, nil),
	}}
	b, _ := newFakeBridge(fr)

	text, err := b.RunAndGetFinalResponse(context.Background(), "weather?", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "sunny", text)
}

func TestBridge_HistoryReplaySkipsEmptyEntries(t *testing.T) {
	fr := &fakeRunner{}
	b, store := newFakeBridge(fr)

	history := []ChatMessage{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: ""},
		{Role: "assistant", Content: "ok"},
	}

	_, err := b.RunAndGetFinalResponse(context.Background(), "next question", history, nil)
	require.NoError(t, err)

	sess, err := store.Get(fr.lastSessionID)
	require.NoError(t, err)

	events := sess.GetConversationHistory()
	require.Len(t, events, 2)
	assert.Equal(t, "user", events[0].Content.Role)
	assert.Equal(t, "user", events[0].Author)
	assert.Equal(t, "assistant", events[1].Content.Role)
	assert.Equal(t, "Host", events[1].Author)
}

func TestBridge_InitialStateSeedsSession(t *testing.T) {
	fr := &fakeRunner{}
	b, store := newFakeBridge(fr)

	md := map[string]any{stateInboundMetadata: map[string]any{metadataMessageID: "inbound-1"}}
	_, err := b.RunAndGetFinalResponse(context.Background(), "hi", nil, md)
	require.NoError(t, err)

	sess, err := store.Get(fr.lastSessionID)
	require.NoError(t, err)
	_, ok := sess.GetState(stateInboundMetadata)
	assert.True(t, ok)
}

func TestBridge_RunnerClosedOnStreamFailure(t *testing.T) {
	fr := &fakeRunner{
		events: []core.Event{core.NewMessageEvent("Host", "partial answer")},
		runErr: errors.New("model blew up"),
	}
	b, _ := newFakeBridge(fr)

	_, err := b.RunAndGetFinalResponse(context.Background(), "hi", nil, nil)
	require.Error(t, err)
	assert.Equal(t, 1, fr.closeCount)
}

func TestBridge_RunnerClosedWhenRunFailsToStart(t *testing.T) {
	fr := &fakeRunner{startErr: errors.New("runner is closed")}
	b, _ := newFakeBridge(fr)

	_, err := b.RunAndGetFinalResponse(context.Background(), "hi", nil, nil)
	require.Error(t, err)
	assert.Equal(t, 1, fr.closeCount)
}
