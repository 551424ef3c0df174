package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehmetalpayy/a2a-agent-orchestrator/core"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/session"
)

// echoAgent emits a single assistant message derived from the user content.
type echoAgent struct {
	name string
	err  error
}

func (a *echoAgent) Name() string        { return a.name }
func (a *echoAgent) Description() string { return "echoes input" }

func (a *echoAgent) Run(runCtx *core.RunContext) error {
	if a.err != nil {
		return a.err
	}

	var text string
	for _, p := range runCtx.UserContent.Parts {
		if tp, ok := p.(core.TextPart); ok {
			text += tp.Text
		}
	}

	ev := core.NewMessageEvent(a.name, "echo: "+text)
	ev.RunID = runCtx.RunID
	return runCtx.EmitEvent(ev)
}

// stateAgent emits an event carrying a state delta.
type stateAgent struct{}

func (a *stateAgent) Name() string        { return "state" }
func (a *stateAgent) Description() string { return "sets state" }

func (a *stateAgent) Run(runCtx *core.RunContext) error {
	ev := core.NewMessageEvent(a.Name(), "updated")
	ev.RunID = runCtx.RunID
	ev.Actions.StateDelta = map[string]any{"active_agent": "weather"}
	return runCtx.EmitEvent(ev)
}

func userText(t string) core.Content {
	return core.Content{Role: "user", Parts: []core.Part{core.TextPart{Text: t}}}
}

func collect(t *testing.T, eventsCh <-chan core.Event, errorsCh <-chan error) ([]core.Event, error) {
	t.Helper()

	var events []core.Event
	for ev := range eventsCh {
		events = append(events, ev)
	}
	return events, <-errorsCh
}

func TestRunner_RunDeliversEventsAndPersists(t *testing.T) {
	store := session.NewInMemoryStore()
	r := New(&echoAgent{name: "Echo"}, func(o *Options) { o.SessionStore = store })

	runID, eventsCh, errorsCh, err := r.Run(context.Background(), "sess-1", userText("hi"))
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	events, runErr := collect(t, eventsCh, errorsCh)
	require.NoError(t, runErr)
	require.Len(t, events, 1)
	assert.Equal(t, "Echo", events[0].Author)

	sess, err := store.Get("sess-1")
	require.NoError(t, err)
	// user event + assistant event
	assert.Len(t, sess.GetEvents(), 2)
}

func TestRunner_AgentErrorSurfacesOnErrorChannel(t *testing.T) {
	r := New(&echoAgent{name: "Bad", err: errors.New("boom")})

	_, eventsCh, errorsCh, err := r.Run(context.Background(), "sess-1", userText("hi"))
	require.NoError(t, err)

	_, runErr := collect(t, eventsCh, errorsCh)
	require.Error(t, runErr)
	assert.Contains(t, runErr.Error(), "boom")
}

func TestRunner_StateDeltaApplied(t *testing.T) {
	store := session.NewInMemoryStore()
	r := New(&stateAgent{}, func(o *Options) { o.SessionStore = store })

	_, eventsCh, errorsCh, err := r.Run(context.Background(), "sess-1", userText("go"))
	require.NoError(t, err)
	_, runErr := collect(t, eventsCh, errorsCh)
	require.NoError(t, runErr)

	sess, err := store.Get("sess-1")
	require.NoError(t, err)
	v, ok := sess.GetState("active_agent")
	require.True(t, ok)
	assert.Equal(t, "weather", v)
}

func TestRunner_CancelUnknownRun(t *testing.T) {
	r := New(&echoAgent{name: "Echo"})
	assert.Error(t, r.Cancel("does-not-exist"))
}

func TestRunner_CloseIsIdempotent(t *testing.T) {
	r := New(&echoAgent{name: "Echo"})

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	done := make(chan struct{})
	go func() {
		_ = r.Close()
		_ = r.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("concurrent Close deadlocked")
	}

	_, _, _, err := r.Run(context.Background(), "sess-1", userText("hi"))
	assert.Error(t, err)
}
