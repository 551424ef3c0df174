package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehmetalpayy/a2a-agent-orchestrator/core"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/internal/testutil"
)

func TestInMemoryStore_GetCreatesLazily(t *testing.T) {
	store := NewInMemoryStore()

	sess, err := store.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", sess.ID)
	assert.Empty(t, sess.GetEvents())
}

func TestInMemoryStore_AppendEventAndDelta(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Create("s1")
	require.NoError(t, err)

	require.NoError(t, store.AppendEvent("s1", core.NewUserMessageEvent("run-1", "hi")))
	require.NoError(t, store.ApplyDelta("s1", map[string]interface{}{"active_agent": "weather"}))

	sess, err := store.Get("s1")
	require.NoError(t, err)

	events := sess.GetEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "user", events[0].Content.Role)

	v, ok := sess.GetState("active_agent")
	require.True(t, ok)
	assert.Equal(t, "weather", v)
}

func TestInMemoryStore_RoundTripsToolEvents(t *testing.T) {
	store := NewInMemoryStore()

	ev := testutil.NewEventBuilder().
		Author("Host").
		Run("run-1").
		FunctionResponse("fc-1", "send_message", map[string]any{"response": "sunny"}, nil).
		StateDelta("active_agent", "weather").
		Build()

	require.NoError(t, store.AppendEvent("s1", ev))
	require.NoError(t, store.ApplyDelta("s1", ev.Actions.StateDelta))

	sess, err := store.Get("s1")
	require.NoError(t, err)

	events := sess.GetEvents()
	require.Len(t, events, 1)
	responses := events[0].GetFunctionResponses()
	require.Len(t, responses, 1)
	assert.Equal(t, "send_message", responses[0].Name)

	v, ok := sess.GetState("active_agent")
	require.True(t, ok)
	assert.Equal(t, "weather", v)
}

func TestInMemoryStore_GetReturnsClone(t *testing.T) {
	store := NewInMemoryStore()

	first, err := store.Get("s1")
	require.NoError(t, err)
	first.SetState("x", 1)

	second, err := store.Get("s1")
	require.NoError(t, err)
	_, ok := second.GetState("x")
	assert.False(t, ok, "mutating a returned clone must not touch the stored session")
}
