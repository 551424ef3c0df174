package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplacePlaceholders(t *testing.T) {
	vars := TemplateVariables{
		"name":   "weather",
		"skills": []string{"forecast", "alerts"},
	}

	out := ReplacePlaceholders("agent {{name}} does:\n{{skills}}", vars)
	assert.Equal(t, "agent weather does:\nforecast\nalerts", out)
}

func TestReplacePlaceholders_UnknownLeftVerbatim(t *testing.T) {
	assert.Equal(t, "hello {{x}}", ReplacePlaceholders("hello {{x}}", TemplateVariables{}))
	assert.Equal(t, "hello {{x}}", ReplacePlaceholders("hello {{x}}", nil))
}

func TestReplacePlaceholders_IdempotentWithoutPlaceholders(t *testing.T) {
	in := "plain text with {single} braces"
	assert.Equal(t, in, ReplacePlaceholders(in, TemplateVariables{"single": "nope"}))
}

func TestPrepareChatHistory_RoleFolding(t *testing.T) {
	history := []ConversationMessage{
		NewConversationMessage(RoleUser, "hi"),
		NewConversationMessage(RoleAssistant, "hello"),
		NewConversationMessage("tool", "ignored role"),
		{Role: RoleUser},
	}

	msgs := PrepareChatHistory(history)
	require.Len(t, msgs, 4)
	assert.Equal(t, ChatMessage{Role: "user", Content: "hi"}, msgs[0])
	assert.Equal(t, ChatMessage{Role: "assistant", Content: "hello"}, msgs[1])
	assert.Equal(t, "assistant", msgs[2].Role)
	assert.Equal(t, "", msgs[3].Content)
}

func TestConversationMessage_Text(t *testing.T) {
	msg := NewConversationMessage(RoleAssistant, "final answer")
	assert.Equal(t, "final answer", msg.Text())
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())

	assert.Equal(t, "", ConversationMessage{}.Text())
}
