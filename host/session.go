package host

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Conversation participant roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session state keys used to thread routing decisions between turns.
const (
	stateSessionID       = "session_id"
	stateSessionActive   = "session_active"
	stateActiveAgent     = "active_agent"
	stateContextID       = "context_id"
	stateInboundMetadata = "input_message_metadata"

	metadataMessageID = "message_id"
)

// ContentBlock is a single typed payload inside a conversation message.
type ContentBlock struct {
	Text string `json:"text"`
}

// ConversationMessage is one turn of a host-level conversation as exchanged
// with callers of ProcessRequest.
type ConversationMessage struct {
	ID        string         `json:"id"`
	Role      string         `json:"role"`
	Content   []ContentBlock `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewConversationMessage builds a message with a single text block.
func NewConversationMessage(role, text string) ConversationMessage {
	return ConversationMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   []ContentBlock{{Text: text}},
		CreatedAt: time.Now().UTC(),
	}
}

// Text returns the primary text payload, or "" when the message is empty.
func (m ConversationMessage) Text() string {
	if len(m.Content) == 0 {
		return ""
	}
	return m.Content[0].Text
}

// ChatMessage is a flattened role/content pair produced by PrepareChatHistory
// for replay into the decision engine.
type ChatMessage struct {
	Role    string
	Content string
}

// PrepareChatHistory folds conversation messages into role/content pairs.
// Any role other than "user" maps to "assistant"; a message with no content
// blocks yields empty content.
func PrepareChatHistory(history []ConversationMessage) []ChatMessage {
	messages := make([]ChatMessage, 0, len(history))
	for _, msg := range history {
		role := RoleAssistant
		if msg.Role == RoleUser {
			role = RoleUser
		}
		messages = append(messages, ChatMessage{Role: role, Content: msg.Text()})
	}
	return messages
}

// TemplateVariables maps placeholder names to string or []string values.
type TemplateVariables map[string]any

var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// ReplacePlaceholders substitutes {{key}} placeholders in template using the
// provided variables. List values are joined with newlines. An unknown
// placeholder is left verbatim, so substitution never fails and is idempotent
// for placeholder-free inputs.
func ReplacePlaceholders(template string, variables TemplateVariables) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholderRe.FindStringSubmatch(match)[1]

		value, ok := variables[key]
		if !ok || value == nil {
			return match
		}

		switch v := value.(type) {
		case string:
			return v
		case []string:
			return strings.Join(v, "\n")
		default:
			return fmt.Sprintf("%v", v)
		}
	})
}
