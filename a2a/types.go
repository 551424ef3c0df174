package a2a

import (
	"encoding/json"
	"fmt"
)

// WellKnownCardPath is the path agents expose their card on.
const WellKnownCardPath = "/.well-known/agent.json"

// ExtendedCardPath is the path for the authenticated extended card.
const ExtendedCardPath = "/agent/authenticatedExtendedCard"

// AgentCard is a remote agent's self-advertised capability descriptor.
// Obtained once per address at discovery time and never mutated afterward.
type AgentCard struct {
	ProtocolVersion                   string            `json:"protocolVersion,omitempty"`
	Name                              string            `json:"name"`
	Description                       string            `json:"description,omitempty"`
	URL                               string            `json:"url,omitempty"`
	Version                           string            `json:"version,omitempty"`
	Capabilities                      AgentCapabilities `json:"capabilities,omitempty"`
	Skills                            []AgentSkill      `json:"skills,omitempty"`
	SupportsAuthenticatedExtendedCard bool              `json:"supportsAuthenticatedExtendedCard,omitempty"`
}

// AgentCapabilities describes optional protocol features of a remote agent.
type AgentCapabilities struct {
	Streaming              bool `json:"streaming,omitempty"`
	PushNotifications      bool `json:"pushNotifications,omitempty"`
	StateTransitionHistory bool `json:"stateTransitionHistory,omitempty"`
}

// AgentSkill describes a single capability advertised on an agent card.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Message is a conversational message exchanged with a remote agent.
// Kind is always "message".
type Message struct {
	Kind      string `json:"kind"`
	MessageID string `json:"messageId"`
	Role      string `json:"role"`
	Parts     []Part `json:"parts"`
	TaskID    string `json:"taskId,omitempty"`
	ContextID string `json:"contextId,omitempty"`
}

// Part is a single content segment of a message or artifact. Kind
// discriminates the payload ("text", "file", "data").
type Part struct {
	Kind string         `json:"kind"`
	Text string         `json:"text,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

// NewTextPart builds a text content part.
func NewTextPart(text string) Part {
	return Part{Kind: "text", Text: text}
}

// TaskState enumerates remote task lifecycle states.
type TaskState string

const (
	TaskStateSubmitted     TaskState = "submitted"
	TaskStateWorking       TaskState = "working"
	TaskStateInputRequired TaskState = "input-required"
	TaskStateCompleted     TaskState = "completed"
	TaskStateCanceled      TaskState = "canceled"
	TaskStateFailed        TaskState = "failed"
)

// TaskStatus carries the current state of a remote task plus an optional
// status message.
type TaskStatus struct {
	State     TaskState `json:"state"`
	Message   *Message  `json:"message,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
}

// Artifact is an output produced by a remote task.
type Artifact struct {
	ArtifactID string `json:"artifactId"`
	Name       string `json:"name,omitempty"`
	Parts      []Part `json:"parts"`
}

// Task represents a long-lived unit of remote work. Kind is always "task".
type Task struct {
	Kind      string     `json:"kind"`
	ID        string     `json:"id"`
	ContextID string     `json:"contextId,omitempty"`
	Status    TaskStatus `json:"status"`
	Artifacts []Artifact `json:"artifacts,omitempty"`
	History   []Message  `json:"history,omitempty"`
}

// MessageSendParams is the params payload of a "message/send" request.
type MessageSendParams struct {
	Message Message `json:"message"`
}

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response envelope. Result is kept raw so the
// caller can discriminate on the embedded "kind" field.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object. It implements error so callers
// can distinguish protocol-level failures from transport failures with
// errors.As.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}
