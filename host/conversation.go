package host

import (
	"fmt"

	"github.com/google/uuid"
)

// NoActiveAgent is the catalog value shown while no delegation has happened.
const NoActiveAgent = "None"

// stateAccessor is the minimal state surface ConversationSession needs. Both
// *core.RunContext and *core.ToolContext satisfy it.
type stateAccessor interface {
	GetState(key string) (any, bool)
	SetState(key string, value any)
}

// ConversationSession is a typed view over run-scoped routing state. All
// reads and writes of session id, activity flag, active agent and context id
// go through its named methods; host code never touches the state keys
// directly.
type ConversationSession struct {
	state stateAccessor
}

// SessionFor wraps the given run or tool context in a ConversationSession.
func SessionFor(state stateAccessor) ConversationSession {
	return ConversationSession{state: state}
}

// ID returns the session id, or "" before activation.
func (s ConversationSession) ID() string {
	if v, ok := s.state.GetState(stateSessionID); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// IsActive reports whether the session has been activated.
func (s ConversationSession) IsActive() bool {
	v, ok := s.state.GetState(stateSessionActive)
	if !ok {
		return false
	}
	active, _ := v.(bool)
	return active
}

// Activate marks the session active, minting a session id if none exists
// yet, and returns the id. Safe to call repeatedly.
func (s ConversationSession) Activate() string {
	if s.IsActive() {
		return s.ID()
	}

	if s.ID() == "" {
		s.state.SetState(stateSessionID, uuid.NewString())
	}
	s.state.SetState(stateSessionActive, true)

	return s.ID()
}

// SetActiveAgent records the routing decision for subsequent turns.
func (s ConversationSession) SetActiveAgent(agentName string) {
	s.state.SetState(stateActiveAgent, agentName)
}

// ActiveAgent returns the recorded routing target of an active session, or
// NoActiveAgent when the session is inactive or no delegation happened yet.
func (s ConversationSession) ActiveAgent() string {
	if s.ID() == "" || !s.IsActive() {
		return NoActiveAgent
	}

	v, ok := s.state.GetState(stateActiveAgent)
	if !ok {
		return NoActiveAgent
	}
	return fmt.Sprintf("%v", v)
}

// ContextID returns the session-scoped A2A context id, minting it once on
// first use so all delegations of a session share one context.
func (s ConversationSession) ContextID() string {
	if v, ok := s.state.GetState(stateContextID); ok {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}

	contextID := uuid.NewString()
	s.state.SetState(stateContextID, contextID)
	return contextID
}

// OutboundMessageID reuses the inbound message id when call metadata carries
// one and mints a fresh id otherwise.
func (s ConversationSession) OutboundMessageID() string {
	if v, ok := s.state.GetState(stateInboundMetadata); ok {
		if md, ok := v.(map[string]any); ok {
			if id, ok := md[metadataMessageID].(string); ok && id != "" {
				return id
			}
		}
	}
	return uuid.NewString()
}
