package remote

import "fmt"

// UnknownAgentError indicates a delegation attempt to an agent name not
// present in the connection pool.
type UnknownAgentError struct {
	Name string
}

func (e *UnknownAgentError) Error() string {
	return fmt.Sprintf("agent connection for %q not found", e.Name)
}
