package remote

import (
	"context"
	"encoding/json"

	"github.com/mehmetalpayy/a2a-agent-orchestrator/a2a"
)

// Connection binds a resolved agent card to a live transport handle. One
// connection exists per discovered agent name; connections are created during
// initialization and live for the process lifetime.
type Connection struct {
	Card     *a2a.AgentCard
	AgentURL string

	client *a2a.Client
}

// NewConnection builds a connection for the given card and base address.
func NewConnection(card *a2a.AgentCard, agentURL string, client *a2a.Client) *Connection {
	if client == nil {
		client = a2a.NewClient()
	}
	return &Connection{Card: card, AgentURL: agentURL, client: client}
}

// Name returns the agent name the connection is keyed by.
func (c *Connection) Name() string { return c.Card.Name }

// SendMessage submits a message to the remote agent and returns the raw
// JSON-RPC result for downstream classification.
func (c *Connection) SendMessage(ctx context.Context, msg a2a.Message) (json.RawMessage, error) {
	url := c.Card.URL
	if url == "" {
		url = c.AgentURL
	}
	return c.client.SendMessage(ctx, url, msg)
}
