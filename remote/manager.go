package remote

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/mehmetalpayy/a2a-agent-orchestrator/a2a"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/logging"
)

// NoAgentsAvailable is the catalog sentinel returned when discovery yielded
// no usable remote agents.
const NoAgentsAvailable = "No remote agents available."

// AgentDetail is a compact card view used in routing prompts.
type AgentDetail struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ManagerOptions configure a Manager.
type ManagerOptions struct {
	Resolver *a2a.CardResolver
	Client   *a2a.Client
	Logger   logging.Logger
}

// Manager orchestrates discovery of remote agents and owns the resulting
// connection pool. Discovery is best-effort: a failure for one address is
// logged and skipped without aborting the rest. After Initialize completes
// the pool is read-only.
type Manager struct {
	addresses []string
	resolver  *a2a.CardResolver
	client    *a2a.Client
	logger    logging.Logger

	initOnce sync.Once

	mu    sync.RWMutex
	conns map[string]*Connection
	order []string // registration order of agent names
	ready bool
}

// NewManager creates a manager for the given ordered agent addresses.
func NewManager(addresses []string, optFns ...func(o *ManagerOptions)) *Manager {
	opts := ManagerOptions{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Resolver == nil {
		opts.Resolver = a2a.NewCardResolver()
	}
	if opts.Client == nil {
		opts.Client = a2a.NewClient()
	}

	return &Manager{
		addresses: addresses,
		resolver:  opts.Resolver,
		client:    opts.Client,
		logger:    opts.Logger,
		conns:     make(map[string]*Connection),
	}
}

// Ready reports whether initialization has completed.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready
}

// Initialize resolves cards for all configured addresses concurrently and
// registers one connection per discovered agent name. Per-address failures
// are isolated. Duplicate agent names across addresses resolve
// last-address-wins. Discovery runs exactly once; concurrent and repeated
// calls wait for it and then return.
func (m *Manager) Initialize(ctx context.Context) error {
	m.initOnce.Do(func() { m.discover(ctx) })
	return nil
}

func (m *Manager) discover(ctx context.Context) {
	defer logging.StartTimer(m.logger, "remote.discovery")()

	m.logger.Info("remote.initialize.start", "addresses", strings.Join(m.addresses, ","))

	cards := make([]*a2a.AgentCard, len(m.addresses))

	var wg sync.WaitGroup
	for i, address := range m.addresses {
		wg.Add(1)
		go func(idx int, addr string) {
			defer wg.Done()

			card, err := m.resolver.Resolve(ctx, addr)
			if err != nil {
				m.logger.Warn("remote.initialize.address_failed", "address", addr, "error", err.Error())
				return
			}

			m.logger.Info("remote.initialize.card_resolved", "address", addr, "agent", card.Name)
			cards[idx] = card
		}(i, address)
	}
	wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Register sequentially in address order so duplicate names are
	// deterministic (last address wins) and the catalog order is stable.
	for i, card := range cards {
		if card == nil {
			continue
		}
		if _, exists := m.conns[card.Name]; !exists {
			m.order = append(m.order, card.Name)
		}
		m.conns[card.Name] = NewConnection(card, m.addresses[i], m.client)
	}

	m.ready = true
	m.logger.Info("remote.initialize.complete", "agents", len(m.conns))
}

// Connection retrieves the active connection for a given agent name. It
// returns *UnknownAgentError when the name was never discovered.
func (m *Manager) Connection(agentName string) (*Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conn, ok := m.conns[agentName]
	if !ok {
		return nil, &UnknownAgentError{Name: agentName}
	}
	return conn, nil
}

// AgentNames returns discovered agent names in registration order.
func (m *Manager) AgentNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.order))
	copy(names, m.order)
	return names
}

// AgentDetails returns name/description pairs for each available agent in
// registration order.
func (m *Manager) AgentDetails() []AgentDetail {
	m.mu.RLock()
	defer m.mu.RUnlock()

	details := make([]AgentDetail, 0, len(m.order))
	for _, name := range m.order {
		conn := m.conns[name]
		details = append(details, AgentDetail{
			Name:        conn.Card.Name,
			Description: conn.Card.Description,
		})
	}
	return details
}

// CatalogPrompt generates a formatted string of all available agents for the
// system prompt, one JSON object per line. With no agents it returns the
// NoAgentsAvailable sentinel.
func (m *Manager) CatalogPrompt() string {
	details := m.AgentDetails()
	if len(details) == 0 {
		return NoAgentsAvailable
	}

	lines := make([]string, 0, len(details))
	for _, d := range details {
		b, err := json.Marshal(d)
		if err != nil {
			continue
		}
		lines = append(lines, string(b))
	}
	return strings.Join(lines, "\n")
}

// FormattedDetails returns a comma-separated human-readable summary like
// "Agent1 (Desc1), Agent2 (Desc2)". The second return is false when no
// agents are available.
func (m *Manager) FormattedDetails() (string, bool) {
	details := m.AgentDetails()
	if len(details) == 0 {
		return "", false
	}

	parts := make([]string, 0, len(details))
	for _, d := range details {
		parts = append(parts, d.Name+" ("+d.Description+")")
	}
	return strings.Join(parts, ", "), true
}
