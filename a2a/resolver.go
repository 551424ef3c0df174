package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mehmetalpayy/a2a-agent-orchestrator/logging"
)

// ResolverOptions configure a CardResolver.
type ResolverOptions struct {
	Timeout    time.Duration
	HTTPClient *http.Client
	Auth       *AuthCredentials
	Logger     logging.Logger
}

// AuthCredentials contains authentication information attached to requests.
type AuthCredentials struct {
	Type         string // "bearer", "apiKey"
	Token        string
	APIKey       string
	APIKeyHeader string // Header name for API key (default: "X-API-Key")
}

// CardResolver fetches agent cards from remote agent base addresses. When the
// base card advertises an authenticated extended card, the resolver attempts
// to upgrade to it; a failed upgrade keeps the base card valid.
type CardResolver struct {
	httpClient *http.Client
	auth       *AuthCredentials
	logger     logging.Logger
}

// NewCardResolver creates a resolver with a bounded request timeout.
func NewCardResolver(optFns ...func(o *ResolverOptions)) *CardResolver {
	opts := ResolverOptions{
		Timeout: 30 * time.Second,
		Logger:  logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &CardResolver{
		httpClient: httpClient,
		auth:       opts.Auth,
		logger:     opts.Logger,
	}
}

// Resolve fetches the agent card advertised at address. It returns a
// *DiscoveryError on network failure, non-200 status or a malformed payload.
func (r *CardResolver) Resolve(ctx context.Context, address string) (*AgentCard, error) {
	base := strings.TrimRight(address, "/")

	card, err := r.fetchCard(ctx, base+WellKnownCardPath)
	if err != nil {
		return nil, NewDiscoveryError(address, err)
	}

	if card.SupportsAuthenticatedExtendedCard {
		extended, err := r.fetchCard(ctx, base+ExtendedCardPath)
		if err != nil {
			// Extended card failure never aborts discovery.
			r.logger.Warn("a2a.resolve.extended_card_failed", "address", address, "error", err.Error())
		} else {
			card = extended
		}
	}

	if card.Name == "" {
		return nil, NewDiscoveryError(address, fmt.Errorf("agent card has no name"))
	}

	if card.URL == "" {
		card.URL = address
	}

	return card, nil
}

func (r *CardResolver) fetchCard(ctx context.Context, url string) (*AgentCard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	setAuthHeaders(req, r.auth)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch agent card: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get agent card: %s - %s", resp.Status, string(body))
	}

	var card AgentCard
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return nil, fmt.Errorf("failed to decode agent card: %w", err)
	}

	return &card, nil
}

func setAuthHeaders(req *http.Request, auth *AuthCredentials) {
	if auth == nil {
		return
	}

	switch auth.Type {
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+auth.Token)
	case "apiKey":
		header := auth.APIKeyHeader
		if header == "" {
			header = "X-API-Key"
		}
		req.Header.Set(header, auth.APIKey)
	}
}
