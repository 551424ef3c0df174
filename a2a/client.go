package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// MethodMessageSend is the JSON-RPC method for submitting a message.
const MethodMessageSend = "message/send"

// ClientOptions configure the A2A client.
type ClientOptions struct {
	Timeout    time.Duration
	HTTPClient *http.Client
	Auth       *AuthCredentials
}

// Client is an A2A protocol client for calling remote agents over JSON-RPC.
type Client struct {
	httpClient *http.Client
	auth       *AuthCredentials
}

// NewClient creates a new A2A protocol client with a bounded request timeout.
func NewClient(optFns ...func(o *ClientOptions)) *Client {
	opts := ClientOptions{
		Timeout: 60 * time.Second,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		httpClient: httpClient,
		auth:       opts.Auth,
	}
}

// SendMessage submits a message to the agent at agentURL via the
// "message/send" JSON-RPC method. The raw result is returned so callers can
// discriminate on its "kind" field ("task" or "message"). An error envelope
// in the response comes back as *RPCError; transport and decoding failures
// come back as wrapped errors.
func (c *Client) SendMessage(ctx context.Context, agentURL string, msg Message) (json.RawMessage, error) {
	msg.Kind = "message"
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}

	rpcReq := Request{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  MethodMessageSend,
		Params:  MessageSendParams{Message: msg},
	}

	body, err := json.Marshal(rpcReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, agentURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setAuthHeaders(req, c.auth)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("message send failed: %s - %s", resp.Status, string(respBody))
	}

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}

	return rpcResp.Result, nil
}
