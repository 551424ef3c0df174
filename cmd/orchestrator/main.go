// Command orchestrator runs the routing host as an interactive CLI. It
// discovers the configured remote A2A agents at startup and routes each typed
// request through the LLM decision loop.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/mehmetalpayy/a2a-agent-orchestrator/a2a"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/config"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/host"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/logging"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/model"
	anthropicmodel "github.com/mehmetalpayy/a2a-agent-orchestrator/model/anthropic"
	openaimodel "github.com/mehmetalpayy/a2a-agent-orchestrator/model/openai"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/remote"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewSlogLogger(logging.ParseLogLevel(cfg.Log.Level), cfg.Log.Format, false).
		WithComponent("orchestrator")

	llm, err := buildModel(cfg)
	if err != nil {
		return err
	}

	auth := buildAuth(cfg)
	manager := remote.NewManager(cfg.RemoteAgentURLs, func(o *remote.ManagerOptions) {
		o.Logger = logger
		o.Resolver = a2a.NewCardResolver(func(ro *a2a.ResolverOptions) {
			ro.Timeout = cfg.DiscoveryTimeout
			ro.Logger = logger
			ro.Auth = auth
		})
		o.Client = a2a.NewClient(func(co *a2a.ClientOptions) {
			co.Timeout = cfg.TaskTimeout
			co.Auth = auth
		})
	})

	h := host.New(cfg.HostName, llm, manager, func(o *host.Options) {
		o.Description = cfg.HostDescription
		o.TaskTimeout = cfg.TaskTimeout
		o.Logger = logger
	})

	if err := h.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize host: %w", err)
	}

	fmt.Println(h.RemoteAgentsDescription())
	fmt.Println("Type 'exit' to quit.")

	return repl(ctx, h)
}

// repl reads user input line by line and prints each routed response,
// carrying the conversation history across turns.
func repl(ctx context.Context, h *host.Host) error {
	var history []host.ConversationMessage

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return nil
		}

		response, err := h.ProcessRequest(ctx, input, history)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		history = append(history, host.NewConversationMessage(host.RoleUser, input))
		history = append(history, response)

		fmt.Println(response.Text())
	}
}

// buildAuth converts configured credentials to A2A request credentials, or
// nil when none are set.
func buildAuth(cfg *config.Config) *a2a.AuthCredentials {
	if !cfg.Auth.Enabled() {
		return nil
	}
	if cfg.Auth.Token != "" {
		return &a2a.AuthCredentials{Type: "bearer", Token: cfg.Auth.Token}
	}
	return &a2a.AuthCredentials{
		Type:         "apiKey",
		APIKey:       cfg.Auth.APIKey,
		APIKeyHeader: cfg.Auth.APIKeyHeader,
	}
}

// buildModel constructs the configured provider adapter. Credentials are read
// by each SDK from its standard environment variables.
func buildModel(cfg *config.Config) (model.Model, error) {
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			o.Model = cfg.LLM.Model
			o.Temperature = cfg.LLM.Temperature
			o.MaxCompletionTokens = cfg.LLM.MaxTokens
		}), nil
	case config.ProviderAnthropic:
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			o.Model = anthropicsdk.Model(cfg.LLM.Model)
			o.Temperature = cfg.LLM.Temperature
			o.MaxTokens = cfg.LLM.MaxTokens
		}), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLM.Provider)
	}
}
