package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mehmetalpayy/a2a-agent-orchestrator/a2a"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/core"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/logging"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/remote"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/tool"
)

// SendMessageToolName is the capability name exposed to the decision engine.
const SendMessageToolName = "send_message"

var sendMessageParameters = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"agent_name": map[string]any{
			"type":        "string",
			"description": "Name of the remote agent to delegate the task to.",
		},
		"task": map[string]any{
			"type":        "string",
			"description": "Full task description for the remote agent, including all relevant context.",
		},
	},
	"required": []string{"agent_name", "task"},
}

// NewSendMessageTool builds the delegation capability. Given an agent name
// and a task it looks up the pooled connection, submits the task over A2A and
// returns the normalized result. A delegation attempt records the chosen
// agent in session state before the call is made, so the routing decision is
// visible on the next turn even when the call itself fails. An unknown agent
// name or a transport failure surfaces as a failed tool call; a JSON-RPC
// error envelope from the agent is logged and collapses to a nil result.
func NewSendMessageTool(manager *remote.Manager, timeout time.Duration) tool.Tool {
	fn := func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
		agentName, _ := args["agent_name"].(string)
		task, _ := args["task"].(string)

		conn, err := manager.Connection(agentName)
		if err != nil {
			return nil, err
		}

		sess := SessionFor(toolCtx)
		sess.SetActiveAgent(agentName)

		msg := a2a.Message{
			Role:      RoleUser,
			Parts:     []a2a.Part{a2a.NewTextPart(task)},
			MessageID: sess.OutboundMessageID(),
			ContextID: sess.ContextID(),
		}

		ctx := toolCtx.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		start := time.Now()
		raw, err := conn.SendMessage(ctx, msg)
		logging.LogRemoteDelegation(toolCtx.Logger(), agentName, time.Since(start), err)
		if err != nil {
			var rpcErr *a2a.RPCError
			if errors.As(err, &rpcErr) {
				toolCtx.LogWarn("host.send_message.rpc_error",
					"agent", agentName, "code", rpcErr.Code, "message", rpcErr.Message)
				return nil, nil
			}
			return nil, fmt.Errorf("send message to %s: %w", agentName, err)
		}

		toolCtx.LogDebug("host.send_message.raw_response", "agent", agentName, "bytes", len(raw))

		return ClassifyResult(raw, toolCtx.Logger()).Payload(), nil
	}

	return tool.NewFunctionTool(
		SendMessageToolName,
		"Send a task to a remote agent and return its response.",
		sendMessageParameters,
		fn,
	)
}
