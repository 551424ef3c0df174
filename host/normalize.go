package host

import (
	"encoding/json"
	"strings"

	"github.com/mehmetalpayy/a2a-agent-orchestrator/a2a"
	"github.com/mehmetalpayy/a2a-agent-orchestrator/logging"
)

// ResultKind discriminates the variants of a normalized remote response.
type ResultKind string

const (
	// ResultNone means the response carried nothing usable. Malformed or
	// unrecognized payloads map here instead of failing.
	ResultNone ResultKind = "none"
	// ResultTask is a long-lived task handle returned as-is.
	ResultTask ResultKind = "task"
	// ResultText is the concatenated text of a terminal message.
	ResultText ResultKind = "text"
)

// RemoteResult is the tagged union produced by classifying a raw remote
// response. Exactly the field matching Kind is populated.
type RemoteResult struct {
	Kind ResultKind
	Task *a2a.Task
	Text string
}

// Payload converts the result to the value handed back to the decision
// engine: the task handle itself, a {"response": text} map, or nil.
func (r RemoteResult) Payload() any {
	switch r.Kind {
	case ResultTask:
		return r.Task
	case ResultText:
		return map[string]any{"response": r.Text}
	default:
		return nil
	}
}

// ClassifyResult inspects the kind discriminator of a raw JSON-RPC result and
// normalizes it into a RemoteResult. It never fails: empty payloads, unknown
// kinds and parse errors are logged and collapse to ResultNone.
func ClassifyResult(raw json.RawMessage, logger logging.Logger) RemoteResult {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	if len(raw) == 0 {
		logger.Warn("host.normalize.empty_result")
		return RemoteResult{Kind: ResultNone}
	}

	var envelope struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		logger.Error("host.normalize.parse_failed", "error", err.Error())
		return RemoteResult{Kind: ResultNone}
	}

	switch envelope.Kind {
	case "task":
		var task a2a.Task
		if err := json.Unmarshal(raw, &task); err != nil {
			logger.Error("host.normalize.task_parse_failed", "error", err.Error())
			return RemoteResult{Kind: ResultNone}
		}
		return RemoteResult{Kind: ResultTask, Task: &task}

	case "message":
		var msg a2a.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.Error("host.normalize.message_parse_failed", "error", err.Error())
			return RemoteResult{Kind: ResultNone}
		}

		texts := make([]string, 0, len(msg.Parts))
		for _, part := range msg.Parts {
			if part.Kind == "text" && part.Text != "" {
				texts = append(texts, part.Text)
			}
		}

		if text := strings.Join(texts, "\n"); text != "" {
			return RemoteResult{Kind: ResultText, Text: text}
		}

		logger.Warn("host.normalize.empty_message")
		return RemoteResult{Kind: ResultNone}

	default:
		logger.Warn("host.normalize.unrecognized_kind", "kind", envelope.Kind)
		return RemoteResult{Kind: ResultNone}
	}
}
