package host

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehmetalpayy/a2a-agent-orchestrator/logging"
)

func TestClassifyResult_MessageJoinsNonEmptyTextParts(t *testing.T) {
	raw := json.RawMessage(`{
		"kind": "message",
		"messageId": "m-1",
		"role": "agent",
		"parts": [
			{"kind": "text", "text": "A"},
			{"kind": "text", "text": ""},
			{"kind": "text", "text": "B"}
		]
	}`)

	result := ClassifyResult(raw, logging.NoOpLogger{})
	assert.Equal(t, ResultText, result.Kind)
	assert.Equal(t, "A\nB", result.Text)
	assert.Equal(t, map[string]any{"response": "A\nB"}, result.Payload())
}

func TestClassifyResult_MessageWithOnlyEmptyPartsIsNone(t *testing.T) {
	raw := json.RawMessage(`{"kind": "message", "parts": [{"kind": "text", "text": ""}]}`)

	result := ClassifyResult(raw, logging.NoOpLogger{})
	assert.Equal(t, ResultNone, result.Kind)
	assert.Nil(t, result.Payload())
}

func TestClassifyResult_Task(t *testing.T) {
	raw := json.RawMessage(`{
		"kind": "task",
		"id": "task-9",
		"contextId": "ctx-1",
		"status": {"state": "working"}
	}`)

	result := ClassifyResult(raw, logging.NoOpLogger{})
	require.Equal(t, ResultTask, result.Kind)
	require.NotNil(t, result.Task)
	assert.Equal(t, "task-9", result.Task.ID)
	assert.Same(t, result.Task, result.Payload())
}

func TestClassifyResult_UnrecognizedKindIsNone(t *testing.T) {
	result := ClassifyResult(json.RawMessage(`{"kind": "status-update"}`), logging.NoOpLogger{})
	assert.Equal(t, ResultNone, result.Kind)
}

func TestClassifyResult_MalformedPayloadIsNone(t *testing.T) {
	assert.Equal(t, ResultNone, ClassifyResult(json.RawMessage(`{not json`), logging.NoOpLogger{}).Kind)
	assert.Equal(t, ResultNone, ClassifyResult(nil, logging.NoOpLogger{}).Kind)
}
