package core

import (
	"errors"
	"testing"
)

func TestEvent_FunctionCallsAndResponses(t *testing.T) {
	ev := NewFunctionCallEvent("host", "send_message", `{"agent_name":"weather"}`)

	calls := ev.GetFunctionCalls()
	if len(calls) != 1 || calls[0].Name != "send_message" {
		t.Fatalf("expected one send_message call, got %+v", calls)
	}
	if ev.IsFinalResponse() {
		t.Error("event with pending function call must not be final")
	}

	resp := NewFunctionResponseEvent("host", "fc-1", "send_message", map[string]any{"response": "ok"}, nil)
	responses := resp.GetFunctionResponses()
	if len(responses) != 1 || responses[0].Name != "send_message" {
		t.Fatalf("expected one response, got %+v", responses)
	}
	if responses[0].Error != "" {
		t.Errorf("unexpected error on success: %q", responses[0].Error)
	}

	failed := NewFunctionResponseEvent("host", "fc-2", "send_message", nil, errors.New("boom"))
	if failed.GetFunctionResponses()[0].Error != "boom" {
		t.Error("error message should be carried into the response")
	}
}

func TestEvent_IsFinalResponse(t *testing.T) {
	msg := NewMessageEvent("host", "done")
	if !msg.IsFinalResponse() {
		t.Error("plain assistant message should be final")
	}

	partial := true
	msg.Partial = &partial
	if msg.IsFinalResponse() {
		t.Error("partial events are never final")
	}
}

func TestNewHistoryEvent(t *testing.T) {
	ev := NewHistoryEvent("weather", "assistant", "sunny")
	if ev.Author != "weather" {
		t.Errorf("author = %q, want weather", ev.Author)
	}
	if ev.Content == nil || ev.Content.Role != "assistant" {
		t.Fatalf("unexpected content: %+v", ev.Content)
	}
	if tp, ok := ev.Content.Parts[0].(TextPart); !ok || tp.Text != "sunny" {
		t.Errorf("unexpected part: %+v", ev.Content.Parts[0])
	}
}

func TestModelLimiter(t *testing.T) {
	ml := NewModelLimiter(2)
	if err := ml.Increment(); err != nil {
		t.Fatal(err)
	}
	if err := ml.Increment(); err != nil {
		t.Fatal(err)
	}
	if err := ml.Increment(); err == nil {
		t.Error("expected limit error on third call")
	}

	unlimited := NewModelLimiter(0)
	for i := 0; i < 10; i++ {
		if err := unlimited.Increment(); err != nil {
			t.Fatalf("unlimited limiter errored: %v", err)
		}
	}
	if unlimited.Remaining() != -1 {
		t.Error("unlimited limiter should report -1 remaining")
	}
}
