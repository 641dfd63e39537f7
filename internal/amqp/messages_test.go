package amqp

import (
	"testing"
	"time"
)

func TestTaskEventMessage_JSONRoundTrip(t *testing.T) {
	msg := NewTaskEventMessage("task-42", "processing", "Балашиха")

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	back, err := TaskEventMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if back.TaskID != "task-42" || back.State != "processing" || back.City != "Балашиха" {
		t.Errorf("round trip lost fields: %+v", back)
	}
	if back.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
	if time.Since(back.Timestamp) > time.Minute {
		t.Errorf("timestamp unexpectedly old: %v", back.Timestamp)
	}
}

func TestTaskEventMessageFromJSON_Invalid(t *testing.T) {
	if _, err := TaskEventMessageFromJSON([]byte("{not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
