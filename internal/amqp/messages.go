package amqp

import (
	"encoding/json"
	"time"
)

// TaskEventMessage notifies external consumers about import job
// lifecycle transitions: started, per-city progress, completed, failed.
type TaskEventMessage struct {
	TaskID    string    `json:"task_id"`
	State     string    `json:"state"`
	City      string    `json:"city,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTaskEventMessage(taskID, state, city string) *TaskEventMessage {
	return &TaskEventMessage{
		TaskID:    taskID,
		State:     state,
		City:      city,
		Timestamp: time.Now(),
	}
}

func (m *TaskEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TaskEventMessageFromJSON(data []byte) (*TaskEventMessage, error) {
	var msg TaskEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
