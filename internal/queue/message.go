package queue

import (
	"encoding/json"
	"fmt"
)

// CurrentVersion is the payload version written by this build.
const CurrentVersion = 1

// Message is an email notification handed to the notification worker.
type Message struct {
	ID         string   `json:"id"`
	To         []string `json:"to"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	RequestID  string   `json:"requestId,omitempty"`
	EnqueuedAt string   `json:"enqueuedAt"`
	Version    int      `json:"version"`
}

func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a queue payload. Payloads from a newer producer are
// rejected so they stay on the queue for a worker that understands them.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.Version > CurrentVersion {
		return Message{}, fmt.Errorf("unsupported message version %d", msg.Version)
	}
	return msg, nil
}
