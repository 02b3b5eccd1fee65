package kafka

import (
	"encoding/json"
	"time"

	"github.com/timberline/cedar/pkg/models"
)

// SubmissionMessage is the payload consumed from the intake topic: one
// submission to match, referencing the persisted record.
type SubmissionMessage struct {
	SubmissionID string            `json:"submission_id"`
	Step         int               `json:"step"`
	Submission   models.Submission `json:"submission"`
	UserID       string            `json:"user_id,omitempty"`
}

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// Parsed content
	Submission *SubmissionMessage
}

// ParseSubmission parses the message value as a submission message
func (m *IncomingMessage) ParseSubmission() error {
	var msg SubmissionMessage
	if err := json.Unmarshal(m.Value, &msg); err != nil {
		return err
	}
	m.Submission = &msg
	return nil
}

// GetSubmissionID returns the submission ID, falling back to the message key.
func (m *IncomingMessage) GetSubmissionID() string {
	if m.Submission != nil && m.Submission.SubmissionID != "" {
		return m.Submission.SubmissionID
	}
	return m.Key
}
