package eventbus

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Event types carried on the bus. Transcripts flow in from the external
// speech-to-text collaborator; speech and outcomes flow out.
const (
	TypeTranscript = "transcript.command"
	TypeSpeech     = "speech.say"
	TypeOutcome    = "resolution.outcome"
)

// Event is the uniform envelope exchanged with the assistant's external
// collaborators over NATS.
type Event struct {
	EventID   string       `json:"event_id"`
	Source    string       `json:"source"`
	Type      string       `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Payload   EventPayload `json:"payload"`
}

// EventPayload carries the spoken or to-be-spoken text plus optional
// resolution details for outcome events.
type EventPayload struct {
	Text     string                 `json:"text,omitempty"`
	Query    string                 `json:"query,omitempty"`
	Outcome  string                 `json:"outcome,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NewEvent builds a stamped event ready to publish.
func NewEvent(source, typ string, payload EventPayload) Event {
	now := time.Now()
	return Event{
		EventID:   NewEventID("evt_", now),
		Source:    source,
		Type:      typ,
		Timestamp: now,
		Payload:   payload,
	}
}

// NewEventID generates a compact unique event id with a date prefix.
func NewEventID(prefix string, t time.Time) string {
	// 8 random bytes -> 16 hex chars
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return prefix + t.UTC().Format("20060102") + "_" + hex.EncodeToString(b)
}

// MinimalValidate checks required fields.
func (e *Event) MinimalValidate() bool {
	return e.EventID != "" && e.Source != "" && e.Type != "" && !e.Timestamp.IsZero()
}
