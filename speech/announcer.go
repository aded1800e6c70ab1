// Package speech is the fire-and-forget spoken-feedback sink. Announcements
// must never block or fail a resolution attempt; the actual text-to-speech
// engine is an external collaborator listening on the event bus.
package speech

import (
	"context"
	"log"
	"time"

	"jarvis/eventbus"
)

// Announcer delivers one line of spoken feedback.
type Announcer interface {
	Announce(text string)
}

// BusAnnouncer publishes speech.say events over NATS for the TTS collaborator.
type BusAnnouncer struct {
	bus    *eventbus.NATSBus
	source string
}

func NewBusAnnouncer(bus *eventbus.NATSBus, source string) *BusAnnouncer {
	return &BusAnnouncer{bus: bus, source: source}
}

// Announce publishes asynchronously; failures are logged and dropped.
func (a *BusAnnouncer) Announce(text string) {
	if text == "" {
		return
	}
	evt := eventbus.NewEvent(a.source, eventbus.TypeSpeech, eventbus.EventPayload{Text: text})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.bus.Publish(ctx, evt); err != nil {
			log.Printf("⚠️ Speech publish failed: %v", err)
		}
	}()
}

// LogAnnouncer writes announcements to the log; used when NATS is absent.
type LogAnnouncer struct{}

func (LogAnnouncer) Announce(text string) {
	if text != "" {
		log.Printf("🗣️ %s", text)
	}
}
