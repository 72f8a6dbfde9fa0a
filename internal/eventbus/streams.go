package eventbus

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

const (
	// StreamSchedulerEvents is the JetStream stream for scheduler lifecycle
	// events (batch scheduled/committed/invalidated, task dispatched).
	StreamSchedulerEvents = "SCHEDULER_EVENTS"

	// SubjectSchedulerPrefix is the subject prefix for scheduler events.
	SubjectSchedulerPrefix = "scheduler."
)

// SubjectForEvent returns the NATS subject for a given event type.
func SubjectForEvent(eventType EventType) string {
	return SubjectSchedulerPrefix + string(eventType)
}

// EnsureStreams creates the required JetStream streams if they don't already
// exist.
func EnsureStreams(js nats.JetStreamContext) error {
	if _, err := js.StreamInfo(StreamSchedulerEvents); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     StreamSchedulerEvents,
			Subjects: []string{SubjectSchedulerPrefix + ">"},
			Storage:  nats.FileStorage,
			// Retain last 10000 messages or 100MB, whichever comes first.
			MaxMsgs:  10000,
			MaxBytes: 100 << 20,
		})
		if err != nil {
			return fmt.Errorf("create %s stream: %w", StreamSchedulerEvents, err)
		}
	}

	return nil
}
