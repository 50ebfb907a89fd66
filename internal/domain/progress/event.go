// Package progress relays summarization lifecycle events to any listening surface.
package progress

import (
	"context"
	"time"
)

// EventType names the lifecycle event carried on the channel.
type EventType string

const (
	EventStart    EventType = "SUMMARY_START"
	EventProgress EventType = "SUMMARY_PROGRESS"
	EventDone     EventType = "SUMMARY_DONE"
	EventResult   EventType = "SUMMARY_RESULT"
)

// Event is an immutable progress value. Per session: at most one start, any number of
// progress events, then exactly one done or result.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"sessionId"`
	URL       string    `json:"url,omitempty"`
	Chunk     string    `json:"chunk,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	At        time.Time `json:"at"`
}

func Start(sessionID, url string, at time.Time) Event {
	return Event{Type: EventStart, SessionID: sessionID, URL: url, At: at}
}

func Chunk(sessionID, chunk string, at time.Time) Event {
	return Event{Type: EventProgress, SessionID: sessionID, Chunk: chunk, At: at}
}

func Done(sessionID, summary string, at time.Time) Event {
	return Event{Type: EventDone, SessionID: sessionID, Summary: summary, At: at}
}

// Result is the terminal event for the empty-text and error cases.
func Result(sessionID, message string, at time.Time) Event {
	return Event{Type: EventResult, SessionID: sessionID, Summary: message, At: at}
}

// Terminal reports whether e ends its session.
func (e Event) Terminal() bool {
	return e.Type == EventDone || e.Type == EventResult
}

// Publisher broadcasts events without acknowledgment. Publish never blocks on listeners.
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

// Fanout publishes every event to each publisher in order.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, evt Event) {
	for _, p := range f {
		if p != nil {
			p.Publish(ctx, evt)
		}
	}
}
