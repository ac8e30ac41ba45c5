// Package clock implements the live match countdown. Ticking happens on a
// dedicated worker goroutine that communicates with the caller exclusively
// through channels: commands in, tick/done events out. A supervisor watches
// tick delivery and substitutes a local fallback timer when the worker
// stalls or cannot be created.
package clock

// EventType tags a clock event.
type EventType string

const (
	// EventTick is published once per elapsed second while running.
	EventTick EventType = "tick"
	// EventDone is published when the countdown reaches zero.
	EventDone EventType = "done"
)

// Event is a message from the ticking source to the caller.
type Event struct {
	Type      EventType `json:"type"`
	Remaining int       `json:"remaining"`
}

// Ticker is the command/event contract of a ticking source. All commands
// are asynchronous and idempotent; the caller must never block on them.
type Ticker interface {
	Start(seconds int)
	Pause()
	Resume()
	AddSeconds(n int)
	Stop()
	Events() <-chan Event
}
