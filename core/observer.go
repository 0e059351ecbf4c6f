package core

import "time"

// EventType classifies observability events emitted during composition.
type EventType string

// Well-defined emission points. Agents emit turn and tool events; fleets emit
// composition and synthesis events.
const (
	EventComposeStart      EventType = "compose.start"
	EventTurnStart         EventType = "turn.start"
	EventTurnComplete      EventType = "turn.complete"
	EventToolInvoked       EventType = "tool.invoked"
	EventSynthesisComplete EventType = "synthesis.complete"
)

// Event is a structured observability record. It replaces module-wide logger
// state with a caller-supplied hook; none of its fields are semantically
// load-bearing for composition.
type Event struct {
	Type        EventType
	TurnID      string // correlates start/complete pairs of one turn
	Fleet       string // emitting fleet, empty for standalone agents
	Participant string
	Model       string
	Mode        string // composition mode, set on compose.start
	Tool        string // tool name, set on tool.invoked
	Color       string // display color assigned to the participant, if any
	Content     string // excerpt of the produced content
	Err         error
	Time        time.Time
}

// Excerpt shortens content for inclusion in an Event.
func Excerpt(s string) string {
	const max = 50
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// Observer receives events at well-defined points of agent and fleet
// execution. Implementations must be safe for concurrent use: concurrent
// composition delivers events from multiple goroutines.
type Observer interface {
	OnEvent(ev Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnEvent implements Observer.
func (f ObserverFunc) OnEvent(ev Event) { f(ev) }

// NoOpObserver discards all events. Useful for testing or when observability
// is disabled.
type NoOpObserver struct{}

// OnEvent implements Observer.
func (NoOpObserver) OnEvent(Event) {}
