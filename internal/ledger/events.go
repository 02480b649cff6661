// events.go - Public events emitted by the state manager.

package ledger

// EventType names one public transition outcome.
type EventType string

const (
	EventGameCreated   EventType = "game_created"
	EventPlayerJoined  EventType = "player_joined"
	EventSpawnResult   EventType = "spawn_result"
	EventPlanetKey     EventType = "planet_key"
	EventPlanetCreated EventType = "planet_created"
	EventMoveResult    EventType = "move_result"
	EventFlushResult   EventType = "flush_result"
	EventUpgradeResult EventType = "upgrade_result"
	EventBroadcast     EventType = "broadcast"
	EventCleanup       EventType = "cleanup"
)

// Event is one public observation. Fields carry only declassified values:
// revealed scalars, identifiers and timing, never secret payloads.
type Event struct {
	Type       EventType      `json:"type"`
	GameID     uint64         `json:"game_id"`
	Slot       uint64         `json:"slot"`
	PlanetHash string         `json:"planet_hash,omitempty"`
	Account    string         `json:"account,omitempty"`
	Fields     map[string]any `json:"fields,omitempty"`
}

// Sink receives every public event. Implementations must not block the
// caller for long; the manager publishes synchronously.
type Sink interface {
	Publish(Event)
}

// NopSink drops all events.
type NopSink struct{}

func (NopSink) Publish(Event) {}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

func (f SinkFunc) Publish(ev Event) { f(ev) }
