package holdem

import "botholdem/card"

// EventType is one tag of the GameEvent union (§3 Data Model).
type EventType string

const (
	EventPlayerJoined    EventType = "player_joined"
	EventPlayerLeft      EventType = "player_left"
	EventHandStarted     EventType = "hand_started"
	EventHoleCardsDealt  EventType = "hole_cards_dealt"
	EventBlindsPosted    EventType = "blinds_posted"
	EventActionTaken     EventType = "action_taken"
	EventFlopDealt       EventType = "flop_dealt"
	EventTurnDealt       EventType = "turn_dealt"
	EventRiverDealt      EventType = "river_dealt"
	EventShowdownComplete EventType = "showdown_complete"
	EventHandComplete    EventType = "hand_complete"
	EventPlayerTimeout   EventType = "player_timeout"

	// EventTurnWarning is emitted by the controller (not the engine) when a
	// seat's turn clock crosses the warning threshold (§4.6).
	EventTurnWarning EventType = "turn_warning"
)

// GameEvent is the tagged union emitted by GameEngine on every state
// transition (§3, §9). Subscribers receive a value, not a live reference:
// Snapshot (if present) is already a deep copy produced under the table
// lock, so the event fully decouples from the engine's lifetime once
// emitted.
type GameEvent struct {
	Type       EventType
	GameID     string
	HandNumber uint16
	Phase      Phase

	Seat   uint16 // InvalidChair when not seat-scoped
	Action *ActionTaken

	Community []card.Card
	Snapshot  *Snapshot
	Settle    *SettlementResult
}

// ActionTaken records the normalized action applied by processAction, for
// the action_taken / player_timeout events.
type ActionTaken struct {
	Seat   uint16
	Type   ActionType
	Amount int64
	Forced bool
}

// emit invokes the engine's subscribed callback, if any. Called only while
// holding g.mu, matching §9's "timers post a command onto the table's
// input queue" model: event delivery never blocks on anything past the
// callback itself, which the controller keeps cheap (fan-out, not I/O).
func (g *Engine) emit(ev GameEvent) {
	if g.onEvent == nil {
		return
	}
	ev.GameID = g.GameID
	ev.HandNumber = g.round
	ev.Phase = g.phase
	if ev.Snapshot == nil {
		snap := g.snapshotLocked()
		ev.Snapshot = &snap
	}
	g.onEvent(ev)
}

// OnEvent installs the engine's single event callback (§9: "the controller
// registers a single callback per engine that forwards to subscribers").
func (g *Engine) OnEvent(fn func(GameEvent)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onEvent = fn
}
