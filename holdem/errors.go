package holdem

import "errors"

// Engine-local sentinels used by GameEngine/TableState mutation paths.
var (
	ErrHandEnded    = errors.New("hand already ended")
	ErrOutOfTurn    = errors.New("action out of turn")
	ErrEmptyDeck    = errors.New("deck is empty")
	ErrInsufficient = errors.New("insufficient cards remaining")
)

// InvalidStateError reports a precondition violation local to one
// engine call (addSeat during a live hand, startHand with <2 seats, ...).
type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }

// ActionRejectedError is a recoverable validation error. Reason is a short
// machine-stable code such as "NotToAct", "IllegalCheck", "BelowMinRaise".
// The engine's own action path does not construct it: processActionLocked
// reports a rejected action as ErrOutOfTurn, ErrHandEnded or a plain error.
type ActionRejectedError struct {
	Reason string
}

func (e *ActionRejectedError) Error() string { return "action rejected: " + e.Reason }

func NewActionRejected(reason string) error { return &ActionRejectedError{Reason: reason} }

// UndistributablePotError is a fatal engine-internal invariant violation
// (§7): a pot holding chips had no eligible seat to award them to.
// Settlement quarantines the engine with it as soon as that happens; the
// pot is not handed to other still-in-hand seats instead.
type UndistributablePotError struct {
	PotIndex int
}

func (e *UndistributablePotError) Error() string {
	return "undistributable pot"
}

// EngineCorruptError is raised when an internal invariant (chip
// conservation, deck uniqueness, pot arithmetic) is violated. Per §7 the
// table that raises this is quarantined: subsequent mutating calls
// return this same error without attempting further state changes.
type EngineCorruptError struct {
	GameID string
	Cause  error
}

func (e *EngineCorruptError) Error() string {
	if e.Cause != nil {
		return "engine corrupt (" + e.GameID + "): " + e.Cause.Error()
	}
	return "engine corrupt (" + e.GameID + ")"
}

func (e *EngineCorruptError) Unwrap() error { return e.Cause }

// DeckInvalidError describes a deck that is not 52 unique cards. No engine
// path constructs it: Deck.validate only checks how many cards remain
// undealt and reports ErrInsufficient.
type DeckInvalidError struct {
	Detail string
}

func (e *DeckInvalidError) Error() string { return "deck invalid: " + e.Detail }

// quarantineLocked records cause as the reason this table's engine is
// permanently corrupt (§7) and returns the EngineCorruptError every
// subsequent mutating call on it will see. Idempotent: only the first
// cause sticks.
func (g *Engine) quarantineLocked(cause error) *EngineCorruptError {
	if g.corrupt == nil {
		g.corrupt = &EngineCorruptError{GameID: g.GameID, Cause: cause}
	}
	return g.corrupt
}
