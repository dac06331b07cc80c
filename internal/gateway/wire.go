package gateway

import (
	"botholdem/card"
	"botholdem/holdem"
)

// wireCard is the §6 card wire form: {suit: 'H'|'D'|'C'|'S', rank: 2..14}.
// The engine's internal Card encodes rank 1..13 with ace low (for
// straight-wheel comparisons); the wire form always reports ace as 14.
type wireCard struct {
	Suit string `json:"suit"`
	Rank int    `json:"rank"`
}

func suitLetter(s card.Suit) string {
	switch s {
	case card.Spade:
		return "S"
	case card.Heart:
		return "H"
	case card.Club:
		return "C"
	case card.Diamond:
		return "D"
	default:
		return "?"
	}
}

func cardToWire(c card.Card) wireCard {
	rank := int(c.Rank())
	if rank == 1 {
		rank = 14
	}
	return wireCard{Suit: suitLetter(c.Suit()), Rank: rank}
}

func cardsToWire(cs []card.Card) []wireCard {
	out := make([]wireCard, len(cs))
	for i, c := range cs {
		out[i] = cardToWire(c)
	}
	return out
}

type wirePlayer struct {
	UserID     uint64     `json:"userId"`
	Chair      uint16     `json:"chair"`
	Stack      int64      `json:"stack"`
	Bet        int64      `json:"bet"`
	Folded     bool       `json:"folded"`
	AllIn      bool       `json:"allIn"`
	LastAction string     `json:"lastAction"`
	HoleCards  []wireCard `json:"holeCards,omitempty"`
}

type wirePot struct {
	Amount          int64    `json:"amount"`
	EligiblePlayers []uint16 `json:"eligiblePlayers"`
	IsMainPot       bool     `json:"isMainPot"`
}

// wireSnapshot is the §6 projection of holdem.Snapshot sent to one seat.
// Hole-card visibility has already been applied upstream by
// controller.FilterForSeat before this conversion ever runs.
type wireSnapshot struct {
	HandNumber      uint16    `json:"handNumber"`
	Phase           string    `json:"phase"`
	Ended           bool      `json:"ended"`
	DealerChair     uint16    `json:"dealerChair"`
	SmallBlindChair uint16    `json:"smallBlindChair"`
	BigBlindChair   uint16    `json:"bigBlindChair"`
	ActionChair     uint16    `json:"actionChair"`
	CurBet          int64     `json:"curBet"`
	MinRaiseDelta   int64     `json:"minRaiseDelta"`
	Community       []wireCard `json:"community"`
	Pots            []wirePot `json:"pots"`
	Players         []wirePlayer `json:"players"`
}

func snapshotToWire(s holdem.Snapshot) wireSnapshot {
	players := make([]wirePlayer, len(s.Players))
	for i, p := range s.Players {
		players[i] = wirePlayer{
			UserID:     p.ID,
			Chair:      p.Chair,
			Stack:      p.Stack,
			Bet:        p.Bet,
			Folded:     p.Folded,
			AllIn:      p.AllIn,
			LastAction: p.LastAction.String(),
			HoleCards:  cardsToWire(p.HandCards),
		}
	}
	pots := make([]wirePot, len(s.Pots))
	for i, p := range s.Pots {
		pots[i] = wirePot{Amount: p.Amount, EligiblePlayers: p.EligiblePlayers, IsMainPot: p.IsMainPot}
	}
	return wireSnapshot{
		HandNumber:      s.HandNumber,
		Phase:           s.Phase.String(),
		Ended:           s.Ended,
		DealerChair:     s.DealerChair,
		SmallBlindChair: s.SmallBlindChair,
		BigBlindChair:   s.BigBlindChair,
		ActionChair:     s.ActionChair,
		CurBet:          s.CurBet,
		MinRaiseDelta:   s.MinRaiseDelta,
		Community:       cardsToWire(s.CommunityCards),
		Pots:            pots,
		Players:         players,
	}
}

type wireActionTaken struct {
	Seat   uint16 `json:"seat"`
	Type   string `json:"type"`
	Amount int64  `json:"amount"`
	Forced bool   `json:"forced"`
}

type wirePotResult struct {
	Amount     int64    `json:"amount"`
	Winners    []uint16 `json:"winners"`
	WinAmounts []int64  `json:"winAmounts"`
}

type wireSettlement struct {
	Pots []wirePotResult `json:"pots"`
}

func settlementToWire(s *holdem.SettlementResult) *wireSettlement {
	if s == nil {
		return nil
	}
	pots := make([]wirePotResult, len(s.PotResults))
	for i, p := range s.PotResults {
		pots[i] = wirePotResult{Amount: p.Amount, Winners: p.Winners, WinAmounts: p.WinAmounts}
	}
	return &wireSettlement{Pots: pots}
}

// wireGameEvent is the payload of an outbound event.game message.
type wireGameEvent struct {
	Type       string           `json:"type"`
	GameID     string           `json:"gameId"`
	HandNumber uint16           `json:"handNumber"`
	Phase      string           `json:"phase"`
	Seat       *uint16          `json:"seat,omitempty"`
	Action     *wireActionTaken `json:"action,omitempty"`
	Community  []wireCard       `json:"community,omitempty"`
	Settle     *wireSettlement  `json:"settle,omitempty"`
	Snapshot   *wireSnapshot    `json:"snapshot,omitempty"`
}

func gameEventToWire(ev holdem.GameEvent) wireGameEvent {
	out := wireGameEvent{
		Type:       string(ev.Type),
		GameID:     ev.GameID,
		HandNumber: ev.HandNumber,
		Phase:      ev.Phase.String(),
	}
	if ev.Seat != holdem.InvalidChair {
		seat := ev.Seat
		out.Seat = &seat
	}
	if ev.Action != nil {
		out.Action = &wireActionTaken{
			Seat:   ev.Action.Seat,
			Type:   ev.Action.Type.String(),
			Amount: ev.Action.Amount,
			Forced: ev.Action.Forced,
		}
	}
	if len(ev.Community) > 0 {
		out.Community = cardsToWire(ev.Community)
	}
	out.Settle = settlementToWire(ev.Settle)
	if ev.Snapshot != nil {
		snap := snapshotToWire(*ev.Snapshot)
		out.Snapshot = &snap
	}
	return out
}

type wireActionBound struct {
	Type string `json:"type"`
	Min  int64  `json:"min"`
	Max  int64  `json:"max"`
}

func actionBoundsToWire(bounds []holdem.ActionBound) []wireActionBound {
	out := make([]wireActionBound, len(bounds))
	for i, b := range bounds {
		out[i] = wireActionBound{Type: b.Type.String(), Min: b.Min, Max: b.Max}
	}
	return out
}

// --- inbound message bodies (§6) ---

type inboundEnvelope struct {
	Type string `json:"type"`

	BotID     string          `json:"botId,omitempty"`
	APIKey    string          `json:"apiKey,omitempty"`
	GameID    string          `json:"gameId,omitempty"`
	ChipStack int64           `json:"chipStack,omitempty"`
	Action    *inboundAction  `json:"action,omitempty"`
}

type inboundAction struct {
	Type   string `json:"type"`
	Amount *int64 `json:"amount,omitempty"`
}

// --- outbound message envelope (§6) ---
//
// Every outbound message is `{type, ...}`. A success reply to an inbound
// `<type>` request is named `<type>.success`; a rejection is
// `<type>.error`. Server-initiated pushes use their own fixed type names
// (turn.start, turn.warning, event.game, system.error).
type outboundEnvelope struct {
	Type string `json:"type"`

	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`

	GameID        string            `json:"gameId,omitempty"`
	Chair         *uint16           `json:"chair,omitempty"`
	Snapshot      *wireSnapshot     `json:"snapshot,omitempty"`
	Games         []wireGameSummary `json:"games,omitempty"`
	Actions       []wireActionBound `json:"actions,omitempty"`
	Event         *wireGameEvent    `json:"event,omitempty"`
	TimeLimit     int64             `json:"timeLimit,omitempty"`
	TimeRemaining int64             `json:"timeRemaining,omitempty"`
}

type wireGameSummary struct {
	GameID     string `json:"gameId"`
	SeatCount  int    `json:"seatCount"`
	MaxPlayers int    `json:"maxPlayers"`
}
