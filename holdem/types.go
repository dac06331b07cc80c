package holdem

import (
	"botholdem/card"
)

// InvalidChair marks an unoccupied or not-yet-resolved seat index.
const InvalidChair uint16 = 65535

// Phase is a stage of TableState's hand lifecycle (§4.4 phase machine).
type Phase byte

const (
	PhaseAnte Phase = iota
	PhasePreFlop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
	PhaseHandComplete
)

var phaseNames = map[Phase]string{
	PhaseAnte:         "ante",
	PhasePreFlop:      "preflop",
	PhaseFlop:         "flop",
	PhaseTurn:         "turn",
	PhaseRiver:        "river",
	PhaseShowdown:     "showdown",
	PhaseHandComplete: "hand_complete",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

// ActionType is one of the six wire action strings from spec §6.
type ActionType byte

const (
	ActionNone ActionType = iota
	ActionCheck
	ActionBet
	ActionCall
	ActionRaise
	ActionFold
	ActionAllIn
)

var actionNames = map[ActionType]string{
	ActionNone:  "none",
	ActionCheck: "check",
	ActionBet:   "bet",
	ActionCall:  "call",
	ActionRaise: "raise",
	ActionFold:  "fold",
	ActionAllIn: "all-in",
}

func (a ActionType) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

// ActionTypeFromWire parses the §6 wire strings ("fold", "check", "call",
// "bet", "raise", "all-in") into an ActionType.
func ActionTypeFromWire(s string) (ActionType, bool) {
	for t, name := range actionNames {
		if name == s && t != ActionNone {
			return t, true
		}
	}
	return ActionNone, false
}

// Hand-rank bytes produced internally by the evaluator (opaque per C2;
// these constants are an implementation detail of eval5/EvalBestOf7, not
// part of the public HandStrength contract).
const (
	HandHighCard byte = iota + 1
	HandOnePair
	HandTwoPair
	HandThreeOfKind
	HandStraight
	HandFlush
	HandFullHouse
	HandFourOfKind
	HandStraightFlush
	HandRoyalFlush
)

// HoldemCards is the canonical 52-card set used to reset a Deck.
var HoldemCards = []card.Card{
	card.CardSpadeA, card.CardSpade2, card.CardSpade3, card.CardSpade4, card.CardSpade5, card.CardSpade6,
	card.CardSpade7, card.CardSpade8, card.CardSpade9, card.CardSpadeT, card.CardSpadeJ, card.CardSpadeQ, card.CardSpadeK,
	card.CardHeartA, card.CardHeart2, card.CardHeart3, card.CardHeart4, card.CardHeart5, card.CardHeart6,
	card.CardHeart7, card.CardHeart8, card.CardHeart9, card.CardHeartT, card.CardHeartJ, card.CardHeartQ, card.CardHeartK,
	card.CardClubA, card.CardClub2, card.CardClub3, card.CardClub4, card.CardClub5, card.CardClub6,
	card.CardClub7, card.CardClub8, card.CardClub9, card.CardClubT, card.CardClubJ, card.CardClubQ, card.CardClubK,
	card.CardDiamondA, card.CardDiamond2, card.CardDiamond3, card.CardDiamond4, card.CardDiamond5, card.CardDiamond6,
	card.CardDiamond7, card.CardDiamond8, card.CardDiamond9, card.CardDiamondT, card.CardDiamondJ, card.CardDiamondQ, card.CardDiamondK,
}
