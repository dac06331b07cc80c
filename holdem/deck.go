package holdem

import (
	"math/rand"

	"botholdem/card"
)

// Deck is the table's single physical card source (§4.1). Engine never
// manipulates card slices directly outside this file — every draw goes
// through one of these named operations, so the deal order and the
// invariant "every card dealt exactly once per hand" live in one place.
type Deck struct {
	cards card.CardList
}

// reset restores the deck to all 52 cards, undealt.
func (d *Deck) reset() {
	cards := make([]card.Card, len(HoldemCards))
	copy(cards, HoldemCards)
	d.cards.Init(cards)
}

// load sets the deck to a copy of cards, dealt from index 0 upward.
func (d *Deck) load(cards []card.Card) {
	d.cards.Init(cards)
}

// shuffle randomizes the deck's remaining order using rng.
func (d *Deck) shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.cards), func(i, j int) { d.cards[i], d.cards[j] = d.cards[j], d.cards[i] })
}

// dealCard removes and returns the top card. Every engine operation that
// draws from the deck runs inside the table lock (§7), so a deck
// underflow surfaces as ErrEmptyDeck for the caller to turn into an
// EngineCorruptError rather than panicking the process.
func (d *Deck) dealCard() (card.Card, error) {
	cards, ok := d.cards.PopCards(1)
	if !ok {
		return card.CardInvalid, ErrEmptyDeck
	}
	return cards[0], nil
}

// dealCards removes and returns the top n cards, or ErrEmptyDeck if fewer remain.
func (d *Deck) dealCards(n int) ([]card.Card, error) {
	cards, ok := d.cards.PopCards(n)
	if !ok {
		return nil, ErrEmptyDeck
	}
	return cards, nil
}

func (d *Deck) dealFlop() ([]card.Card, error) { return d.dealCards(3) }
func (d *Deck) dealTurn() (card.Card, error)   { return d.dealCard() }
func (d *Deck) dealRiver() (card.Card, error)  { return d.dealCard() }

// validate reports whether at least n cards remain undealt.
func (d *Deck) validate(n int) error {
	if d.cards.Count() < n {
		return ErrInsufficient
	}
	return nil
}

func (d *Deck) remaining() int { return d.cards.Count() }
