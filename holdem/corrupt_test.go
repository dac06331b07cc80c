package holdem

import (
	"errors"
	"testing"
)

// TestDeck_DealCard_EmptyReturnsErrEmptyDeck confirms the deck surfaces
// underflow as an error rather than panicking, since it runs inside the
// table lock and a panic there would take the whole process down with it.
func TestDeck_DealCard_EmptyReturnsErrEmptyDeck(t *testing.T) {
	d := &Deck{}
	d.reset()
	d.cards.PopCards(d.cards.Count())

	if _, err := d.dealCard(); !errors.Is(err, ErrEmptyDeck) {
		t.Fatalf("expected ErrEmptyDeck, got %v", err)
	}
	if _, err := d.dealCards(1); !errors.Is(err, ErrEmptyDeck) {
		t.Fatalf("expected ErrEmptyDeck, got %v", err)
	}
}

// TestEngine_DeckExhaustionQuarantinesTable drains the deck mid-hand (after
// hole cards are dealt, before the flop) and confirms the engine turns the
// resulting ErrEmptyDeck into a permanent EngineCorruptError instead of
// crashing, and that the table stays quarantined for every call after.
func TestEngine_DeckExhaustionQuarantinesTable(t *testing.T) {
	g, err := NewEngine(EngineConfig{
		MaxPlayers: 6,
		MinPlayers: 2,
		SmallBlind: 50,
		BigBlind:   100,
	})
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	if err := g.SitDown(0, 10001, 1000, false); err != nil {
		t.Fatal(err)
	}
	if err := g.SitDown(1, 10002, 1000, false); err != nil {
		t.Fatal(err)
	}
	if err := g.StartHand(); err != nil {
		t.Fatalf("StartHand err: %v", err)
	}

	// Simulate a deck run dry before the flop is dealt.
	g.deck.cards.PopCards(g.deck.cards.Count())

	snap := g.Snapshot()
	if _, err := g.Act(snap.ActionChair, ActionCall, snap.CurBet); err != nil {
		t.Fatalf("Act call err: %v", err)
	}
	snap = g.Snapshot()
	_, err = g.Act(snap.ActionChair, ActionCheck, 0)
	var corrupt *EngineCorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected EngineCorruptError once the deck ran dry, got %v", err)
	}
	if !errors.Is(corrupt, ErrEmptyDeck) {
		t.Fatalf("expected the corruption cause to unwrap to ErrEmptyDeck, got %v", corrupt.Cause)
	}

	if err := g.StartHand(); !errors.As(err, &corrupt) {
		t.Fatalf("quarantined table must reject further hands, got %v", err)
	}
}

// TestEngine_UndistributablePotQuarantines confirms a pot with chips but no
// eligible seat (a chip-conservation violation, not a legitimate result) is
// raised as EngineCorruptError rather than silently reported as a winner-
// less PotResult.
func TestEngine_UndistributablePotQuarantines(t *testing.T) {
	g, err := NewEngine(EngineConfig{
		MaxPlayers: 6,
		MinPlayers: 2,
		SmallBlind: 50,
		BigBlind:   100,
	})
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	if err := g.SitDown(0, 10001, 1000, false); err != nil {
		t.Fatal(err)
	}
	if err := g.SitDown(1, 10002, 1000, false); err != nil {
		t.Fatal(err)
	}
	if err := g.StartHand(); err != nil {
		t.Fatalf("StartHand err: %v", err)
	}

	// Force a pot with chips in it but zero eligible seats, the invariant
	// violation settleByEval must refuse to paper over.
	g.noShowDown = false
	g.communityCards = nil
	board, derr := g.deck.dealCards(5)
	if derr != nil || len(board) != 5 {
		t.Fatalf("failed to draw board cards from stock")
	}
	g.communityCards = board
	g.potManager.resetPots()
	g.potManager.addPot(pot{amount: 150, eligiblePlayers: map[uint16]bool{}})

	_, err = g.SettleShowdown()
	var corrupt *EngineCorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected EngineCorruptError for an undistributable pot, got %v", err)
	}
	var undistributable *UndistributablePotError
	if !errors.As(corrupt, &undistributable) {
		t.Fatalf("expected cause to unwrap to UndistributablePotError, got %v", corrupt.Cause)
	}

	if _, err := g.SitDown(2, 10003, 1000, false); !errors.As(err, &corrupt) {
		t.Fatalf("quarantined table must reject further mutation, got %v", err)
	}
}
