package holdem

import "testing"

// With 3 starting seats, a BB fold drops activeCount to 2 — but the first
// flop action should still follow the 3+-way rule (start from small blind),
// not the heads-up rule, since heads-up is decided by starting seat count.
func TestStreetProgression_FlopFirstActionAfterBBFolds(t *testing.T) {
	g, err := NewEngine(EngineConfig{
		MaxPlayers: 3,
		MinPlayers: 3,
		SmallBlind: 50,
		BigBlind:   100,
		Ante:       0,
		Seed:       1,
	})
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}

	// seat 3 players
	if err := g.SitDown(0, 10001, 1000, false); err != nil {
		t.Fatal(err)
	}
	if err := g.SitDown(1, 10002, 1000, false); err != nil {
		t.Fatal(err)
	}
	if err := g.SitDown(2, 10003, 1000, false); err != nil {
		t.Fatal(err)
	}

	if err := g.StartHand(); err != nil {
		t.Fatalf("StartHand err: %v", err)
	}
	snap := g.Snapshot()
	if snap.Phase != PhasePreFlop {
		t.Fatalf("expected preflop, got %v", snap.Phase)
	}

	// Preflop: dealer calls, SB calls, BB folds
	for i := 0; i < 3; i++ {
		snap = g.Snapshot()
		switch snap.ActionChair {
		case snap.DealerChair:
			if _, err := g.Act(snap.ActionChair, ActionCall, snap.CurBet); err != nil {
				t.Fatalf("dealer call err: %v", err)
			}
		case snap.SmallBlindChair:
			if _, err := g.Act(snap.ActionChair, ActionCall, snap.CurBet); err != nil {
				t.Fatalf("sb call err: %v", err)
			}
		case snap.BigBlindChair:
			if _, err := g.Act(snap.ActionChair, ActionFold, 0); err != nil {
				t.Fatalf("bb fold err: %v", err)
			}
		default:
			t.Fatalf("unexpected action chair: %d", snap.ActionChair)
		}
	}

	// Entering flop: first to act should be the small blind (still live)
	snap = g.Snapshot()
	if snap.Phase != PhaseFlop {
		t.Fatalf("expected flop, got %v", snap.Phase)
	}
	if len(snap.CommunityCards) != 3 {
		t.Fatalf("expected 3 community cards on flop, got %d", len(snap.CommunityCards))
	}
	if snap.ActionChair != snap.SmallBlindChair {
		t.Fatalf("expected flop action chair=SB(%d), got %d (dealer=%d bb=%d)",
			snap.SmallBlindChair, snap.ActionChair, snap.DealerChair, snap.BigBlindChair)
	}
}

