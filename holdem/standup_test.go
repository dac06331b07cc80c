package holdem

import (
	"testing"
)

func TestStandUp_BetweenHands(t *testing.T) {
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
	if err := g.StandUp(1); err != nil {
		t.Fatalf("StandUp err: %v", err)
	}

	snap := g.Snapshot()
	if len(snap.Players) != 1 {
		t.Fatalf("expected 1 seated player, got %d", len(snap.Players))
	}
}

// TestStandUp_DuringHand_CurrentActorFoldsAndEndsHand exercises StandUp
// called on the seat whose turn it currently is: it must fold (not error)
// and, heads-up, immediately conclude the hand by walkover.
func TestStandUp_DuringHand_CurrentActorFoldsAndEndsHand(t *testing.T) {
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

	snap := g.Snapshot()
	leaving := snap.ActionChair
	if err := g.StandUp(leaving); err != nil {
		t.Fatalf("StandUp mid-hand should always succeed, got err: %v", err)
	}

	snap = g.Snapshot()
	if !snap.Ended {
		t.Fatalf("hand should have ended once only one seat remained unfolded")
	}
	for _, p := range snap.Players {
		if p.Chair == leaving && !p.Folded {
			t.Fatalf("chair %d was folded by StandUp and should still show Folded=true", leaving)
		}
	}
}

// TestStandUp_DuringHand_OutOfTurnFoldsWithoutDisruptingRound exercises
// StandUp called on a seat that is NOT the current actor: the round must
// keep progressing correctly for the remaining seats afterward.
func TestStandUp_DuringHand_OutOfTurnFoldsWithoutDisruptingRound(t *testing.T) {
	g, err := NewEngine(EngineConfig{
		MaxPlayers: 6,
		MinPlayers: 2,
		SmallBlind: 50,
		BigBlind:   100,
	})
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	for chair, id := range map[uint16]uint64{0: 10001, 1: 10002, 2: 10003} {
		if err := g.SitDown(chair, id, 1000, false); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.StartHand(); err != nil {
		t.Fatalf("StartHand err: %v", err)
	}

	snap := g.Snapshot()
	actionChair := snap.ActionChair
	var bystander uint16 = otherChair(actionChair, snap.SmallBlindChair, snap.BigBlindChair)

	if err := g.StandUp(bystander); err != nil {
		t.Fatalf("StandUp mid-hand should always succeed, got err: %v", err)
	}

	snap = g.Snapshot()
	if snap.Ended {
		t.Fatalf("hand should not have ended: two seats are still live")
	}
	if snap.ActionChair != actionChair {
		t.Fatalf("the seat whose turn it was should not have changed")
	}

	// Action keeps progressing through the remaining seats: the current
	// actor calls, closing preflop once the seat after it (the other
	// surviving seat) acts, skipping the folded bystander automatically.
	if _, err := g.Act(snap.ActionChair, ActionCall, g.cfg.BigBlind); err != nil {
		t.Fatalf("Act call err: %v", err)
	}
	snap = g.Snapshot()
	if snap.Phase == PhasePreFlop {
		if _, err := g.Act(snap.ActionChair, ActionCheck, 0); err != nil {
			t.Fatalf("Act check err: %v", err)
		}
	}
	snap = g.Snapshot()
	if snap.Phase != PhaseFlop {
		t.Fatalf("expected preflop betting to close into the flop, phase=%v", snap.Phase)
	}
}

// otherChair returns whichever of b or c is not a.
func otherChair(a, b, c uint16) uint16 {
	if b != a {
		return b
	}
	return c
}

func TestStandUp_AfterHandEndAllowed(t *testing.T) {
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

	snap := g.Snapshot()
	if _, err := g.Act(snap.ActionChair, ActionFold, 0); err != nil {
		t.Fatalf("Act fold err: %v", err)
	}

	if err := g.StandUp(snap.ActionChair); err != nil {
		t.Fatalf("StandUp after hand end err: %v", err)
	}
}
