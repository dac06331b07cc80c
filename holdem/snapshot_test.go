package holdem

import "testing"

func TestSnapshot_BeforeHand_HasInvalidActionChair(t *testing.T) {
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

	snap := g.Snapshot()
	if snap.HandNumber != 0 {
		t.Fatalf("expected round 0 before first hand, got %d", snap.HandNumber)
	}
	if snap.ActionChair != InvalidChair {
		t.Fatalf("expected invalid action chair before first hand, got %d", snap.ActionChair)
	}
}
