package controller

import (
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"botholdem/holdem"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []holdem.GameEvent
	byUser map[uint64][]holdem.GameEvent
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{byUser: make(map[uint64][]holdem.GameEvent)}
}

func (b *recordingBroadcaster) Send(userID uint64, ev holdem.GameEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	b.byUser[userID] = append(b.byUser[userID], ev)
}

func (b *recordingBroadcaster) countType(et holdem.EventType) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, ev := range b.events {
		if ev.Type == et {
			n++
		}
	}
	return n
}

func testConfig() Config {
	return Config{
		Engine: holdem.EngineConfig{
			MaxPlayers: 6,
			MinPlayers: 2,
			SmallBlind: 50,
			BigBlind:   100,
			MinBuyIn:   1000,
			MaxBuyIn:   20000,
			Seed:       7,
		},
		TurnTimeLimit:  5 * time.Second,
		HandStartDelay: time.Second,
		IdleSeatTTL:    10 * time.Second,
	}
}

func TestTable_SitDownAndStartHand_EmitsHandStartedAndHoleCards(t *testing.T) {
	clock := quartz.NewMock(t)
	bc := newRecordingBroadcaster()

	table, err := New("t1", testConfig(), bc, clock, nil)
	require.NoError(t, err)

	require.NoError(t, table.SitDown(1, "alice", 0, 5000))
	require.NoError(t, table.SitDown(2, "bob", 1, 5000))
	require.NoError(t, table.StartHandNow())

	// fanOut sends one copy of each event per seated user: two seats, two copies.
	require.Equal(t, 2, bc.countType(holdem.EventHandStarted))
	require.Equal(t, 2, bc.countType(holdem.EventHoleCardsDealt))

	snap := table.Snapshot()
	require.Equal(t, holdem.PhasePreFlop, snap.Phase)
}

func TestTable_FilterForSeat_HidesOtherHoleCards(t *testing.T) {
	clock := quartz.NewMock(t)
	bc := newRecordingBroadcaster()

	table, err := New("t2", testConfig(), bc, clock, nil)
	require.NoError(t, err)
	require.NoError(t, table.SitDown(1, "alice", 0, 5000))
	require.NoError(t, table.SitDown(2, "bob", 1, 5000))
	require.NoError(t, table.StartHandNow())

	snap := table.Snapshot()
	filtered := FilterForSeat(snap, 0, false)
	for _, p := range filtered.Players {
		if p.Chair != 0 {
			require.Empty(t, p.HandCards, "seat 0's view must not see other seats' hole cards")
		}
	}
}

// TestTable_StandUp_AllowedMidHand confirms the table-level StandUp never
// rejects a mid-hand leave: the seat folds instead, and is no longer
// considered seated at the table going forward.
func TestTable_StandUp_AllowedMidHand(t *testing.T) {
	clock := quartz.NewMock(t)
	bc := newRecordingBroadcaster()

	table, err := New("t3", testConfig(), bc, clock, nil)
	require.NoError(t, err)
	require.NoError(t, table.SitDown(1, "alice", 0, 5000))
	require.NoError(t, table.SitDown(2, "bob", 1, 5000))
	require.NoError(t, table.StartHandNow())

	require.NoError(t, table.StandUp(1))
	require.False(t, table.HasUser(1), "stood-up user must no longer be considered seated")

	snap := table.Snapshot()
	require.True(t, snap.Ended, "heads-up, folding one seat ends the hand")
}
