package replay

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"botholdem/card"
	"botholdem/holdem"
)

func seatedSnapshot(chair uint16, hole []card.Card, folded bool) holdem.PlayerSnapshot {
	return holdem.PlayerSnapshot{Chair: chair, Stack: 1000, HandCards: hole, Folded: folded}
}

func mustCard(t *testing.T, s string) card.Card {
	t.Helper()
	c, err := card.ThdmStrToCard(s)
	require.NoError(t, err)
	return c
}

func TestRecorderSequenceIsMonotonic(t *testing.T) {
	r := NewRecorder(0, 0, nil)
	defer r.Close()

	require.NoError(t, r.StartRecording("g1", holdem.EngineConfig{MaxPlayers: 2}, holdem.Snapshot{}, nil))
	for i := 0; i < 5; i++ {
		require.NoError(t, r.RecordEvent("g1", holdem.GameEvent{Type: holdem.EventActionTaken}))
	}

	tape, ok := r.Tape("g1")
	require.True(t, ok)
	require.Len(t, tape.Events, 6) // game_started + 5 actions
	for i, ev := range tape.Events {
		require.Equal(t, uint64(i+1), ev.SequenceID)
	}
}

func TestRecorderDoubleStartFails(t *testing.T) {
	r := NewRecorder(0, 0, nil)
	defer r.Close()

	require.NoError(t, r.StartRecording("g1", holdem.EngineConfig{}, holdem.Snapshot{}, nil))
	err := r.StartRecording("g1", holdem.EngineConfig{}, holdem.Snapshot{}, nil)
	require.Error(t, err)
	var replayErr *ReplayError
	require.ErrorAs(t, err, &replayErr)
	require.Equal(t, "already_recording", replayErr.Reason)
}

func TestRecorderRecordEventUnknownGameFails(t *testing.T) {
	r := NewRecorder(0, 0, nil)
	defer r.Close()

	err := r.RecordEvent("ghost", holdem.GameEvent{Type: holdem.EventActionTaken})
	require.Error(t, err)
}

func TestRecorderChecksCheckpointInterval(t *testing.T) {
	r := NewRecorder(0, 2, nil)
	defer r.Close()

	require.NoError(t, r.StartRecording("g1", holdem.EngineConfig{}, holdem.Snapshot{}, nil))
	for i := 0; i < 4; i++ {
		snap := holdem.Snapshot{HandNumber: uint16(i)}
		require.NoError(t, r.RecordEvent("g1", holdem.GameEvent{Type: holdem.EventActionTaken, Snapshot: &snap}))
	}

	tape, ok := r.Tape("g1")
	require.True(t, ok)
	// checkpoint at seq 1 (StartRecording) plus every even sequence id (seq 2, 4)
	require.GreaterOrEqual(t, len(tape.Checkpoints), 2)
}

// TestRecorderStoresHoleCardsInTheClear proves the canonical stored record
// keeps every seat's own hole cards — visibility is a read-time projection
// (FilterForAudience), not something RecordEvent bakes in, since doing so
// would make a seat's own cards unrecoverable from a replay of its own hand.
func TestRecorderStoresHoleCardsInTheClear(t *testing.T) {
	r := NewRecorder(0, 0, nil)
	defer r.Close()

	heroHole := []card.Card{mustCard(t, "Ah"), mustCard(t, "Kh")}
	villainHole := []card.Card{mustCard(t, "2c"), mustCard(t, "3c")}

	require.NoError(t, r.StartRecording("g1", holdem.EngineConfig{}, holdem.Snapshot{}, nil))
	midHand := holdem.Snapshot{
		Phase: holdem.PhaseFlop,
		Players: []holdem.PlayerSnapshot{
			seatedSnapshot(0, heroHole, false),
			seatedSnapshot(1, villainHole, false),
		},
	}
	require.NoError(t, r.RecordEvent("g1", holdem.GameEvent{Type: holdem.EventActionTaken, Snapshot: &midHand}))

	tape, _ := r.Tape("g1")
	stored := tape.Events[len(tape.Events)-1].GameEvent.Snapshot
	require.Equal(t, heroHole, stored.Players[0].HandCards)
	require.Equal(t, villainHole, stored.Players[1].HandCards)
}

// TestRecordThenFilterForAudience_OwnerSeesOwnCardsOnly exercises the real
// pipeline end to end: RecordEvent stores the raw snapshot, and only
// FilterForAudience decides what a given viewer is allowed to see from it.
func TestRecordThenFilterForAudience_OwnerSeesOwnCardsOnly(t *testing.T) {
	r := NewRecorder(0, 0, nil)
	defer r.Close()

	heroHole := []card.Card{mustCard(t, "Ah"), mustCard(t, "Kh")}
	villainHole := []card.Card{mustCard(t, "2c"), mustCard(t, "3c")}

	require.NoError(t, r.StartRecording("g1", holdem.EngineConfig{}, holdem.Snapshot{}, nil))
	midHand := holdem.Snapshot{
		Phase: holdem.PhaseFlop,
		Players: []holdem.PlayerSnapshot{
			seatedSnapshot(0, heroHole, false),
			seatedSnapshot(1, villainHole, false),
		},
	}
	require.NoError(t, r.RecordEvent("g1", holdem.GameEvent{Type: holdem.EventActionTaken, Snapshot: &midHand}))

	tape, ok := r.Tape("g1")
	require.True(t, ok)

	asHero := FilterForAudience(tape, 0, false)
	heroView := asHero.Events[len(asHero.Events)-1].GameEvent.Snapshot.Players
	require.Equal(t, heroHole, heroView[0].HandCards, "a bot must see its own hole cards in a replay of its own hand")
	require.Nil(t, heroView[1].HandCards, "a non-showdown opponent hand must stay hidden")
}

func TestRecorderEndRecordingComputesFinalChipCounts(t *testing.T) {
	r := NewRecorder(0, 0, nil)
	defer r.Close()

	require.NoError(t, r.StartRecording("g1", holdem.EngineConfig{}, holdem.Snapshot{}, nil))
	final := holdem.Snapshot{
		Ended: true,
		Players: []holdem.PlayerSnapshot{
			{Chair: 0, Stack: 1500},
			{Chair: 1, Stack: 500},
		},
	}
	require.NoError(t, r.EndRecording("g1", final))

	tape, ok := r.Tape("g1")
	require.True(t, ok)
	require.True(t, tape.Ended)
	require.Equal(t, int64(1500), tape.FinalChipCounts[0])
	require.Equal(t, int64(500), tape.FinalChipCounts[1])
}

func TestRecorderEvictsOldestInactiveBeyondLimit(t *testing.T) {
	r := NewRecorder(1, 0, nil)
	defer r.Close()

	require.NoError(t, r.StartRecording("g1", holdem.EngineConfig{}, holdem.Snapshot{}, nil))
	require.NoError(t, r.EndRecording("g1", holdem.Snapshot{}))

	require.NoError(t, r.StartRecording("g2", holdem.EngineConfig{}, holdem.Snapshot{}, nil))
	require.NoError(t, r.EndRecording("g2", holdem.Snapshot{}))

	_, g1Present := r.Tape("g1")
	_, g2Present := r.Tape("g2")
	require.False(t, g1Present, "oldest completed tape should have been evicted")
	require.True(t, g2Present)
}

type capturingPersister struct {
	mu    sync.Mutex
	calls map[string][]byte
}

func (p *capturingPersister) Persist(gameID string, format string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls == nil {
		p.calls = make(map[string][]byte)
	}
	p.calls[gameID] = data
	return nil
}

func (p *capturingPersister) get(gameID string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	data, ok := p.calls[gameID]
	return data, ok
}

func TestRecorderPersistsOnEviction(t *testing.T) {
	persister := &capturingPersister{}
	r := NewRecorder(1, 0, persister)
	defer r.Close()

	require.NoError(t, r.StartRecording("g1", holdem.EngineConfig{}, holdem.Snapshot{}, nil))
	require.NoError(t, r.EndRecording("g1", holdem.Snapshot{}))
	require.NoError(t, r.StartRecording("g2", holdem.EngineConfig{}, holdem.Snapshot{}, nil))
	require.NoError(t, r.EndRecording("g2", holdem.Snapshot{}))

	require.Eventually(t, func() bool {
		_, ok := persister.get("g1")
		return ok
	}, time.Second, 10*time.Millisecond)
}

func TestExportImportJSONRoundTrip(t *testing.T) {
	tape := &Tape{GameID: "g1", Events: []Event{{SequenceID: 1, GameEvent: holdem.GameEvent{Type: holdem.EventHandStarted}}}}
	data, err := Export(tape, FormatJSON)
	require.NoError(t, err)

	back, err := Import(data, FormatJSON)
	require.NoError(t, err)
	require.Equal(t, tape.GameID, back.GameID)
	require.Len(t, back.Events, 1)
}

func TestExportImportGzipRoundTrip(t *testing.T) {
	tape := &Tape{GameID: "g1", Events: []Event{{SequenceID: 1, GameEvent: holdem.GameEvent{Type: holdem.EventHandStarted}}}}
	data, err := Export(tape, FormatGzip)
	require.NoError(t, err)

	back, err := Import(data, FormatGzip)
	require.NoError(t, err)
	require.Equal(t, tape.GameID, back.GameID)
}

func TestFilterForAudienceRevealsOwnCardsOnly(t *testing.T) {
	heroHole := []card.Card{mustCard(t, "Ah"), mustCard(t, "Kh")}
	villainHole := []card.Card{mustCard(t, "2c"), mustCard(t, "3c")}
	snap := holdem.Snapshot{
		Players: []holdem.PlayerSnapshot{
			seatedSnapshot(0, heroHole, false),
			seatedSnapshot(1, villainHole, false),
		},
	}
	tape := &Tape{Events: []Event{{SequenceID: 1, GameEvent: holdem.GameEvent{Type: holdem.EventActionTaken, Snapshot: &snap}}}}

	viewed := FilterForAudience(tape, 0, false)
	players := viewed.Events[0].GameEvent.Snapshot.Players
	require.NotNil(t, players[0].HandCards)
	require.Nil(t, players[1].HandCards)
}

func TestFilterForAudienceRevealAllBypassesFilter(t *testing.T) {
	villainHole := []card.Card{mustCard(t, "2c"), mustCard(t, "3c")}
	snap := holdem.Snapshot{Players: []holdem.PlayerSnapshot{seatedSnapshot(1, villainHole, false)}}
	tape := &Tape{Events: []Event{{SequenceID: 1, GameEvent: holdem.GameEvent{Type: holdem.EventActionTaken, Snapshot: &snap}}}}

	viewed := FilterForAudience(tape, 0, true)
	require.NotNil(t, viewed.Events[0].GameEvent.Snapshot.Players[0].HandCards)
}
