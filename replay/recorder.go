package replay

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"botholdem/holdem"
)

const (
	defaultCheckpointInterval = 50
	defaultMaxReplaysInMemory = 100
)

// Persister is given a finished tape's export bytes once recording ends.
// Implementations run on the recorder's background worker and must not
// block the table's command loop (§5: replay persistence happens after
// releasing the engine lock).
type Persister interface {
	Persist(gameID string, format string, data []byte) error
}

// Recorder is ReplayRecorder (C8). One Recorder is shared across every
// table the process hosts; tapes are keyed by gameId.
type Recorder struct {
	mu                 sync.Mutex
	active             map[string]*Tape
	done               *lru.Cache[string, *Tape]
	checkpointInterval int
	persister          Persister
	worker             *persistWorker
}

// NewRecorder builds a Recorder. maxReplaysInMemory bounds the completed
// tapes kept resident (default 100, oldest inactive evicted first);
// checkpointInterval bounds how often a full snapshot is captured
// (default 50). persister may be nil, in which case completed tapes are
// simply held in the LRU cache until evicted and dropped.
func NewRecorder(maxReplaysInMemory, checkpointInterval int, persister Persister) *Recorder {
	if maxReplaysInMemory <= 0 {
		maxReplaysInMemory = defaultMaxReplaysInMemory
	}
	if checkpointInterval <= 0 {
		checkpointInterval = defaultCheckpointInterval
	}
	r := &Recorder{
		active:             make(map[string]*Tape),
		checkpointInterval: checkpointInterval,
		persister:          persister,
	}
	if persister != nil {
		r.worker = newPersistWorker(persister)
	}
	cache, _ := lru.NewWithEvict(maxReplaysInMemory, func(gameID string, tape *Tape) {
		r.flush(gameID, tape)
	})
	r.done = cache
	return r
}

// Close stops the background persistence worker, waiting for in-flight
// jobs to finish.
func (r *Recorder) Close() error {
	if r.worker != nil {
		return r.worker.close()
	}
	return nil
}

// StartRecording allocates a buffer for gameId and writes the pseudo
// game_started event.
func (r *Recorder) StartRecording(gameID string, cfg holdem.EngineConfig, initial holdem.Snapshot, names map[uint16]string) error {
	r.mu.Lock()
	if _, exists := r.active[gameID]; exists {
		r.mu.Unlock()
		return &ReplayError{GameID: gameID, Reason: "already_recording", Message: "StartRecording called twice for this gameId"}
	}
	r.mu.Unlock()

	now := time.Now()
	tape := &Tape{
		GameID:      gameID,
		Names:       names,
		Config:      cfg,
		StartedAt:   now,
		lastEventAt: now,
	}
	tape.Events = append(tape.Events, Event{
		SequenceID: 1,
		RecordedAt: now,
		DurationMs: 0,
		GameEvent: holdem.GameEvent{
			Type:     "game_started",
			GameID:   gameID,
			Snapshot: &initial,
		},
	})
	tape.Checkpoints = append(tape.Checkpoints, Checkpoint{SequenceID: 1, Snapshot: initial})

	r.mu.Lock()
	r.active[gameID] = tape
	r.mu.Unlock()
	return nil
}

// RecordEvent appends ev to gameId's tape with a monotonic sequenceId and
// checkpoints every checkpointInterval events. Hole cards are stored
// as-is (§4.7); the visibility rule is applied per viewer at read time by
// FilterForAudience, not here.
func (r *Recorder) RecordEvent(gameID string, ev holdem.GameEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tape, ok := r.active[gameID]
	if !ok {
		return &ReplayError{GameID: gameID, Reason: "unknown_game", Message: "RecordEvent called before StartRecording or after EndRecording"}
	}

	now := time.Now()
	seq := uint64(len(tape.Events)) + 1
	filtered := filterEventForStorage(ev)
	tape.Events = append(tape.Events, Event{
		SequenceID: seq,
		RecordedAt: now,
		DurationMs: now.Sub(tape.lastEventAt).Milliseconds(),
		GameEvent:  filtered,
	})
	tape.lastEventAt = now

	if int(seq)%r.checkpointInterval == 0 && ev.Snapshot != nil {
		tape.Checkpoints = append(tape.Checkpoints, Checkpoint{SequenceID: seq, Snapshot: *ev.Snapshot})
	}
	return nil
}

// EndRecording writes the game_ended pseudo-event, computes summary
// statistics, moves the tape out of the active set into the bounded
// in-memory cache, and schedules a best-effort persistence job.
func (r *Recorder) EndRecording(gameID string, final holdem.Snapshot) error {
	r.mu.Lock()
	tape, ok := r.active[gameID]
	if !ok {
		r.mu.Unlock()
		return &ReplayError{GameID: gameID, Reason: "unknown_game", Message: "EndRecording called before StartRecording"}
	}
	delete(r.active, gameID)

	now := time.Now()
	seq := uint64(len(tape.Events)) + 1
	tape.Events = append(tape.Events, Event{
		SequenceID: seq,
		RecordedAt: now,
		DurationMs: now.Sub(tape.lastEventAt).Milliseconds(),
		GameEvent: holdem.GameEvent{
			Type:     "game_ended",
			GameID:   gameID,
			Snapshot: &final,
		},
	})
	tape.Ended = true
	tape.EndedAt = now
	tape.AvgHandDurationMs = avgHandDuration(tape.Events)
	tape.FinalChipCounts = chipCounts(final)
	r.done.Add(gameID, tape)
	r.mu.Unlock()
	return nil
}

// Tape returns a defensive copy of gameId's tape, active or completed.
func (r *Recorder) Tape(gameID string) (*Tape, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tape, ok := r.active[gameID]; ok {
		return tape.clone(), true
	}
	if tape, ok := r.done.Get(gameID); ok {
		return tape.clone(), true
	}
	return nil, false
}

// flush is the LRU eviction callback: it schedules gameId's tape for
// best-effort background persistence before the cache drops its last
// in-memory reference.
func (r *Recorder) flush(gameID string, tape *Tape) {
	if r.worker == nil {
		return
	}
	data, err := Export(tape, FormatJSON)
	if err != nil {
		return
	}
	r.worker.submit(gameID, FormatJSON, data)
}

func avgHandDuration(events []Event) int64 {
	var startedAt time.Time
	var total, count int64
	for _, e := range events {
		switch e.GameEvent.Type {
		case holdem.EventHandStarted:
			startedAt = e.RecordedAt
		case holdem.EventHandComplete:
			if !startedAt.IsZero() {
				total += e.RecordedAt.Sub(startedAt).Milliseconds()
				count++
				startedAt = time.Time{}
			}
		}
	}
	if count == 0 {
		return 0
	}
	return total / count
}

func chipCounts(final holdem.Snapshot) map[uint16]int64 {
	out := make(map[uint16]int64, len(final.Players))
	for _, p := range final.Players {
		out[p.Chair] = p.Stack
	}
	return out
}
