// Package replay implements ReplayRecorder (C8): a per-table event log
// that assigns monotonic sequence ids, checkpoints periodically, and
// projects hole-card visibility the same way the live dispatcher does.
package replay

import (
	"time"

	"botholdem/holdem"
)

// Event wraps a single emitted holdem.GameEvent with recorder metadata.
type Event struct {
	SequenceID uint64          `json:"sequenceId"`
	RecordedAt time.Time       `json:"recordedAt"`
	DurationMs int64           `json:"durationMs"`
	GameEvent  holdem.GameEvent `json:"event"`
}

// Checkpoint is a full post-state snapshot taken every checkpointInterval
// events, so a consumer can resume reconstruction without replaying the
// entire tape from sequence 0.
type Checkpoint struct {
	SequenceID uint64          `json:"sequenceId"`
	Snapshot   holdem.Snapshot `json:"snapshot"`
}

// Tape is the full recorded history of one table's play. A tape keeps
// accumulating events across hands until EndRecording closes it; nothing
// in this package assumes one tape equals one hand.
type Tape struct {
	GameID      string            `json:"gameId"`
	Names       map[uint16]string `json:"names,omitempty"`
	Config      holdem.EngineConfig `json:"config"`
	StartedAt   time.Time         `json:"startedAt"`
	Events      []Event           `json:"events"`
	Checkpoints []Checkpoint      `json:"checkpoints,omitempty"`

	Ended             bool             `json:"ended"`
	EndedAt           time.Time        `json:"endedAt,omitempty"`
	AvgHandDurationMs int64            `json:"avgHandDurationMs,omitempty"`
	FinalChipCounts   map[uint16]int64 `json:"finalChipCounts,omitempty"`

	lastEventAt time.Time
}

func (t *Tape) clone() *Tape {
	out := *t
	out.Events = append([]Event(nil), t.Events...)
	out.Checkpoints = append([]Checkpoint(nil), t.Checkpoints...)
	if t.Names != nil {
		out.Names = make(map[uint16]string, len(t.Names))
		for k, v := range t.Names {
			out.Names[k] = v
		}
	}
	if t.FinalChipCounts != nil {
		out.FinalChipCounts = make(map[uint16]int64, len(t.FinalChipCounts))
		for k, v := range t.FinalChipCounts {
			out.FinalChipCounts[k] = v
		}
	}
	return &out
}
