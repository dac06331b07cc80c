package replay

import "botholdem/holdem"

// filterEventForStorage is the hook RecordEvent applies before persisting
// an event. The stored tape is the canonical record, not any one viewer's
// projection: every seat's own hole cards must stay recoverable from it
// (a seat replaying its own hand needs to see what it held), so no
// stripping happens here. The actual visibility rule — a seat always sees
// its own cards, everyone else's only once showdown is reached and they
// did not fold — is applied per-viewer downstream by FilterForAudience.
func filterEventForStorage(ev holdem.GameEvent) holdem.GameEvent {
	return ev
}

// FilterForAudience returns a copy of tape with hole cards projected for
// viewerChair: viewerChair always sees its own cards; everyone else's
// cards are visible only once the hand reached showdown and they did not
// fold. revealAll bypasses the filter entirely (spectator/admin view).
func FilterForAudience(tape *Tape, viewerChair uint16, revealAll bool) *Tape {
	out := tape.clone()
	for i, e := range out.Events {
		if e.GameEvent.Snapshot == nil {
			continue
		}
		snap := *e.GameEvent.Snapshot
		snap.Players = filterPlayersForViewer(snap.Players, viewerChair, revealAll, reachedShowdown(snap))
		e.GameEvent.Snapshot = &snap
		out.Events[i] = e
	}
	for i, c := range out.Checkpoints {
		c.Snapshot.Players = filterPlayersForViewer(c.Snapshot.Players, viewerChair, revealAll, reachedShowdown(c.Snapshot))
		out.Checkpoints[i] = c
	}
	return out
}

// reachedShowdown reports whether snap shows a hand that ended with at least
// two unfolded seats holding cards, i.e. one settled at showdown rather than
// won by everyone else folding.
func reachedShowdown(snap holdem.Snapshot) bool {
	if !snap.Ended {
		return false
	}
	live := 0
	for _, p := range snap.Players {
		if !p.Folded && len(p.HandCards) > 0 {
			live++
		}
	}
	return live >= 2
}

func filterPlayersForViewer(players []holdem.PlayerSnapshot, viewerChair uint16, revealAll, showdownReveal bool) []holdem.PlayerSnapshot {
	out := make([]holdem.PlayerSnapshot, len(players))
	copy(out, players)
	for i, p := range out {
		if revealAll || p.Chair == viewerChair || len(p.HandCards) == 0 {
			continue
		}
		if showdownReveal && !p.Folded {
			continue
		}
		hidden := p
		hidden.HandCards = nil
		out[i] = hidden
	}
	return out
}
