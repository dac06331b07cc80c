package controller

import "botholdem/holdem"

// FilterForSeat projects the full Snapshot down to what chair is allowed
// to see (§9 "visibility as projection, not privilege"): a seat's own hole
// cards stay, every other occupied seat's hole cards are blanked unless
// revealAll is set (the real-showdown reveal). Even then only seats that
// have not folded are shown, and only when at least two such seats hold
// cards, so a hand won by everyone else folding reveals nothing.
func FilterForSeat(snap holdem.Snapshot, chair uint16, revealAll bool) holdem.Snapshot {
	out := snap
	out.Players = make([]holdem.PlayerSnapshot, len(snap.Players))
	copy(out.Players, snap.Players)

	live := 0
	for _, p := range snap.Players {
		if !p.Folded && len(p.HandCards) > 0 {
			live++
		}
	}
	reveal := revealAll && live >= 2

	for i, p := range out.Players {
		if p.Chair == chair || len(p.HandCards) == 0 || (reveal && !p.Folded) {
			continue
		}
		hidden := p
		hidden.HandCards = nil
		out.Players[i] = hidden
	}
	return out
}
