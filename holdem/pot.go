package holdem

import "sort"

// pot is one layer of the canonical side-pot stack. eligiblePlayers is the
// not-folded subset of seats whose contribution reached this layer's level
// (§4.2); a layer with a single eligible seat is still a real pot — it is
// simply trivially won, not dropped.
type pot struct {
	amount          int64
	eligiblePlayers map[uint16]bool
	isMainPot       bool
}

// potManager derives side pots from the per-seat contribution ledger at
// round close (§9: "Pot model as ledger, not object graph").
type potManager struct {
	pots []pot
}

func (pm *potManager) resetPots() {
	pm.pots = make([]pot, 0)
}

func (pm *potManager) addPot(p ...pot) {
	pm.pots = append(pm.pots, p...)
}

// calcPotsByPlayerBets implements §4.2 formPots: sort distinct contribution
// levels ascending, and for each level create a pot of (Li-Li-1) × (seats
// whose total ≥ Li), eligible = not-folded seats whose total ≥ Li. Folded
// seats' money stays in the pot but they are excluded from eligibility.
// Consecutive layers with an identical eligible set are merged into one
// pot for presentation — this never changes who is eligible for what.
func (pm *potManager) calcPotsByPlayerBets(playersWithBets []*Player) {
	sort.Slice(playersWithBets, func(i, j int) bool {
		return playersWithBets[i].Bet() < playersWithBets[j].Bet()
	})

	var totalContributed int64
	for i, player := range playersWithBets {
		level := player.Bet()
		contribution := level - totalContributed
		if contribution <= 0 {
			continue
		}

		newPot := pot{eligiblePlayers: make(map[uint16]bool)}
		for j := i; j < len(playersWithBets); j++ {
			other := playersWithBets[j]
			layerShare := contribution
			if remaining := other.Bet() - totalContributed; layerShare > remaining {
				layerShare = remaining
			}
			newPot.amount += layerShare
			if !other.Folded() {
				newPot.eligiblePlayers[other.ChairID()] = true
			}
		}

		merged := false
		if n := len(pm.pots); n > 0 {
			last := &pm.pots[n-1]
			if sameEligibility(last.eligiblePlayers, newPot.eligiblePlayers) {
				last.amount += newPot.amount
				merged = true
			}
		}
		if !merged {
			pm.addPot(newPot)
		}

		totalContributed += contribution
	}

	if len(pm.pots) > 0 {
		pm.pots[0].isMainPot = true
	}
}

func sameEligibility(a, b map[uint16]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for chair := range b {
		if !a[chair] {
			return false
		}
	}
	return true
}
