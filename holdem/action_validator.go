package holdem

// ActionBound is one member of the closed set returned by
// GetPossibleActions (§4.3): the action type plus, for Bet/Raise/Call, the
// legal total-bet range the caller may submit.
type ActionBound struct {
	Type ActionType
	Min  int64
	Max  int64
}

// GetPossibleActions is the ActionValidator's (C4) pure projection of what
// a seat may legally do right now, bounded with min/max chip amounts so a
// client never has to guess a legal range by trial and error.
func (g *Engine) GetPossibleActions(chair uint16) ([]ActionBound, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ended {
		return nil, ErrHandEnded
	}
	p := g.playersByChair[chair]
	if p == nil {
		return nil, ErrInvalidState("seat not occupied")
	}
	if g.curNode == nil || g.curNode.ChairID != chair {
		return nil, ErrOutOfTurn
	}

	acts := g.calcNextValidActions(p)
	available := p.stack + p.bet

	bounds := make([]ActionBound, 0, len(acts))
	for _, a := range acts {
		b := ActionBound{Type: a}
		switch a {
		case ActionBet:
			b.Min, b.Max = g.cfg.BigBlind, available
		case ActionRaise:
			b.Min, b.Max = g.curBet+g.MinRaise, available
		case ActionCall:
			b.Min, b.Max = g.curBet, g.curBet
		case ActionAllIn:
			b.Min, b.Max = available, available
		}
		bounds = append(bounds, b)
	}
	return bounds, nil
}
