package holdem

import "botholdem/card"

type Player struct {
	ID    uint64
	Chair uint16
	Robot bool

	stack int64
	bet   int64

	allIn      bool
	folded     bool
	lastAction ActionType

	// actedThisRound tracks whether the player has acted against the
	// current g.curBet since the last reset (phase start or reopening
	// raise); used to keep NeedActionCount accurate when a seat is
	// force-folded out of turn (StandUp mid-hand).
	actedThisRound bool

	// pendingLeave marks a seat StandUp folded mid-hand; the engine keeps
	// the chair in playersByChair until the hand ends so collectBetsLocked
	// still sees its wagered chips, then reclaims it at the next StartHand.
	pendingLeave bool

	handCards card.CardList
	evalRes   *bestHandResult
}

func (p *Player) ChairID() uint16 { return p.Chair }
func (p *Player) IsRobot() bool   { return p.Robot }

func (p *Player) Stack() int64 { return p.stack }
func (p *Player) Bet() int64   { return p.bet }
func (p *Player) AllIn() bool  { return p.allIn }
func (p *Player) Folded() bool { return p.folded }
func (p *Player) Hand() []card.Card {
	return p.handCards
}

func (p *Player) ResetForNewHand() {
	p.bet = 0
	p.allIn = false
	p.folded = false
	p.lastAction = ActionNone
	p.actedThisRound = false
	p.handCards = make([]card.Card, 0, 2)
	p.evalRes = nil
}

func (p *Player) AddHandCard(cards ...card.Card) {
	p.handCards = append(p.handCards, cards...)
}

func (p *Player) SetHandCard(cards card.CardList) {
	p.handCards = cards
}

func (p *Player) HandCards() card.CardList { return p.handCards }

func (p *Player) setLastAction(a ActionType) { p.lastAction = a }
func (p *Player) getLastAction() ActionType  { return p.lastAction }

func (p *Player) placeBet(amount int64) {
	if amount <= 0 {
		return
	}
	if p.stack <= amount {
		p.allIn = true
		amount = p.stack
	}
	p.stack -= amount
	p.bet += amount
}

func (p *Player) addBet(amount int64) {
	p.bet += amount
}

func (p *Player) resetBet() {
	p.bet = 0
}

func (p *Player) addStack(amount int64) {
	p.stack += amount
}

func (p *Player) setFolded(v bool) { p.folded = v }

func (p *Player) setEvalResult(r *bestHandResult) { p.evalRes = r }
func (p *Player) getEvalResult() *bestHandResult  { return p.evalRes }

type PlayerNode struct {
	Player  *Player
	ChairID uint16
	Next    *PlayerNode
}

func (n *PlayerNode) getPlayer() *Player {
	if n == nil {
		return nil
	}
	return n.Player
}

func (n *PlayerNode) getChairID() uint16 {
	if n == nil {
		return 0
	}
	return n.ChairID
}

// WalkOnce walks the ring once starting at n, stopping at the first node
// for which fn returns true. Returns nil if fn never matches within one
// full revolution.
func (n *PlayerNode) WalkOnce(fn func(*PlayerNode) bool) *PlayerNode {
	if n == nil {
		return nil
	}
	cur := n
	for {
		if fn(cur) {
			return cur
		}
		cur = cur.Next
		if cur == nil || cur == n {
			break
		}
	}
	return nil
}

// WalkAll walks the ring once, visiting every node.
func (n *PlayerNode) WalkAll(fn func(cur *PlayerNode)) {
	n.WalkOnce(func(cur *PlayerNode) bool {
		fn(cur)
		return false
	})
}
