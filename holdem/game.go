package holdem

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"botholdem/card"
)

type Engine struct {
	GameID string

	cfg EngineConfig
	rng *rand.Rand

	mu sync.Mutex

	onEvent func(GameEvent)

	// seats
	playersByChair map[uint16]*Player
	chairIDNodes   map[uint16]*PlayerNode

	// hand state
	round          uint16
	phase          Phase
	communityCards card.CardList
	deck           Deck

	dealerNode     *PlayerNode
	smallBlindNode *PlayerNode
	bigBlindNode   *PlayerNode
	curNode        *PlayerNode

	activeCount int
	allinCount  int

	// Explicit betting-round state (per workspace rule)
	NeedActionCount int    // remaining seats that must still act this round
	MinRaise        int64  // minimum legal raise delta for this round
	CurrentRaiser   uint16 // chair that last reopened the betting round

	curBet           int64
	lastPlayerAction ActionType
	validActions     []ActionType

	noShowDown bool
	ended      bool

	potManager potManager

	lastSettlement *SettlementResult

	// corrupt is set once by quarantineLocked when an internal invariant
	// is violated (§7); every mutating call short-circuits on it from
	// then on instead of touching state that may already be inconsistent.
	corrupt *EngineCorruptError
}

func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		var b [8]byte
		if _, err := crand.Read(b[:]); err != nil {
			return nil, err
		}
		seed = int64(binary.LittleEndian.Uint64(b[:]))
	}
	g := &Engine{
		cfg:            cfg,
		rng:            rand.New(rand.NewSource(seed)),
		playersByChair: make(map[uint16]*Player, cfg.MaxPlayers),
		chairIDNodes:   make(map[uint16]*PlayerNode, cfg.MaxPlayers),
		phase:          PhaseAnte,
		CurrentRaiser:  InvalidChair,
	}
	g.potManager.resetPots()
	return g, nil
}

// SitDown seats a player with initial stack.
func (g *Engine) SitDown(chair uint16, playerID uint64, stack int64, robot bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.corrupt != nil {
		return g.corrupt
	}
	if chair >= uint16(g.cfg.MaxPlayers) {
		return fmt.Errorf("invalid chair %d", chair)
	}
	if stack < 0 {
		return fmt.Errorf("stack must be >= 0")
	}
	if g.playersByChair[chair] != nil {
		return fmt.Errorf("chair %d already occupied", chair)
	}
	g.playersByChair[chair] = &Player{
		ID:    playerID,
		Chair: chair,
		Robot: robot,
		stack: stack,
	}
	g.emit(GameEvent{Type: EventPlayerJoined, Seat: chair})
	return nil
}

// StandUp removes a player from a chair. Always allowed (§6): mid-hand
// removal folds the seat immediately instead of rejecting the call. The
// chair's chip-ledger entry stays live in playersByChair until the hand
// ends, since collectBetsLocked still needs it to settle whatever the seat
// already wagered this round; the chair itself is reclaimed at the next
// StartHand.
func (g *Engine) StandUp(chair uint16) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.corrupt != nil {
		return g.corrupt
	}
	if chair >= uint16(g.cfg.MaxPlayers) {
		return fmt.Errorf("invalid chair %d", chair)
	}
	if g.playersByChair[chair] == nil {
		return fmt.Errorf("chair %d is empty", chair)
	}

	if g.round > 0 && !g.ended {
		g.foldForLeaveLocked(chair)
		if p := g.playersByChair[chair]; p != nil {
			p.pendingLeave = true
		}
		g.emit(GameEvent{Type: EventPlayerLeft, Seat: chair})
		return nil
	}

	g.removeSeatLocked(chair)
	g.emit(GameEvent{Type: EventPlayerLeft, Seat: chair})
	return nil
}

// removeSeatLocked drops chair's bookkeeping entirely. Only safe between
// hands (or for a chair already swept by pendingLeave), since mid-hand it
// would strand the seat's wagered chips out of collectBetsLocked's view.
func (g *Engine) removeSeatLocked(chair uint16) {
	delete(g.playersByChair, chair)
	delete(g.chairIDNodes, chair)

	if g.dealerNode != nil && g.dealerNode.ChairID == chair {
		g.dealerNode = nil
	}
	if g.smallBlindNode != nil && g.smallBlindNode.ChairID == chair {
		g.smallBlindNode = nil
	}
	if g.bigBlindNode != nil && g.bigBlindNode.ChairID == chair {
		g.bigBlindNode = nil
	}
	if g.curNode != nil && g.curNode.ChairID == chair {
		g.curNode = nil
	}
}

// foldForLeaveLocked applies a fold's side effects to chair for a mid-hand
// departure, whether or not it is currently chair's turn to act. When it
// is, this reuses the same path ForceTimeout uses (processActionLocked);
// otherwise it replicates processActionLocked's ActionFold case directly,
// since processActionLocked itself only accepts the current actor.
func (g *Engine) foldForLeaveLocked(chair uint16) {
	player := g.playersByChair[chair]
	if player == nil || player.folded {
		return
	}

	if g.curNode != nil && g.curNode.ChairID == chair {
		_, _ = g.processActionLocked(chair, ActionFold, 0, true)
		return
	}

	wasOwed := !player.allIn && !player.actedThisRound
	wasAllIn := player.allIn
	player.setFolded(true)
	g.activeCount--
	if wasAllIn {
		g.allinCount--
	}
	for i := range g.potManager.pots {
		delete(g.potManager.pots[i].eligiblePlayers, chair)
	}
	g.emit(GameEvent{Type: EventActionTaken, Seat: chair, Action: &ActionTaken{Seat: chair, Type: ActionFold, Forced: true}})

	if g.activeCount <= 1 {
		g.noShowDown = true
		_, _ = g.endHandLocked()
		return
	}
	if wasOwed {
		g.NeedActionCount--
	}
}

func (g *Engine) Player(chair uint16) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playersByChair[chair]
}

// StartHand starts a new hand (single-table engine).
func (g *Engine) StartHand() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.corrupt != nil {
		return g.corrupt
	}

	g.ended = false
	g.lastSettlement = nil
	g.noShowDown = false
	g.communityCards = nil

	// Reclaim chairs StandUp folded mid-hand last round; deferred until now
	// since collectBetsLocked needed them through the hand's last bet round.
	for chair, p := range g.playersByChair {
		if p != nil && p.pendingLeave {
			g.removeSeatLocked(chair)
		}
	}

	// Build active players list (stack > 0)
	active := make([]*Player, 0, g.cfg.MaxPlayers)
	for chair := uint16(0); chair < uint16(g.cfg.MaxPlayers); chair++ {
		p := g.playersByChair[chair]
		if p == nil {
			continue
		}
		if p.stack <= 0 {
			// Busted seats sit this hand out; drop cards left from the last one.
			p.SetHandCard(nil)
			continue
		}
		p.ResetForNewHand()
		active = append(active, p)
	}
	if len(active) < g.cfg.MinPlayers {
		return fmt.Errorf("not enough players: %d < %d", len(active), g.cfg.MinPlayers)
	}
	if fc := g.cfg.ForcedDealerChair; fc != nil {
		if p := g.playersByChair[*fc]; p == nil || p.stack <= 0 {
			return fmt.Errorf("forced dealer chair %d has no active seat", *fc)
		}
	}

	g.round++

	// Reset per-hand state
	g.potManager.resetPots()
	g.activeCount = len(active)
	g.allinCount = 0
	g.curBet = 0
	g.MinRaise = 0
	g.NeedActionCount = 0
	g.CurrentRaiser = InvalidChair
	g.lastPlayerAction = ActionNone

	// Rebuild ring list nodes in chair order
	g.chairIDNodes = make(map[uint16]*PlayerNode, len(active))
	var first, last *PlayerNode
	for chair := uint16(0); chair < uint16(g.cfg.MaxPlayers); chair++ {
		p := g.playersByChair[chair]
		if p == nil || p.stack <= 0 {
			continue
		}
		node := &PlayerNode{ChairID: chair, Player: p}
		g.chairIDNodes[chair] = node
		if first == nil {
			first = node
		}
		if last != nil {
			last.Next = node
		}
		last = node
	}
	if first != nil && last != nil {
		last.Next = first
	}

	// Shuffle deck
	g.shuffle()

	// Select dealer
	g.selectDealer()

	// Select blinds & first action position
	g.selectBlindsByDealer(g.dealerNode)

	g.emit(GameEvent{Type: EventHandStarted})

	// Deal hole cards
	if err := g.dealHoleCards(); err != nil {
		return g.quarantineLocked(err)
	}
	snap := g.snapshotLocked()
	g.emit(GameEvent{Type: EventHoleCardsDealt, Snapshot: &snap})

	// Antes
	g.phase = PhaseAnte
	if g.autoBetAntes() {
		if err := g.advanceToShowdownLocked(); err != nil {
			return g.quarantineLocked(err)
		}
		_, err := g.endHandLocked()
		return err
	}

	// Blinds
	blindsAllIn := g.autoBetBlinds()
	g.emit(GameEvent{Type: EventBlindsPosted})
	if blindsAllIn {
		if err := g.advanceToShowdownLocked(); err != nil {
			return g.quarantineLocked(err)
		}
		_, err := g.endHandLocked()
		return err
	}

	// Skip players with 0 stack (all-in)
	g.curNode = g.curNode.WalkOnce(func(cur *PlayerNode) bool {
		return cur.Player.stack > 0 && !cur.Player.folded
	})

	g.phase = PhasePreFlop
	g.onPhaseStartLocked()
	return nil
}

// LegalActions is a pure projection of current state.
func (g *Engine) LegalActions(chair uint16) ([]ActionType, int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.corrupt != nil {
		return nil, 0, g.corrupt
	}
	if g.ended {
		return nil, 0, ErrHandEnded
	}
	p := g.playersByChair[chair]
	if p == nil {
		return nil, 0, fmt.Errorf("player not found")
	}
	acts := g.calcNextValidActions(p)
	minTotalRaiseTo := g.curBet + g.MinRaise
	if g.lastPlayerAction == ActionNone || g.lastPlayerAction == ActionCheck {
		// min bet is big blind when no bet yet
		minTotalRaiseTo = g.cfg.BigBlind
	}
	return acts, minTotalRaiseTo, nil
}

// Act applies an action for the current player.
// amount is the seat's intended total bet for this round (raise-to
// semantics). A non-nil handEnd means the hand ended and carries the
// settlement.
func (g *Engine) Act(chair uint16, action ActionType, amount int64) (handEnd *SettlementResult, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.processActionLocked(chair, action, amount, false)
}

// ForceTimeout applies the clock-expiry rule (§4.4): check if legal,
// otherwise fold. Callers (the table's turn timer) invoke this instead of
// Act when a seat fails to respond within its turn budget.
func (g *Engine) ForceTimeout(chair uint16) (*SettlementResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.corrupt != nil {
		return nil, g.corrupt
	}
	if g.ended {
		return nil, ErrHandEnded
	}
	if g.curNode == nil || g.curNode.Player == nil {
		return nil, ErrInvalidState("no current player")
	}
	if chair != g.curNode.ChairID {
		return nil, ErrOutOfTurn
	}

	g.emit(GameEvent{Type: EventPlayerTimeout, Seat: chair})

	forced := ActionFold
	for _, a := range g.calcNextValidActions(g.curNode.Player) {
		if a == ActionCheck {
			forced = ActionCheck
			break
		}
	}
	return g.processActionLocked(chair, forced, 0, true)
}

// processActionLocked applies action for chair. g.mu must already be held.
func (g *Engine) processActionLocked(chair uint16, action ActionType, amount int64, forced bool) (handEnd *SettlementResult, err error) {
	if g.corrupt != nil {
		return nil, g.corrupt
	}
	if g.ended {
		return nil, ErrHandEnded
	}
	if g.curNode == nil || g.curNode.Player == nil {
		return nil, ErrInvalidState("no current player")
	}
	if chair != g.curNode.ChairID {
		return nil, ErrOutOfTurn
	}

	player := g.curNode.Player

	// Validate action against legal list (pure projection)
	legal := g.calcNextValidActions(player)
	valid := false
	for _, a := range legal {
		if a == action {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("invalid action %s", action.String())
	}

	// amount normalization
	if amount < player.bet && action != ActionFold {
		if action != ActionCheck {
			return nil, fmt.Errorf("invalid amount %d < current bet %d", amount, player.bet)
		}
		amount = player.bet
	}

	// Overbet => All-in
	if amount-player.bet > player.stack {
		amount = player.stack + player.bet
		action = ActionAllIn
	}

	originalAction := action
	// Update betting state on increase
	if amount > g.curBet {
		validRaise := true
		switch action {
		case ActionAllIn:
			// a non-reopening all-in raise: below min-raise, does not reopen action
			if amount-g.curBet < g.MinRaise {
				validRaise = false
			}
		case ActionBet:
			if amount-g.curBet < g.cfg.BigBlind {
				return nil, fmt.Errorf("invalid bet amount")
			}
		case ActionRaise:
			if amount-g.curBet < g.MinRaise {
				return nil, fmt.Errorf("invalid raise amount")
			}
		}

		if validRaise {
			g.MinRaise = amount - g.curBet
			g.CurrentRaiser = chair
		}
		g.curBet = amount
		g.setNeedActionCountLocked()
	}

	player.setLastAction(action)
	player.actedThisRound = true
	g.emit(GameEvent{Type: EventActionTaken, Seat: chair, Action: &ActionTaken{
		Seat:   chair,
		Type:   action,
		Amount: amount,
		Forced: forced,
	}})
	switch action {
	case ActionBet, ActionRaise:
		player.placeBet(amount - player.bet)
	case ActionCall:
		if amount != g.curBet {
			available := player.stack + player.bet
			if available > g.curBet {
				amount = g.curBet
			} else {
				return nil, fmt.Errorf("invalid call amount")
			}
		}
		player.placeBet(amount - player.bet)
	case ActionCheck:
		// no-op
	case ActionFold:
		player.setFolded(true)
		g.activeCount--
		// remove from existing pots eligibility
		for i := range g.potManager.pots {
			delete(g.potManager.pots[i].eligiblePlayers, chair)
		}
		if g.activeCount <= 1 {
			g.noShowDown = true
			return g.endHandLocked()
		}
	case ActionAllIn:
		player.placeBet(player.stack)
		g.allinCount++
		_ = originalAction
	}

	if action != ActionFold {
		g.lastPlayerAction = action
	}

	g.NeedActionCount--
	nextNode, bettingEnd := g.calcNextActionPosAndBettingEndLocked()
	g.curNode = nextNode

	if bettingEnd {
		g.validActions = nil
		g.collectBetsLocked()

		if g.checkDirectShowdownLocked() || g.phase == PhaseRiver {
			if err := g.advanceToShowdownLocked(); err != nil {
				return nil, g.quarantineLocked(err)
			}
			return g.endHandLocked()
		}

		// next phase
		g.phase++
		if err := g.dealCommunityCardsLocked(); err != nil {
			return nil, g.quarantineLocked(err)
		}
		switch g.phase {
		case PhaseFlop:
			g.emit(GameEvent{Type: EventFlopDealt, Community: append([]card.Card{}, g.communityCards...)})
		case PhaseTurn:
			g.emit(GameEvent{Type: EventTurnDealt, Community: append([]card.Card{}, g.communityCards...)})
		case PhaseRiver:
			g.emit(GameEvent{Type: EventRiverDealt, Community: append([]card.Card{}, g.communityCards...)})
		}
		g.onPhaseStartLocked()
		return nil, nil
	}

	// continue betting
	if g.curNode == nil || g.curNode.Player == nil {
		return nil, ErrInvalidState("next player not found")
	}
	g.validActions = g.calcNextValidActions(g.curNode.Player)
	return nil, nil
}

func (g *Engine) onPhaseStartLocked() {
	// Reset per-phase betting state
	g.setNeedActionCountLocked()
	g.CurrentRaiser = InvalidChair
	for _, p := range g.playersByChair {
		if p != nil {
			p.setLastAction(ActionNone)
		}
	}

	switch g.phase {
	case PhasePreFlop:
		// blinds are treated as a bet
		g.lastPlayerAction = ActionBet
		// MinRaise already set by blinds (bb)
	default:
		g.lastPlayerAction = ActionNone
		g.MinRaise = g.cfg.BigBlind
	}

	if g.curNode != nil && g.curNode.Player != nil {
		g.validActions = g.calcNextValidActions(g.curNode.Player)
	}
}

func (g *Engine) shuffle() {
	if len(g.cfg.DeckOverride) > 0 {
		g.deck.load(g.cfg.DeckOverride)
		return
	}
	g.deck.reset()
	g.deck.shuffle(g.rng)
}

func (g *Engine) selectDealer() {
	nodes := make([]*PlayerNode, 0, len(g.chairIDNodes))
	for _, n := range g.chairIDNodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ChairID < nodes[j].ChairID })
	if len(nodes) == 0 {
		g.dealerNode = nil
		return
	}

	if fc := g.cfg.ForcedDealerChair; fc != nil {
		if n, ok := g.chairIDNodes[*fc]; ok {
			g.dealerNode = n
			return
		}
	}

	// first hand: random dealer
	if g.round == 1 || g.dealerNode == nil {
		g.dealerNode = nodes[g.rng.Intn(len(nodes))]
		return
	}

	// move button to next active seat (based on previous dealer chair)
	prevChair := g.dealerNode.ChairID
	if prevNode, ok := g.chairIDNodes[prevChair]; ok && prevNode.Next != nil {
		g.dealerNode = prevNode.Next
		return
	}

	// fallback
	g.dealerNode = nodes[g.rng.Intn(len(nodes))]
}

func (g *Engine) selectBlindsByDealer(dealer *PlayerNode) {
	if dealer == nil {
		return
	}
	if g.activeCount == 2 {
		// Heads-Up
		g.dealerNode = dealer
		g.smallBlindNode = dealer
		g.bigBlindNode = dealer.Next
		g.curNode = dealer
	} else {
		g.dealerNode = dealer
		g.smallBlindNode = dealer.Next
		g.bigBlindNode = g.smallBlindNode.Next
		g.curNode = g.bigBlindNode.Next
	}
}

func (g *Engine) dealHoleCards() error {
	if g.smallBlindNode == nil {
		return nil
	}
	for i := 0; i < 2; i++ {
		var dealErr error
		g.smallBlindNode.WalkAll(func(cur *PlayerNode) {
			if dealErr != nil {
				return
			}
			c, err := g.deck.dealCard()
			if err != nil {
				dealErr = err
				return
			}
			cur.Player.AddHandCard(c)
		})
		if dealErr != nil {
			return dealErr
		}
	}
	return nil
}

func (g *Engine) dealCommunityCardsLocked() error {
	shouldDeal := 0
	switch g.phase {
	case PhaseFlop:
		shouldDeal = 3
	case PhaseTurn, PhaseRiver:
		shouldDeal = 1
	case PhaseShowdown:
		shouldDeal = 5 - len(g.communityCards)
	}
	if shouldDeal <= 0 {
		return nil
	}
	cards, err := g.deck.dealCards(shouldDeal)
	if err != nil {
		return err
	}
	g.communityCards = append(g.communityCards, cards...)
	return nil
}

func (g *Engine) autoBetAntes() bool {
	if g.cfg.Ante == 0 {
		return false
	}
	notAllIn := 0
	for _, p := range g.playersByChair {
		if p == nil || p.stack <= 0 {
			continue
		}
		p.placeBet(g.cfg.Ante)
		if p.stack > 0 {
			notAllIn++
		}
	}
	g.allinCount = g.activeCount - notAllIn
	g.collectBetsLocked()
	return notAllIn <= 1
}

func (g *Engine) autoBetBlinds() bool {
	if g.smallBlindNode != nil && g.smallBlindNode.Player.stack > 0 && g.cfg.SmallBlind > 0 {
		g.smallBlindNode.Player.placeBet(g.cfg.SmallBlind)
		if g.smallBlindNode.Player.stack <= 0 {
			g.allinCount++
		}
	}
	if g.bigBlindNode != nil && g.bigBlindNode.Player.stack > 0 {
		g.bigBlindNode.Player.placeBet(g.cfg.BigBlind)
		if g.bigBlindNode.Player.stack <= 0 {
			g.allinCount++
		}
	}

	if g.activeCount == g.allinCount {
		return true
	}

	g.lastPlayerAction = ActionBet
	g.MinRaise = g.cfg.BigBlind
	g.curBet = g.cfg.BigBlind
	return false
}

func (g *Engine) collectBetsLocked() {
	playersWithBets := make([]*Player, 0, g.activeCount)
	for chair := uint16(0); chair < uint16(g.cfg.MaxPlayers); chair++ {
		p := g.playersByChair[chair]
		if p == nil {
			continue
		}
		if p.bet > 0 {
			playersWithBets = append(playersWithBets, p)
		}
	}
	g.potManager.calcPotsByPlayerBets(playersWithBets)
	for _, p := range playersWithBets {
		p.resetBet()
	}
	g.curBet = 0
}

func (g *Engine) setNeedActionCountLocked() {
	g.NeedActionCount = g.activeCount - g.allinCount
	for _, p := range g.playersByChair {
		if p != nil && !p.folded && !p.allIn {
			p.actedThisRound = false
		}
	}
}

// calcNextValidActions is a pure projection of the current state (§4.3).
func (g *Engine) calcNextValidActions(nextPlayer *Player) []ActionType {
	nextValid := []ActionType{ActionAllIn, ActionFold}
	canCall := false

	switch g.lastPlayerAction {
	case ActionCheck, ActionNone:
		nextValid = append(nextValid, ActionCheck)
		if nextPlayer.stack > g.cfg.BigBlind {
			nextValid = append(nextValid, ActionBet)
		}

	case ActionBet, ActionRaise, ActionAllIn, ActionCall:
		available := nextPlayer.stack + nextPlayer.bet

		if nextPlayer.bet == g.curBet {
			nextValid = append(nextValid, ActionCheck)
		} else if available > g.curBet {
			nextValid = append(nextValid, ActionCall)
			canCall = true
		}

		canRaise := available > g.curBet+g.MinRaise
		isReopen := g.CurrentRaiser != nextPlayer.ChairID()
		if canRaise && isReopen && g.activeCount-g.allinCount > 1 {
			nextValid = append(nextValid, ActionRaise)
		}

		// remove all-in option if action is locked
		if (canCall && g.activeCount-g.allinCount <= 1) || (canRaise && !isReopen) {
			if len(nextValid) > 0 {
				nextValid = nextValid[1:]
			}
		}
	}
	return nextValid
}

// calcNextActionPosAndBettingEndLocked computes the next seat to act and
// whether the betting round has closed.
func (g *Engine) calcNextActionPosAndBettingEndLocked() (*PlayerNode, bool) {
	if g.NeedActionCount == 0 {
		if g.phase == PhaseRiver {
			return nil, true
		}
		var first *PlayerNode
		// The heads-up first-to-act rule depends on the hand's starting seat
		// count, not the live activeCount (which drops to 2 after folds in a
		// 3+ way hand).
		if len(g.chairIDNodes) == 2 {
			first = g.bigBlindNode
		} else {
			first = g.smallBlindNode
		}
		node := first.WalkOnce(func(n *PlayerNode) bool {
			return n.Player != nil && !n.Player.folded && n.Player.stack > 0
		})
		return node, true
	}

	nextNode := g.curNode.Next.WalkOnce(func(n *PlayerNode) bool {
		return n.Player != nil && !n.Player.folded && n.Player.stack > 0
	})
	if nextNode != nil {
		if nextNode.Player.bet >= g.curBet && g.NeedActionCount == 1 && g.activeCount-g.allinCount == 1 {
			return nextNode, true
		}
		return nextNode, false
	}
	return nil, true
}

func (g *Engine) checkDirectShowdownLocked() bool {
	return g.allinCount >= g.activeCount-1
}

func (g *Engine) advanceToShowdownLocked() error {
	g.phase = PhaseShowdown
	return g.dealCommunityCardsLocked()
}

func (g *Engine) endHandLocked() (*SettlementResult, error) {
	g.phase = PhaseHandComplete
	settle, err := g.SettleShowdown()
	if err != nil {
		return nil, err
	}
	g.lastSettlement = settle
	g.ended = true

	// A hand that ends by everyone-but-one folding never reaches a real
	// showdown, so it gets a single terminal hand_complete event and no
	// separate showdown_complete.
	if !g.noShowDown {
		g.emit(GameEvent{Type: EventShowdownComplete, Settle: settle})
	}
	g.emit(GameEvent{Type: EventHandComplete, Settle: settle})
	return settle, nil
}
