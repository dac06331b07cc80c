// Package controller implements GameController (C7): the single-writer
// actor that owns one table's holdem.Engine, turn timers, and auto-start
// policy, and fans out engine events to connected seats through a
// Broadcaster.
package controller

import (
	"fmt"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"botholdem/holdem"
	"botholdem/replay"
)

// StartPolicy decides when a new hand is allowed to begin.
type StartPolicy struct {
	// MinPlayers is the seat count required before a hand auto-starts.
	// Zero means manual start only (StartHandNow must be called).
	MinPlayers int
}

// Config is the controller-owned configuration layered on top of
// holdem.EngineConfig: mechanics stay in the engine, table lifecycle policy
// lives here.
type Config struct {
	Engine holdem.EngineConfig

	TurnTimeLimit  time.Duration
	HandStartDelay time.Duration
	IdleSeatTTL    time.Duration
	Start          StartPolicy
}

func (c Config) turnTimeLimit() time.Duration {
	if c.TurnTimeLimit <= 0 {
		return 20 * time.Second
	}
	return c.TurnTimeLimit
}

func (c Config) handStartDelay() time.Duration {
	if c.HandStartDelay <= 0 {
		return 2 * time.Second
	}
	return c.HandStartDelay
}

func (c Config) idleSeatTTL() time.Duration {
	if c.IdleSeatTTL <= 0 {
		return 30 * time.Second
	}
	return c.IdleSeatTTL
}

// Broadcaster delivers a seat-scoped GameEvent to exactly one connected
// user. The controller has already applied the hole-card visibility filter
// by the time Send is called (§9: "visibility as projection, not
// privilege") — Send only needs to wire-encode and push the bytes.
type Broadcaster interface {
	Send(userID uint64, ev holdem.GameEvent)
}

// Seat tracks what the controller knows about an occupied chair beyond
// what the engine itself tracks (connection liveness, nickname).
type Seat struct {
	UserID   uint64
	Nickname string
	Online   bool
	LastSeen time.Time
}

type commandType int

const (
	cmdSitDown commandType = iota
	cmdStandUp
	cmdAction
	cmdStartHand
	cmdConnLost
	cmdConnResume
	cmdTimeout
	cmdClose
)

type command struct {
	kind     commandType
	userID   uint64
	nickname string
	chair    uint16
	buyIn    int64
	action   holdem.ActionType
	amount   int64
	reply    chan error
}

// ErrTableClosed is returned by any command submitted after Close.
var ErrTableClosed = fmt.Errorf("table closed")

// Table is one GameController instance: single-writer actor over one
// holdem.Engine.
type Table struct {
	ID  string
	cfg Config

	engine      *holdem.Engine
	broadcaster Broadcaster
	clock       quartz.Clock
	logger      zerolog.Logger
	recorder    *replay.Recorder

	commands chan command
	done     chan struct{}
	stopOnce sync.Once

	mu         sync.RWMutex
	seats      map[uint16]*Seat
	closed     bool
	emptySince time.Time

	actionChair    uint16
	warningTimer   *quartz.Timer
	expiryTimer    *quartz.Timer
	nextHandTimer  *quartz.Timer
	autoStartArmed bool
}

// New constructs and starts a table actor. recorder may be nil, in which
// case the table's history is not captured for replay.
func New(id string, cfg Config, broadcaster Broadcaster, clock quartz.Clock, recorder *replay.Recorder) (*Table, error) {
	engine, err := holdem.NewEngine(cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	engine.GameID = id
	if clock == nil {
		clock = quartz.NewReal()
	}

	t := &Table{
		ID:          id,
		cfg:         cfg,
		engine:      engine,
		broadcaster: broadcaster,
		clock:       clock,
		logger:      log.With().Str("table_id", id).Logger(),
		recorder:    recorder,
		commands:    make(chan command, 256),
		done:        make(chan struct{}),
		seats:       make(map[uint16]*Seat),
		actionChair: holdem.InvalidChair,
		emptySince:  clock.Now(),
	}
	t.engine.OnEvent(t.onEngineEvent)

	if recorder != nil {
		if err := recorder.StartRecording(id, cfg.Engine, engine.Snapshot(), nil); err != nil {
			t.logger.Warn().Err(err).Msg("replay recorder failed to start")
		}
	}

	go t.run()
	t.logger.Info().
		Int("max_players", cfg.Engine.MaxPlayers).
		Int64("small_blind", cfg.Engine.SmallBlind).
		Int64("big_blind", cfg.Engine.BigBlind).
		Msg("table created")
	return t, nil
}

func (t *Table) run() {
	for {
		select {
		case cmd := <-t.commands:
			err := t.dispatch(cmd)
			if cmd.reply != nil {
				cmd.reply <- err
			}
		case <-t.done:
			return
		}
	}
}

func (t *Table) submit(cmd command) error {
	cmd.reply = make(chan error, 1)

	t.mu.RLock()
	closed := t.closed
	t.mu.RUnlock()
	if closed {
		return ErrTableClosed
	}

	select {
	case t.commands <- cmd:
	case <-t.done:
		return ErrTableClosed
	}

	select {
	case err := <-cmd.reply:
		return err
	case <-t.done:
		return ErrTableClosed
	}
}

func (t *Table) dispatch(cmd command) error {
	switch cmd.kind {
	case cmdSitDown:
		return t.handleSitDown(cmd.userID, cmd.nickname, cmd.chair, cmd.buyIn)
	case cmdStandUp:
		return t.handleStandUp(cmd.userID)
	case cmdAction:
		return t.handleAction(cmd.userID, cmd.action, cmd.amount)
	case cmdStartHand:
		return t.handleStartHand()
	case cmdConnLost:
		return t.handleConnLost(cmd.userID)
	case cmdConnResume:
		return t.handleConnResume(cmd.userID, cmd.nickname)
	case cmdTimeout:
		return t.handleTimeout(cmd.chair)
	case cmdClose:
		t.closeLocked()
		return nil
	default:
		return fmt.Errorf("unknown command kind %d", cmd.kind)
	}
}

// --- public API, all routed through the command queue ---

func (t *Table) SitDown(userID uint64, nickname string, chair uint16, buyIn int64) error {
	return t.submit(command{kind: cmdSitDown, userID: userID, nickname: nickname, chair: chair, buyIn: buyIn})
}

func (t *Table) StandUp(userID uint64) error {
	return t.submit(command{kind: cmdStandUp, userID: userID})
}

func (t *Table) Act(userID uint64, action holdem.ActionType, amount int64) error {
	return t.submit(command{kind: cmdAction, userID: userID, action: action, amount: amount})
}

func (t *Table) StartHandNow() error {
	return t.submit(command{kind: cmdStartHand})
}

func (t *Table) ConnLost(userID uint64) error {
	return t.submit(command{kind: cmdConnLost, userID: userID})
}

func (t *Table) ConnResume(userID uint64, nickname string) error {
	return t.submit(command{kind: cmdConnResume, userID: userID, nickname: nickname})
}

func (t *Table) Close() {
	t.stopOnce.Do(func() {
		_ = t.submit(command{kind: cmdClose})
		close(t.done)
	})
}

func (t *Table) Snapshot() holdem.Snapshot { return t.engine.Snapshot() }

// GetPossibleActions exposes ActionValidator's closed action set (C4) for
// the seat occupied by userID. Used by the dispatcher's state.actions.
func (t *Table) GetPossibleActions(userID uint64) ([]holdem.ActionBound, error) {
	chair, ok := t.chairForUser(userID)
	if !ok {
		return nil, fmt.Errorf("player not seated")
	}
	return t.engine.GetPossibleActions(chair)
}

// MaxPlayers reports the table's seat capacity, for game.list summaries.
func (t *Table) MaxPlayers() int { return t.cfg.Engine.MaxPlayers }

// TurnTimeLimit reports the configured per-turn clock (§4.6), for the
// dispatcher's turn.start{timeLimit} message.
func (t *Table) TurnTimeLimit() time.Duration { return t.cfg.turnTimeLimit() }

func (t *Table) IsClosed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}

// IsIdleFor reports whether the table has had zero occupied seats for at
// least ttl.
func (t *Table) IsIdleFor(ttl time.Duration) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return true
	}
	if len(t.seats) > 0 {
		return false
	}
	if t.emptySince.IsZero() {
		return false
	}
	return t.clock.Since(t.emptySince) >= ttl
}

// SeatCount reports how many chairs are currently occupied.
func (t *Table) SeatCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.seats)
}

// Seats returns a snapshot copy of the controller's seat bookkeeping,
// keyed by chair.
func (t *Table) Seats() map[uint16]Seat {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[uint16]Seat, len(t.seats))
	for chair, s := range t.seats {
		out[chair] = *s
	}
	return out
}

// HasUser reports whether userID currently occupies a seat at this table.
func (t *Table) HasUser(userID uint64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, s := range t.seats {
		if s.UserID == userID {
			return true
		}
	}
	return false
}
