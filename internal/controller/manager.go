package controller

import (
	"fmt"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"botholdem/replay"
)

const (
	defaultIdleTableTTL    = 60 * time.Second
	defaultCleanupInterval = 30 * time.Second
)

// Manager owns the set of live tables (the multi-table half of
// GameController, C7) and the idle/offline-seat housekeeping loop.
type Manager struct {
	mu            sync.RWMutex
	tables        map[string]*Table
	defaultConfig Config
	broadcaster   Broadcaster
	clock         quartz.Clock
	logger        zerolog.Logger
	recorder      *replay.Recorder

	idleTableTTL    time.Duration
	cleanupInterval time.Duration
	done            chan struct{}
	stopOnce        sync.Once
}

// NewManager builds a table registry sharing one Broadcaster (the gateway)
// and one clock across every table it creates.
func NewManager(defaultConfig Config, broadcaster Broadcaster, clock quartz.Clock) *Manager {
	if clock == nil {
		clock = quartz.NewReal()
	}
	m := &Manager{
		tables:          make(map[string]*Table),
		defaultConfig:   defaultConfig,
		broadcaster:     broadcaster,
		clock:           clock,
		logger:          log.With().Str("component", "table_manager").Logger(),
		idleTableTTL:    defaultIdleTableTTL,
		cleanupInterval: defaultCleanupInterval,
		done:            make(chan struct{}),
	}
	go m.housekeepingLoop()
	return m
}

// SetRecorder attaches a ReplayRecorder (C8); every table created after
// this call records its history through it. Tables already live keep
// running unrecorded.
func (m *Manager) SetRecorder(recorder *replay.Recorder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorder = recorder
}

// QuickJoin resumes the table a user is already seated at, or seats them
// at the first table with a free chair, or creates a new one. Grounded in
// the reconnect-before-seating-new pattern: always prefer a table where
// the user is already seated over finding a new seat.
func (m *Manager) QuickJoin(userID uint64, nickname string, buyIn int64) (*Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, t := range m.tables {
		if t.IsClosed() {
			delete(m.tables, id)
			continue
		}
		if t.HasUser(userID) {
			return t, nil
		}
	}

	for id, t := range m.tables {
		if t.IsClosed() {
			delete(m.tables, id)
			continue
		}
		if t.SeatCount() < m.defaultConfig.Engine.MaxPlayers {
			if err := t.SitDown(userID, nickname, firstOpenChair(t), buyIn); err == nil {
				return t, nil
			}
		}
	}

	tableID := uuid.NewString()
	t, err := New(tableID, m.defaultConfig, m.broadcaster, m.clock, m.recorder)
	if err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	m.tables[tableID] = t
	if err := t.SitDown(userID, nickname, 0, buyIn); err != nil {
		return nil, err
	}
	m.logger.Info().Str("table_id", tableID).Uint64("user_id", userID).Msg("created table for quick join")
	return t, nil
}

// JoinGame seats userID at the table named by gameId. An empty gameId
// falls back to QuickJoin's affinity-first matchmaking (§6's game.join
// makes gameId mandatory, but an empty string is treated as "any table"
// to keep the one matchmaking policy in one place).
func (m *Manager) JoinGame(gameId string, userID uint64, nickname string, buyIn int64) (*Table, error) {
	if gameId == "" {
		return m.QuickJoin(userID, nickname, buyIn)
	}

	m.mu.RLock()
	t, ok := m.tables[gameId]
	m.mu.RUnlock()
	if !ok || t.IsClosed() {
		return nil, fmt.Errorf("unknown game %q", gameId)
	}
	if t.HasUser(userID) {
		return t, nil
	}
	if err := t.SitDown(userID, nickname, firstOpenChair(t), buyIn); err != nil {
		return nil, err
	}
	return t, nil
}

// GameSummary is one row of a game.list response.
type GameSummary struct {
	GameID     string
	SeatCount  int
	MaxPlayers int
}

// ListGames returns a summary of every live, joinable table.
func (m *Manager) ListGames() []GameSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]GameSummary, 0, len(m.tables))
	for id, t := range m.tables {
		if t.IsClosed() {
			continue
		}
		out = append(out, GameSummary{GameID: id, SeatCount: t.SeatCount(), MaxPlayers: t.MaxPlayers()})
	}
	return out
}

func firstOpenChair(t *Table) uint16 {
	taken := t.Seats()
	for chair := uint16(0); chair < uint16(t.cfg.Engine.MaxPlayers); chair++ {
		if _, occupied := taken[chair]; !occupied {
			return chair
		}
	}
	return 0
}

// Table returns a table by id, or nil.
func (m *Manager) Table(id string) *Table {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tables[id]
}

// ListTables returns every live table id.
func (m *Manager) ListTables() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.tables))
	for id := range m.tables {
		ids = append(ids, id)
	}
	return ids
}

func (m *Manager) housekeepingLoop() {
	ticker := m.clock.NewTicker(m.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.tick()
		case <-m.done:
			return
		}
	}
}

func (m *Manager) tick() {
	m.mu.RLock()
	tables := make([]*Table, 0, len(m.tables))
	for _, t := range m.tables {
		tables = append(tables, t)
	}
	m.mu.RUnlock()

	for _, t := range tables {
		t.ReleaseOfflineSeats()
	}
	m.CleanupIdleTables()
}

// CleanupIdleTables removes and stops tables that have had zero occupied
// seats for longer than the idle TTL.
func (m *Manager) CleanupIdleTables() int {
	m.mu.Lock()
	idle := make([]*Table, 0)
	for id, t := range m.tables {
		if t.IsClosed() || t.IsIdleFor(m.idleTableTTL) {
			delete(m.tables, id)
			idle = append(idle, t)
		}
	}
	m.mu.Unlock()

	for _, t := range idle {
		emptySince := t.emptySince
		t.Close()
		entry := m.logger.Info().Str("table_id", t.ID)
		if !emptySince.IsZero() {
			entry = entry.Str("empty_since", humanize.Time(emptySince))
		}
		entry.Msg("removed idle table")
	}
	return len(idle)
}

// Stop shuts down housekeeping and every table.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
		m.mu.Lock()
		tables := make([]*Table, 0, len(m.tables))
		for _, t := range m.tables {
			tables = append(tables, t)
		}
		m.tables = make(map[string]*Table)
		m.mu.Unlock()
		for _, t := range tables {
			t.Close()
		}
	})
}
