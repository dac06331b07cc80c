package controller

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"botholdem/holdem"
)

func normalizeNickname(raw string, userID uint64) string {
	n := strings.TrimSpace(raw)
	if n == "" {
		return fmt.Sprintf("user_%d", userID)
	}
	return n
}

func (t *Table) handleSitDown(userID uint64, nickname string, chair uint16, buyIn int64) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrTableClosed
	}
	for _, s := range t.seats {
		if s.UserID == userID {
			t.mu.Unlock()
			return fmt.Errorf("already seated")
		}
	}
	minBuyIn, maxBuyIn := t.cfg.Engine.MinBuyIn, t.cfg.Engine.MaxBuyIn
	if minBuyIn > 0 && buyIn < minBuyIn || maxBuyIn > 0 && buyIn > maxBuyIn {
		t.mu.Unlock()
		return fmt.Errorf("invalid buy-in %d (range %d-%d)", buyIn, minBuyIn, maxBuyIn)
	}
	t.mu.Unlock()

	if err := t.engine.SitDown(chair, userID, buyIn, false); err != nil {
		return err
	}

	now := t.clock.Now()
	t.mu.Lock()
	t.seats[chair] = &Seat{UserID: userID, Nickname: normalizeNickname(nickname, userID), Online: true, LastSeen: now}
	t.emptySince = time.Time{}
	t.mu.Unlock()

	t.logger.Info().Uint64("user_id", userID).Uint16("chair", chair).Int64("buy_in", buyIn).
		Str("buy_in_human", humanize.Comma(buyIn)).Msg("seat taken")
	t.maybeAutoStart()
	return nil
}

func (t *Table) handleStandUp(userID uint64) error {
	t.mu.Lock()
	var chair uint16 = holdem.InvalidChair
	for c, s := range t.seats {
		if s.UserID == userID {
			chair = c
			break
		}
	}
	if chair == holdem.InvalidChair {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	if err := t.engine.StandUp(chair); err != nil {
		return err
	}

	t.mu.Lock()
	delete(t.seats, chair)
	if len(t.seats) == 0 {
		t.emptySince = t.clock.Now()
	}
	t.mu.Unlock()

	t.logger.Info().Uint64("user_id", userID).Uint16("chair", chair).Msg("seat vacated")
	return nil
}

func (t *Table) handleAction(userID uint64, action holdem.ActionType, amount int64) error {
	chair, ok := t.chairForUser(userID)
	if !ok {
		return fmt.Errorf("player not seated")
	}

	snap := t.engine.Snapshot()
	if snap.ActionChair != chair {
		return holdem.ErrOutOfTurn
	}
	// Client call amount may arrive as either total-to amount or delta-to-call;
	// normalize on the server so CALL always targets the current street bet.
	if action == holdem.ActionCall {
		amount = snap.CurBet
	}

	// Hand-complete scheduling (next-hand delay, timer teardown) happens
	// from onEngineEvent as the engine emits hand_complete, not here.
	_, err := t.engine.Act(chair, action, amount)
	return err
}

func (t *Table) handleStartHand() error {
	t.mu.RLock()
	seated := len(t.seats)
	t.mu.RUnlock()
	if seated < 2 {
		return nil
	}
	if err := t.engine.StartHand(); err != nil {
		return fmt.Errorf("start hand: %w", err)
	}
	return nil
}

func (t *Table) handleConnLost(userID uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.seats {
		if s.UserID == userID {
			s.Online = false
			s.LastSeen = t.clock.Now()
			break
		}
	}
	return nil
}

func (t *Table) handleConnResume(userID uint64, nickname string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.seats {
		if s.UserID == userID {
			s.Online = true
			s.Nickname = normalizeNickname(nickname, userID)
			s.LastSeen = t.clock.Now()
			break
		}
	}
	return nil
}

func (t *Table) closeLocked() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	t.cancelTimers()

	if t.recorder != nil {
		if err := t.recorder.EndRecording(t.ID, t.engine.Snapshot()); err != nil {
			t.logger.Warn().Err(err).Msg("replay recorder failed to end recording")
		}
	}
}

func (t *Table) chairForUser(userID uint64) (uint16, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for c, s := range t.seats {
		if s.UserID == userID {
			return c, true
		}
	}
	return holdem.InvalidChair, false
}

// maybeAutoStart starts a hand once the table's StartPolicy is satisfied
// and no hand is already live.
func (t *Table) maybeAutoStart() {
	if t.cfg.Start.MinPlayers <= 0 {
		return
	}
	t.mu.RLock()
	seated := len(t.seats)
	t.mu.RUnlock()
	if seated < t.cfg.Start.MinPlayers {
		return
	}
	snap := t.engine.Snapshot()
	if snap.HandNumber > 0 && !snap.Ended {
		return
	}
	if err := t.handleStartHand(); err != nil {
		t.logger.Warn().Err(err).Msg("auto-start failed")
	}
}

// ReleaseOfflineSeats stands up any seat that has been disconnected past
// the idle TTL. Invoked by the housekeeping ticker the Manager drives.
func (t *Table) ReleaseOfflineSeats() {
	t.mu.RLock()
	now := t.clock.Now()
	stale := make([]uint64, 0)
	for _, s := range t.seats {
		if s.Online {
			continue
		}
		if now.Sub(s.LastSeen) >= t.cfg.idleSeatTTL() {
			stale = append(stale, s.UserID)
		}
	}
	t.mu.RUnlock()

	for _, userID := range stale {
		if err := t.StandUp(userID); err != nil {
			t.logger.Warn().Err(err).Uint64("user_id", userID).Msg("auto stand-up of offline seat failed")
		}
	}
}
