package controller

import (
	"botholdem/holdem"
)

// onEngineEvent is registered with holdem.Engine.OnEvent. It runs
// synchronously while the engine's internal lock is held, so it must never
// call back into the engine (Act, Snapshot, ForceTimeout) — only read the
// event's own attached Snapshot, fan the event out to subscribers, and
// arm/disarm timers whose callbacks fire later, outside this call.
func (t *Table) onEngineEvent(ev holdem.GameEvent) {
	t.fanOut(ev)

	if t.recorder != nil {
		if err := t.recorder.RecordEvent(t.ID, ev); err != nil {
			t.logger.Warn().Err(err).Msg("replay recorder failed to record event")
		}
	}

	switch ev.Type {
	case holdem.EventHandStarted:
		t.cancelNextHandTimer()
	case holdem.EventBlindsPosted, holdem.EventActionTaken, holdem.EventHoleCardsDealt,
		holdem.EventFlopDealt, holdem.EventTurnDealt, holdem.EventRiverDealt:
		t.rescheduleTurnTimer(ev)
	case holdem.EventHandComplete:
		t.cancelTurnTimers()
		t.scheduleNextHand()
	}
}

// fanOut delivers a seat-visibility-filtered copy of ev to every seated
// user. No copy goes to observers who hold no seat.
func (t *Table) fanOut(ev holdem.GameEvent) {
	t.mu.RLock()
	seats := make(map[uint16]uint64, len(t.seats))
	for chair, s := range t.seats {
		seats[chair] = s.UserID
	}
	t.mu.RUnlock()

	revealAll := ev.Type == holdem.EventShowdownComplete || ev.Type == holdem.EventHandComplete

	for chair, userID := range seats {
		out := ev
		if ev.Snapshot != nil {
			filtered := FilterForSeat(*ev.Snapshot, chair, revealAll)
			out.Snapshot = &filtered
		}
		t.broadcaster.Send(userID, out)
	}
}

// broadcastToAll sends ev, unfiltered, to every connected seat. Only used
// for events with no hole-card content (turn_warning today).
func (t *Table) broadcastToAll(ev holdem.GameEvent) {
	t.mu.RLock()
	userIDs := make([]uint64, 0, len(t.seats))
	for _, s := range t.seats {
		userIDs = append(userIDs, s.UserID)
	}
	t.mu.RUnlock()
	for _, userID := range userIDs {
		t.broadcaster.Send(userID, ev)
	}
}

func (t *Table) rescheduleTurnTimer(ev holdem.GameEvent) {
	if ev.Snapshot == nil {
		return
	}
	chair := ev.Snapshot.ActionChair
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelTurnTimersLocked()
	if chair == holdem.InvalidChair || ev.Snapshot.Ended {
		return
	}
	t.actionChair = chair

	limit := t.cfg.turnTimeLimit()
	warnAt := limit * 8 / 10

	t.warningTimer = t.clock.AfterFunc(warnAt, func() {
		t.broadcastToAll(holdem.GameEvent{Type: holdem.EventTurnWarning, Seat: chair})
	})
	t.expiryTimer = t.clock.AfterFunc(limit, func() {
		if err := t.ForceTimeoutChair(chair); err != nil {
			t.logger.Warn().Err(err).Uint16("chair", chair).Msg("force timeout failed")
		}
	})
}

func (t *Table) cancelTurnTimers() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelTurnTimersLocked()
}

func (t *Table) cancelTurnTimersLocked() {
	if t.warningTimer != nil {
		t.warningTimer.Stop()
		t.warningTimer = nil
	}
	if t.expiryTimer != nil {
		t.expiryTimer.Stop()
		t.expiryTimer = nil
	}
	t.actionChair = holdem.InvalidChair
}

func (t *Table) cancelTimers() {
	t.cancelTurnTimers()
	t.cancelNextHandTimer()
}

func (t *Table) cancelNextHandTimer() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.nextHandTimer != nil {
		t.nextHandTimer.Stop()
		t.nextHandTimer = nil
	}
}

func (t *Table) scheduleNextHand() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || len(t.seats) < 2 {
		return
	}
	if t.nextHandTimer != nil {
		t.nextHandTimer.Stop()
	}
	t.nextHandTimer = t.clock.AfterFunc(t.cfg.handStartDelay(), func() {
		if err := t.handleStartHand(); err != nil {
			t.logger.Warn().Err(err).Msg("scheduled hand start failed")
		}
	})
}

// ForceTimeoutChair applies the clock-expiry rule for chair, routed
// through the command queue like any other state-changing call.
func (t *Table) ForceTimeoutChair(chair uint16) error {
	return t.submit(command{kind: cmdTimeout, chair: chair})
}

func (t *Table) handleTimeout(chair uint16) error {
	_, err := t.engine.ForceTimeout(chair)
	return err
}
