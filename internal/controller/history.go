package controller

import (
	"fmt"
	"time"

	"botholdem/holdem"
	"botholdem/internal/ledger"
)

// HistoryBroadcaster decorates a Broadcaster with a per-seat write into the
// ledger on every completed hand, then forwards the event unchanged. It
// lets the Manager wire a single ledger.Service across every table without
// the dispatcher itself needing to know about hand history.
type HistoryBroadcaster struct {
	inner  Broadcaster
	ledger ledger.Service
}

func NewHistoryBroadcaster(inner Broadcaster, svc ledger.Service) *HistoryBroadcaster {
	return &HistoryBroadcaster{inner: inner, ledger: svc}
}

func (h *HistoryBroadcaster) Send(userID uint64, ev holdem.GameEvent) {
	if ev.Type == holdem.EventHandComplete && ev.Settle != nil {
		h.recordHand(userID, ev)
	}
	h.inner.Send(userID, ev)
}

func (h *HistoryBroadcaster) recordHand(userID uint64, ev holdem.GameEvent) {
	handID := fmt.Sprintf("%s-%d", ev.GameID, ev.HandNumber)

	var chair uint16 = holdem.InvalidChair
	if ev.Snapshot != nil {
		for _, p := range ev.Snapshot.Players {
			if p.ID == userID {
				chair = p.Chair
				break
			}
		}
	}
	var winAmount int64
	for _, pr := range ev.Settle.PlayerResults {
		if pr.Chair == chair {
			winAmount = pr.WinAmount
			break
		}
	}

	summary := map[string]any{
		"game_id":     ev.GameID,
		"hand_number": ev.HandNumber,
		"pot_count":   len(ev.Settle.PotResults),
		"win_amount":  winAmount,
	}
	h.ledger.UpsertLiveHistory(userID, handID, time.Now(), summary)
}
