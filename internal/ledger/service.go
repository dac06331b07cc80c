package ledger

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	defaultRecentLimit = 200
	defaultSavedLimit  = 50
)

type Source string

const (
	SourceLive    Source = "live"
	SourceReplay  Source = "replay"
	SourceSandbox Source = "sandbox"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrSavedLimitReach = errors.New("saved hand limit reached")
)

// Service is the audit-trail collaborator the gateway/replay recorder
// write hand history to. Persistent-storage backends are out of scope
// (spec §1 "Non-goals"); this package exposes only the interface boundary
// plus an in-memory implementation suitable for a single-process
// deployment and for tests.
type Service interface {
	Close() error
	UpsertLiveHistory(userID uint64, handID string, playedAt time.Time, summary map[string]any)
	UpsertLiveHistoryWithEvents(
		userID uint64,
		handID string,
		playedAt time.Time,
		summary map[string]any,
		events []EventItem,
	)
	UpsertReplayHand(ctx context.Context, userID uint64, handID string, events []EventItem, summary map[string]any) error
	ListRecent(ctx context.Context, userID uint64, source Source, limit int) ([]HistoryItem, error)
	GetHandEvents(ctx context.Context, userID uint64, source Source, handID string) ([]EventItem, error)
	SetSaved(ctx context.Context, userID uint64, source Source, handID string, saved bool) error
}

type HistoryItem struct {
	HandID    string         `json:"hand_id"`
	Source    Source         `json:"source"`
	PlayedAt  time.Time      `json:"played_at"`
	IsSaved   bool           `json:"is_saved"`
	SavedAt   *time.Time     `json:"saved_at,omitempty"`
	Summary   map[string]any `json:"summary"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// EventItem is one wire-encoded GameEvent, kept alongside a hand's history
// row for later inspection by a bot's own tooling (spec §4.7 ReplayRecorder
// is the authoritative replay store; this is the lighter per-user index).
type EventItem struct {
	Seq         uint64 `json:"seq"`
	EventType   string `json:"event_type"`
	EnvelopeB64 string `json:"envelope_b64"`
	ServerTsMs  *int64 `json:"server_ts_ms,omitempty"`
}

type noopService struct{}

// NewNoopService discards every write. Used when no history/audit trail is
// wanted at all (e.g. ephemeral sandbox tables).
func NewNoopService() Service { return &noopService{} }

func (n *noopService) Close() error { return nil }

func (n *noopService) UpsertLiveHistory(_ uint64, _ string, _ time.Time, _ map[string]any) {}

func (n *noopService) UpsertLiveHistoryWithEvents(
	_ uint64,
	_ string,
	_ time.Time,
	_ map[string]any,
	_ []EventItem,
) {
}

func (n *noopService) UpsertReplayHand(_ context.Context, _ uint64, _ string, _ []EventItem, _ map[string]any) error {
	return nil
}

func (n *noopService) ListRecent(_ context.Context, _ uint64, _ Source, _ int) ([]HistoryItem, error) {
	return []HistoryItem{}, nil
}

func (n *noopService) GetHandEvents(_ context.Context, _ uint64, _ Source, _ string) ([]EventItem, error) {
	return []EventItem{}, nil
}

func (n *noopService) SetSaved(_ context.Context, _ uint64, _ Source, _ string, _ bool) error {
	return nil
}

type memoryRecord struct {
	item   HistoryItem
	events []EventItem
}

type memoryKey struct {
	userID uint64
	source Source
	handID string
}

// MemoryService is the in-memory Service used for single-binary
// deployments and tests; it replaces the teacher's PostgresService, whose
// schema and `lib/pq` driver depended on external storage explicitly
// placed out of scope.
type MemoryService struct {
	mu          sync.Mutex
	records     map[memoryKey]*memoryRecord
	recentLimit int
	savedLimit  int
}

func NewMemoryService() *MemoryService {
	return &MemoryService{
		records:     make(map[memoryKey]*memoryRecord),
		recentLimit: defaultRecentLimit,
		savedLimit:  defaultSavedLimit,
	}
}

func (s *MemoryService) Close() error { return nil }

func (s *MemoryService) UpsertLiveHistory(userID uint64, handID string, playedAt time.Time, summary map[string]any) {
	s.upsert(userID, SourceLive, handID, playedAt, summary, nil)
}

func (s *MemoryService) UpsertLiveHistoryWithEvents(
	userID uint64,
	handID string,
	playedAt time.Time,
	summary map[string]any,
	events []EventItem,
) {
	s.upsert(userID, SourceLive, handID, playedAt, summary, events)
}

func (s *MemoryService) UpsertReplayHand(_ context.Context, userID uint64, handID string, events []EventItem, summary map[string]any) error {
	if userID == 0 || strings.TrimSpace(handID) == "" {
		return ErrNotFound
	}
	if len(events) == 0 {
		return errors.New("events is required")
	}
	if summary == nil {
		summary = map[string]any{}
	}
	if _, ok := summary["event_count"]; !ok {
		summary["event_count"] = len(events)
	}
	s.upsert(userID, SourceReplay, handID, time.Now().UTC(), summary, events)
	return nil
}

func (s *MemoryService) upsert(userID uint64, source Source, handID string, playedAt time.Time, summary map[string]any, events []EventItem) {
	if userID == 0 || strings.TrimSpace(handID) == "" {
		return
	}
	if playedAt.IsZero() {
		playedAt = time.Now().UTC()
	}
	if summary == nil {
		summary = map[string]any{}
	}

	key := memoryKey{userID: userID, source: source, handID: handID}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.records[key]
	if !exists {
		rec = &memoryRecord{item: HistoryItem{HandID: handID, Source: source}}
		s.records[key] = rec
	}
	rec.item.PlayedAt = playedAt
	rec.item.Summary = summary
	rec.item.UpdatedAt = time.Now().UTC()
	if len(events) > 0 {
		rec.events = events
	}

	s.trimLocked(userID, source)
}

// trimLocked drops the oldest non-saved rows for (userID, source) past
// recentLimit. Caller must hold s.mu.
func (s *MemoryService) trimLocked(userID uint64, source Source) {
	if s.recentLimit <= 0 {
		return
	}
	type scored struct {
		key   memoryKey
		saved bool
		at    time.Time
	}
	var rows []scored
	for key, rec := range s.records {
		if key.userID != userID || key.source != source {
			continue
		}
		rows = append(rows, scored{key: key, saved: rec.item.IsSaved, at: rec.item.PlayedAt})
	}
	var unsaved []scored
	for _, r := range rows {
		if !r.saved {
			unsaved = append(unsaved, r)
		}
	}
	if len(unsaved) <= s.recentLimit {
		return
	}
	sort.Slice(unsaved, func(i, j int) bool { return unsaved[i].at.After(unsaved[j].at) })
	for _, r := range unsaved[s.recentLimit:] {
		delete(s.records, r.key)
	}
}

func (s *MemoryService) ListRecent(_ context.Context, userID uint64, source Source, limit int) ([]HistoryItem, error) {
	if userID == 0 {
		return []HistoryItem{}, nil
	}
	if !isAuditSource(source) {
		return nil, errors.New("invalid source " + string(source))
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]HistoryItem, 0, limit)
	for key, rec := range s.records {
		if key.userID != userID || key.source != source {
			continue
		}
		items = append(items, rec.item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].PlayedAt.After(items[j].PlayedAt) })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *MemoryService) GetHandEvents(_ context.Context, userID uint64, source Source, handID string) ([]EventItem, error) {
	if userID == 0 || strings.TrimSpace(handID) == "" {
		return nil, ErrNotFound
	}
	if !isAuditSource(source) {
		return nil, errors.New("invalid source " + string(source))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[memoryKey{userID: userID, source: source, handID: handID}]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]EventItem{}, rec.events...), nil
}

func (s *MemoryService) SetSaved(_ context.Context, userID uint64, source Source, handID string, saved bool) error {
	if userID == 0 || strings.TrimSpace(handID) == "" {
		return ErrNotFound
	}
	if !isAuditSource(source) {
		return errors.New("invalid source " + string(source))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[memoryKey{userID: userID, source: source, handID: handID}]
	if !ok {
		return ErrNotFound
	}
	if rec.item.IsSaved == saved {
		return nil
	}
	if saved {
		count := 0
		for key, r := range s.records {
			if key.userID == userID && key.source == source && r.item.IsSaved {
				count++
			}
		}
		if count >= s.savedLimit {
			return ErrSavedLimitReach
		}
		now := time.Now().UTC()
		rec.item.IsSaved = true
		rec.item.SavedAt = &now
	} else {
		rec.item.IsSaved = false
		rec.item.SavedAt = nil
		s.trimLocked(userID, source)
	}
	rec.item.UpdatedAt = time.Now().UTC()
	return nil
}

func isAuditSource(source Source) bool {
	return source == SourceLive || source == SourceReplay
}

// NewServiceFromEnv picks the ledger backend. Only the in-memory backend
// is implemented (see package doc): a persistent mode is named in config
// but not wired, since spec §1 excludes storage backends from scope.
func NewServiceFromEnv(authMode string) (Service, string, error) {
	mode := strings.ToLower(strings.TrimSpace(authMode))
	if mode == "memory" || mode == "" {
		return NewNoopService(), "memory-noop", nil
	}
	return NewMemoryService(), "memory", nil
}
