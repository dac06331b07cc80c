// Package gateway implements SessionDispatcher (C9): the WebSocket-facing
// half of the system. Each connection owns a small session state machine
// (Connected -> Authenticated -> Seated), translates the §6 JSON wire
// protocol into calls against a controller.Manager/controller.Table, and
// fans engine events back out to the seat that subscribed to them.
package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"botholdem/internal/auth"
	"botholdem/internal/controller"
	"botholdem/holdem"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // bots connect cross-origin; auth.login is the real gate
	},
}

type sessionState int

const (
	stateConnected sessionState = iota
	stateAuthenticated
	stateSeated
)

// Connection is one WebSocket session and its place in the dispatcher's
// state machine.
type Connection struct {
	id       string
	conn     *websocket.Conn
	send     chan []byte
	gateway  *Gateway
	lastPing time.Time

	mu       sync.Mutex
	state    sessionState
	userID   uint64
	botID    string
	table    *controller.Table
	inFlight bool
}

// Gateway owns every live connection and the auth/table-manager
// collaborators it routes messages to.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	userConns   map[uint64]*Connection
	nextConnID  uint64

	auth    auth.Service
	manager *controller.Manager
	logger  zerolog.Logger
}

// New builds a Gateway. The Gateway itself implements controller.Broadcaster
// and is meant to be passed (directly, or wrapped) to controller.NewManager
// as its broadcaster — which in turn means the Manager doesn't exist yet
// when the Gateway is constructed. Pass nil and call SetManager once the
// Manager is built.
func New(authService auth.Service, manager *controller.Manager) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		userConns:   make(map[uint64]*Connection),
		auth:        authService,
		manager:     manager,
		logger:      log.With().Str("component", "gateway").Logger(),
	}
}

// SetManager wires the table manager after construction, breaking the
// Gateway/Manager construction cycle (the Manager needs a Broadcaster,
// which may be this Gateway, possibly decorated).
func (g *Gateway) SetManager(manager *controller.Manager) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.manager = manager
}

func (g *Gateway) Manager() *controller.Manager {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.manager
}

// HandleWebSocket upgrades an inbound HTTP request and starts the
// connection's read/write pumps.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	g.mu.Lock()
	g.nextConnID++
	connID := fmt.Sprintf("conn_%d", g.nextConnID)
	g.mu.Unlock()

	c := &Connection{
		id:       connID,
		conn:     conn,
		send:     make(chan []byte, 256),
		gateway:  g,
		lastPing: time.Now(),
		state:    stateConnected,
	}

	g.mu.Lock()
	g.connections[connID] = c
	g.mu.Unlock()

	g.logger.Info().Str("conn_id", connID).Msg("client connected")

	go c.writePump()
	c.readPump()
}

func (c *Connection) readPump() {
	defer func() {
		c.gateway.removeConnection(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		c.lastPing = time.Now()
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.gateway.logger.Warn().Str("conn_id", c.id).Err(err).Msg("read error")
			}
			break
		}
		if messageType == websocket.TextMessage {
			c.handleMessage(message)
		}
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Connection) handleMessage(data []byte) {
	var env inboundEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.sendError("message", "INVALID_MESSAGE", "could not parse message")
		return
	}

	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	switch env.Type {
	case "auth.login":
		c.handleAuthLogin(env)
	case "game.list":
		c.requireState(state, stateAuthenticated, env.Type, func() { c.handleGameList(env) })
	case "game.join":
		c.requireState(state, stateAuthenticated, env.Type, func() { c.handleGameJoin(env) })
	case "game.leave":
		c.requireState(state, stateSeated, env.Type, func() { c.handleGameLeave(env) })
	case "action.submit":
		c.requireState(state, stateSeated, env.Type, func() { c.handleActionSubmit(env) })
	case "state.current":
		c.requireState(state, stateSeated, env.Type, func() { c.handleStateCurrent(env) })
	case "state.actions":
		c.requireState(state, stateSeated, env.Type, func() { c.handleStateActions(env) })
	default:
		c.sendError(env.Type, "UNKNOWN_TYPE", "unrecognized message type")
	}
}

// requireState enforces the §4.8 session state machine: messages that
// arrive before the session has reached the required state get
// AUTH_REQUIRED (pre-auth) or NOT_SEATED (pre-seat), never silently
// dropped.
func (c *Connection) requireState(have, want sessionState, msgType string, fn func()) {
	if have < want {
		code := "AUTH_REQUIRED"
		if have >= stateAuthenticated {
			code = "NOT_SEATED"
		}
		c.sendError(msgType, code, "message not valid in current session state")
		return
	}
	fn()
}

func (c *Connection) handleAuthLogin(env inboundEnvelope) {
	if env.BotID == "" || env.APIKey == "" {
		c.sendError(env.Type, "INVALID_CREDENTIALS", "botId and apiKey are required")
		return
	}

	// A bot's apiKey is a long-lived pre-shared credential, not an
	// interactive password — ResolveOrCreateAccount binds the key to an
	// account, minting a fresh account the first time a given key is seen
	// and resolving to it on every reconnect. The session token it issues
	// alongside is not used here.
	accountID, _, _ := c.gateway.auth.ResolveOrCreateAccount(env.APIKey)

	c.mu.Lock()
	c.state = stateAuthenticated
	c.userID = accountID
	c.botID = env.BotID
	c.mu.Unlock()

	c.gateway.mu.Lock()
	c.gateway.userConns[accountID] = c
	c.gateway.mu.Unlock()

	c.sendSuccess(outboundEnvelope{Type: env.Type + ".success"})
	c.gateway.logger.Info().Str("conn_id", c.id).Uint64("user_id", accountID).Str("bot_id", env.BotID).Msg("bot authenticated")
}

func (c *Connection) handleGameList(env inboundEnvelope) {
	games := c.gateway.Manager().ListGames()
	wire := make([]wireGameSummary, len(games))
	for i, gs := range games {
		wire[i] = wireGameSummary{GameID: gs.GameID, SeatCount: gs.SeatCount, MaxPlayers: gs.MaxPlayers}
	}
	c.sendSuccess(outboundEnvelope{Type: env.Type + ".success", Games: wire})
}

func (c *Connection) handleGameJoin(env inboundEnvelope) {
	c.mu.Lock()
	userID, botID := c.userID, c.botID
	c.mu.Unlock()

	table, err := c.gateway.Manager().JoinGame(env.GameID, userID, botID, env.ChipStack)
	if err != nil {
		c.sendError(env.Type, "JOIN_REJECTED", err.Error())
		return
	}
	// Idempotent whether this is a fresh seat or a reconnect to one found
	// by affinity matching: marks the seat online and refreshes LastSeen
	// either way, undoing any earlier ConnLost from a dropped connection.
	_ = table.ConnResume(userID, botID)

	c.mu.Lock()
	c.state = stateSeated
	c.table = table
	c.mu.Unlock()

	ch := chairForUser(table, userID)
	snap := snapshotToWire(controller.FilterForSeat(table.Snapshot(), ch, false))
	c.sendSuccess(outboundEnvelope{Type: env.Type + ".success", GameID: table.ID, Chair: &ch, Snapshot: &snap})
}

func (c *Connection) handleGameLeave(env inboundEnvelope) {
	c.mu.Lock()
	table, userID := c.table, c.userID
	c.mu.Unlock()

	if table == nil {
		c.sendSuccess(outboundEnvelope{Type: env.Type + ".success"})
		return
	}
	if err := table.StandUp(userID); err != nil {
		c.sendError(env.Type, "LEAVE_REJECTED", err.Error())
		return
	}

	c.mu.Lock()
	c.state = stateAuthenticated
	c.table = nil
	c.mu.Unlock()

	c.sendSuccess(outboundEnvelope{Type: env.Type + ".success"})
}

func (c *Connection) handleActionSubmit(env inboundEnvelope) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		c.sendError(env.Type, "ACTION_IN_FLIGHT", "previous action still being applied")
		return
	}
	c.inFlight = true
	table, userID := c.table, c.userID
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	if table == nil || env.Action == nil {
		c.sendError(env.Type, "NOT_SEATED", "not seated at a table")
		return
	}
	actionType, ok := holdem.ActionTypeFromWire(env.Action.Type)
	if !ok {
		c.sendError(env.Type, "INVALID_ACTION", fmt.Sprintf("unknown action %q", env.Action.Type))
		return
	}
	var amount int64
	if env.Action.Amount != nil {
		amount = *env.Action.Amount
	}

	if err := table.Act(userID, actionType, amount); err != nil {
		c.sendError(env.Type, "ACTION_REJECTED", err.Error())
		return
	}

	snap := snapshotToWire(controller.FilterForSeat(table.Snapshot(), chairForUser(table, userID), false))
	c.sendSuccess(outboundEnvelope{Type: env.Type + ".success", Snapshot: &snap})
}

func (c *Connection) handleStateCurrent(env inboundEnvelope) {
	c.mu.Lock()
	table, userID := c.table, c.userID
	c.mu.Unlock()
	if table == nil {
		c.sendError(env.Type, "NOT_SEATED", "not seated at a table")
		return
	}
	snap := snapshotToWire(controller.FilterForSeat(table.Snapshot(), chairForUser(table, userID), false))
	c.sendSuccess(outboundEnvelope{Type: env.Type + ".success", Snapshot: &snap})
}

func (c *Connection) handleStateActions(env inboundEnvelope) {
	c.mu.Lock()
	table, userID := c.table, c.userID
	c.mu.Unlock()
	if table == nil {
		c.sendError(env.Type, "NOT_SEATED", "not seated at a table")
		return
	}
	bounds, err := table.GetPossibleActions(userID)
	if err != nil {
		c.sendSuccess(outboundEnvelope{Type: env.Type + ".success", Actions: []wireActionBound{}})
		return
	}
	c.sendSuccess(outboundEnvelope{Type: env.Type + ".success", Actions: actionBoundsToWire(bounds)})
}

func chairForUser(t *controller.Table, userID uint64) uint16 {
	for chair, s := range t.Seats() {
		if s.UserID == userID {
			return chair
		}
	}
	return holdem.InvalidChair
}

func (c *Connection) sendSuccess(env outboundEnvelope) {
	c.writeJSON(env)
}

func (c *Connection) sendError(msgType, code, message string) {
	c.writeJSON(outboundEnvelope{Type: msgType + ".error", Error: message, Code: code})
}

func (c *Connection) writeJSON(env outboundEnvelope) {
	data, err := json.Marshal(env)
	if err != nil {
		c.gateway.logger.Error().Err(err).Msg("failed to encode outbound message")
		return
	}
	select {
	case c.send <- data:
	default:
		c.gateway.logger.Warn().Str("conn_id", c.id).Msg("send buffer full, dropping message")
	}
}

// Send implements controller.Broadcaster. The controller has already
// applied the per-seat hole-card projection to ev.Snapshot by the time
// this runs (§9 "visibility as projection, not privilege"); the gateway's
// only remaining job is translating GameEvent into the §6 wire shape and
// deciding whether this event also opens this seat's turn clock.
func (g *Gateway) Send(userID uint64, ev holdem.GameEvent) {
	g.mu.RLock()
	c := g.userConns[userID]
	g.mu.RUnlock()
	if c == nil {
		return
	}

	if ev.Type == holdem.EventTurnWarning {
		c.writeJSON(outboundEnvelope{Type: "turn.warning"})
		return
	}

	wireEv := gameEventToWire(ev)
	c.writeJSON(outboundEnvelope{Type: "event.game", Event: &wireEv})

	if ev.Snapshot == nil || ev.Snapshot.ActionChair == holdem.InvalidChair {
		return
	}
	c.mu.Lock()
	table := c.table
	c.mu.Unlock()
	if table == nil {
		return
	}
	if chairForUser(table, userID) != ev.Snapshot.ActionChair {
		return
	}
	switch ev.Type {
	case holdem.EventHandStarted, holdem.EventBlindsPosted, holdem.EventActionTaken, holdem.EventHoleCardsDealt,
		holdem.EventFlopDealt, holdem.EventTurnDealt, holdem.EventRiverDealt:
		c.writeJSON(outboundEnvelope{Type: "turn.start", TimeLimit: int64(table.TurnTimeLimit() / time.Second)})
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	c.mu.Lock()
	userID := c.userID
	table := c.table
	c.mu.Unlock()

	g.mu.Lock()
	delete(g.connections, c.id)
	if cur, ok := g.userConns[userID]; ok && cur == c {
		delete(g.userConns, userID)
	}
	g.mu.Unlock()

	if table != nil {
		// A disconnect does not vacate the seat mid-hand (§5); the seat is
		// only released after ReleaseOfflineSeats' idle TTL elapses.
		_ = table.ConnLost(userID)
	}

	g.logger.Info().Str("conn_id", c.id).Msg("client disconnected")
}
