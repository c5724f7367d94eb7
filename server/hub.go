package server

import (
	"context"
	"time"

	"github.com/Henaniomu/SemUPS/config"
	"github.com/Henaniomu/SemUPS/game"
	"github.com/Henaniomu/SemUPS/idgen"
	"github.com/Henaniomu/SemUPS/logger"
	"github.com/Henaniomu/SemUPS/protocol"
	"github.com/Henaniomu/SemUPS/registry"
)

// sweepEvery is how often the hub checks for idle connections. Eviction
// compares each connection's last activity against one shared clock
// read, not per-connection timers.
const sweepEvery = time.Second

// Hub is the coordination goroutine that exclusively owns all game
// state: the registry, the reconnection directory, per-connection
// activity stamps, and the live connection handles. Events from the
// acceptor and the reader goroutines are processed strictly one at a
// time, so no session is ever observed half-mutated and no locks are
// needed around game state.
type Hub struct {
	log logger.Logger
	cfg config.Config

	reg *registry.Registry
	dir *registry.Directory

	events   chan event
	conns    map[uint64]Conn
	activity map[uint64]time.Time

	// now is the clock; replaced in tests.
	now func() time.Time
}

// NewHub builds a Hub with an empty registry and directory.
func NewHub(cfg config.Config, log logger.Logger) *Hub {
	return &Hub{
		log:      log.With(logger.F("component", "hub")),
		cfg:      cfg,
		reg:      registry.New(idgen.New()),
		dir:      registry.NewDirectory(cfg.ReservationTTL()),
		events:   make(chan event, 256),
		conns:    make(map[uint64]Conn),
		activity: make(map[uint64]time.Time),
		now:      time.Now,
	}
}

// post delivers an event to the hub. Called from the acceptor and the
// per-connection reader goroutines.
func (h *Hub) post(ev event) {
	h.events <- ev
}

// Run processes events until ctx is cancelled. It must run in exactly
// one goroutine.
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-h.events:
			h.dispatch(ev)
		case <-ticker.C:
			h.sweepIdle()
		}
	}
}

func (h *Hub) dispatch(ev event) {
	switch ev.kind {
	case eventConnected:
		h.onConnected(ev.conn)
	case eventLine:
		h.onLine(ev.conn, ev.line)
	case eventClosed:
		h.onClosed(ev.conn, ev.err)
	}
}

func (h *Hub) onConnected(c Conn) {
	h.conns[c.ID()] = c
	h.reg.AddClient(c.ID())
	h.activity[c.ID()] = h.now()
	h.send(c.ID(), protocol.Connected)
}

func (h *Hub) onLine(c Conn, line string) {
	id := c.ID()
	h.activity[id] = h.now()

	// Liveness probes refresh activity but never reach dispatch.
	if protocol.IsKeepAlive(line) {
		return
	}

	client := h.reg.Client(id)
	if client == nil {
		// The hub already tore this connection down; the reader just
		// had a line in flight.
		return
	}

	if client.Nickname == "" {
		h.handleNickname(client, line)
	} else {
		h.handleGameMessage(client, line)
	}

	h.logStatus()
}

func (h *Hub) onClosed(c Conn, err error) {
	if err != nil {
		h.log.Warn("connection read failed",
			logger.F("conn", c.ID()),
			logger.F("error", err))
	} else {
		h.log.Info("connection closed by peer", logger.F("conn", c.ID()))
	}

	h.disconnect(c.ID(), true)
}

// sweepIdle evicts connections without activity inside the idle window.
// The eviction runs the same teardown as a peer close.
func (h *Hub) sweepIdle() {
	timeout := h.cfg.IdleTimeout()
	if timeout <= 0 {
		return
	}

	now := h.now()
	for id, last := range h.activity {
		if now.Sub(last) > timeout {
			h.log.Info("disconnecting idle connection", logger.F("conn", id))
			h.disconnect(id, true)
		}
	}
}

// disconnect runs the full teardown for a connection: opponent
// notification (unless suppressed for end-of-game and wrong-turn
// evictions), reconnection reservation, slot vacation, session deletion
// when fully abandoned, and removal of the nickname binding. It is
// idempotent; late close events for an already-removed connection only
// re-close the handle.
func (h *Hub) disconnect(id uint64, notifyOpponent bool) {
	client := h.reg.Client(id)

	if client != nil {
		if s := h.reg.SessionByConn(id); s != nil {
			opp := s.Opponent(id)

			if notifyOpponent && opp != game.Vacant {
				h.send(opp, protocol.OpponentDisconnected)
			}

			// A reservation is recorded only while an opponent remains;
			// a fully abandoned session is deleted instead.
			if opp != game.Vacant && client.Nickname != "" {
				h.dir.Reserve(client.Nickname, s.ID())
			}

			h.reg.Detach(id)

			if s.BothVacant() {
				h.log.Info("both players gone, removing session",
					logger.F("session", s.ID()))
				h.reg.RemoveSession(s.ID())
				h.dir.PurgeSession(s.ID())
			}
		}

		h.reg.RemoveClient(id)
	}

	delete(h.activity, id)
	if c, ok := h.conns[id]; ok {
		delete(h.conns, id)
		_ = c.Close()
	}

	h.logStatus()
}

// send writes one protocol line to a connection, if it is still live.
// Write failures are logged and left for the reader's close event to
// clean up.
func (h *Hub) send(id uint64, payload string) {
	c, ok := h.conns[id]
	if !ok {
		return
	}

	if err := c.Send(payload); err != nil {
		h.log.Warn("write failed",
			logger.F("conn", id),
			logger.F("error", err))
	}
}

// notifyTurns tells both occupied slots whose turn it is.
func (h *Hub) notifyTurns(s *game.Session) {
	turn := s.Turn()
	if turn == game.Vacant {
		return
	}

	h.send(turn, protocol.YourTurn)
	if opp := s.Opponent(turn); opp != game.Vacant {
		h.send(opp, protocol.OpponentTurn)
	}
}

// logStatus dumps a debug snapshot of every session after a state
// change.
func (h *Hub) logStatus() {
	for _, s := range h.reg.Sessions() {
		h.log.Debug("session status",
			logger.F("session", s.ID()),
			logger.F("slot1", s.Slot1()),
			logger.F("slot2", s.Slot2()),
			logger.F("turn", s.Turn()),
			logger.F("secret", s.Secret()),
			logger.F("moves", len(s.History())))
	}

	h.log.Debug("totals",
		logger.F("clients", h.reg.ClientCount()),
		logger.F("sessions", h.reg.SessionCount()),
		logger.F("reservations", h.dir.Len()))
}
