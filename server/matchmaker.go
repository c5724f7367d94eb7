package server

import (
	"github.com/Henaniomu/SemUPS/game"
	"github.com/Henaniomu/SemUPS/logger"
	"github.com/Henaniomu/SemUPS/protocol"
	"github.com/Henaniomu/SemUPS/registry"
)

// handleNickname processes input from a connection that has not named
// itself yet. An empty line is ignored; a taken nickname is refused and
// the client stays unnamed; otherwise the nickname is bound and the
// client is placed into a session.
func (h *Hub) handleNickname(client *registry.Client, line string) {
	nick := protocol.SanitizeNickname(line)
	if nick == "" {
		return
	}

	if h.reg.NicknameInUse(nick) {
		h.send(client.Conn, protocol.NicknameInUse)
		return
	}

	client.Nickname = nick
	h.log.Info("nickname set",
		logger.F("conn", client.Conn),
		logger.F("nickname", nick))
	h.send(client.Conn, protocol.NicknameSet)

	h.assignSession(client)
}

// assignSession places a freshly named client: rejoin the session their
// nickname was abandoned from, join the first waiting session, or found
// a new one.
func (h *Hub) assignSession(client *registry.Client) {
	if h.rejoinReserved(client) {
		return
	}

	if s := h.reg.FirstJoinable(h.dir.ReservedSessions()); s != nil {
		h.reg.Attach(client.Conn, s)
		h.log.Info("player joined waiting session",
			logger.F("conn", client.Conn),
			logger.F("session", s.ID()))

		// A lapsed reservation can leave slot 1 vacant, so the waiting
		// player is whichever slot the newcomer did not land in.
		waiter := s.Opponent(client.Conn)
		h.send(waiter, protocol.GameStarted)
		h.send(client.Conn, protocol.GameStarted)

		// The player who was already waiting opens.
		s.GrantTurn(waiter)
		h.notifyTurns(s)

		return
	}

	s := h.reg.CreateSession(client.Conn, game.NewSecret())
	h.log.Info("new session created, waiting for opponent",
		logger.F("conn", client.Conn),
		logger.F("session", s.ID()))
}

// rejoinReserved reunites a returning nickname with its interrupted
// session: the vacant slot is reclaimed, the reservation cleared, the
// whole move history replayed in order, and both occupied slots told
// whose turn it is. Reports whether a rejoin happened.
func (h *Hub) rejoinReserved(client *registry.Client) bool {
	sid, ok := h.dir.Lookup(client.Nickname)
	if !ok {
		return false
	}

	s := h.reg.Session(sid)
	if s == nil || !h.reg.Attach(client.Conn, s) {
		h.dir.Cancel(client.Nickname)
		return false
	}

	h.dir.Cancel(client.Nickname)
	h.log.Info("player rejoined session",
		logger.F("conn", client.Conn),
		logger.F("nickname", client.Nickname),
		logger.F("session", s.ID()))

	for _, move := range s.History() {
		h.send(client.Conn, move)
	}

	h.notifyTurns(s)

	return true
}
