package server

import (
	"errors"

	"github.com/Henaniomu/SemUPS/game"
	"github.com/Henaniomu/SemUPS/logger"
	"github.com/Henaniomu/SemUPS/protocol"
	"github.com/Henaniomu/SemUPS/registry"
)

// handleGameMessage processes input from a named client bound to a
// session: turn enforcement, guess validation, scoring, win resolution,
// and turn switching.
func (h *Hub) handleGameMessage(client *registry.Client, line string) {
	msg := protocol.TrimLine(line)

	s := h.reg.SessionByConn(client.Conn)
	if s == nil {
		// Named clients are always bound during matchmaking; a message
		// here means teardown already started.
		return
	}

	// Out of turn, or no opponent to play against yet.
	if !s.IsTurn(client.Conn) || s.HasVacancy() {
		client.WrongTurns++
		h.log.Info("out-of-turn message",
			logger.F("conn", client.Conn),
			logger.F("strikes", client.WrongTurns))

		if client.WrongTurns >= registry.MaxWrongTurns {
			h.send(client.Conn, protocol.WrongFormat)
			h.disconnect(client.Conn, false)
			return
		}

		h.send(client.Conn, protocol.WrongTurn)
		return
	}

	client.WrongTurns = 0

	digits, err := protocol.ParseGuess(msg)
	if err != nil {
		if errors.Is(err, protocol.ErrNoMarker) {
			// Not speaking the protocol at all; fatal.
			h.log.Warn("protocol violation, disconnecting",
				logger.F("conn", client.Conn))
			h.send(client.Conn, protocol.WrongFormat)
			h.disconnect(client.Conn, true)
			return
		}

		h.send(client.Conn, protocol.InvalidGuess)
		return
	}

	bulls, cows := game.Score(digits, s.Secret())
	result := protocol.FormatResult(msg, bulls, cows)

	s.AppendMove(result)
	h.send(s.Slot1(), result)
	h.send(s.Slot2(), result)

	if bulls == protocol.GuessLength {
		h.resolveWin(client.Conn, s)
		return
	}

	s.SwitchTurn()
	h.notifyTurns(s)
}

// resolveWin ends the session: the sender guessed the secret. Both
// connections are closed with the end-of-game variant, so neither gets
// an opponent-disconnected notice; the usual teardown then deletes the
// session and purges its reservations.
func (h *Hub) resolveWin(winner uint64, s *game.Session) {
	opp := s.Opponent(winner)
	h.log.Info("session won",
		logger.F("session", s.ID()),
		logger.F("winner", winner))

	h.send(winner, protocol.Win)
	h.send(opp, protocol.Lost)
	h.send(winner, protocol.GameEnded)
	h.send(opp, protocol.GameEnded)

	h.disconnect(winner, false)
	h.disconnect(opp, false)
}
