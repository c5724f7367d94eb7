package game

// Vacant is the conn id stored in an unoccupied player slot. Connection
// ids start at 1, so zero is never a live connection.
const Vacant uint64 = 0

// Session is one two-player game: two slots holding connection ids, the
// secret fixed at creation, the current turn holder, and the append-only
// move history replayed to reconnecting players.
//
// The turn is tracked as a slot index, not a connection id, so a player
// who drops and rejoins mid-turn (with a new connection) still holds the
// turn once back in their slot.
//
// A Session is owned exclusively by the hub goroutine; none of its
// methods are safe for concurrent use.
type Session struct {
	id      uint64
	secret  string
	slots   [2]uint64
	turn    int
	history []string
}

// NewSession creates a session with the creator in slot 1 holding the
// turn, slot 2 vacant, and the given secret.
func NewSession(id uint64, secret string, creator uint64) *Session {
	return &Session{
		id:     id,
		secret: secret,
		slots:  [2]uint64{creator, Vacant},
	}
}

// ID returns the session identity.
func (s *Session) ID() uint64 { return s.id }

// Secret returns the session secret.
func (s *Session) Secret() string { return s.secret }

// Turn returns the conn id of the current turn holder, or Vacant when
// the holding slot is empty.
func (s *Session) Turn() uint64 { return s.slots[s.turn] }

// GrantTurn hands the turn to the slot holding conn. Called when a
// second player joins a waiting session: the player who was already
// waiting opens, whichever slot they sit in. Unknown conns are ignored.
func (s *Session) GrantTurn(conn uint64) {
	for i := range s.slots {
		if s.slots[i] == conn {
			s.turn = i
		}
	}
}

// Slot1 returns the conn id in slot 1, or Vacant.
func (s *Session) Slot1() uint64 { return s.slots[0] }

// Slot2 returns the conn id in slot 2, or Vacant.
func (s *Session) Slot2() uint64 { return s.slots[1] }

// Occupy places conn in the first vacant slot. It reports whether a slot
// was free; a session never holds more than two players.
func (s *Session) Occupy(conn uint64) bool {
	for i := range s.slots {
		if s.slots[i] == Vacant {
			s.slots[i] = conn
			return true
		}
	}

	return false
}

// Vacate clears the slot holding conn, if any. The turn index is left
// alone: the slot keeps the turn for whoever reclaims it.
func (s *Session) Vacate(conn uint64) {
	for i := range s.slots {
		if s.slots[i] == conn {
			s.slots[i] = Vacant
		}
	}
}

// Opponent returns the conn id in the other slot relative to conn, or
// Vacant if that slot is empty or conn is not in the session.
func (s *Session) Opponent(conn uint64) uint64 {
	switch conn {
	case s.slots[0]:
		return s.slots[1]
	case s.slots[1]:
		return s.slots[0]
	}

	return Vacant
}

// HasVacancy reports whether at least one slot is empty.
func (s *Session) HasVacancy() bool {
	return s.slots[0] == Vacant || s.slots[1] == Vacant
}

// BothVacant reports whether both slots are empty. Such a session must
// be deleted by its owner.
func (s *Session) BothVacant() bool {
	return s.slots[0] == Vacant && s.slots[1] == Vacant
}

// IsTurn reports whether conn holds the current turn.
func (s *Session) IsTurn(conn uint64) bool {
	return conn != Vacant && s.slots[s.turn] == conn
}

// SwitchTurn hands the turn to the other slot.
func (s *Session) SwitchTurn() {
	s.turn ^= 1
}

// AppendMove records a rendered guess-result line in the history.
func (s *Session) AppendMove(line string) {
	s.history = append(s.history, line)
}

// History returns the recorded moves in order. The returned slice is the
// session's own; callers must not mutate it.
func (s *Session) History() []string {
	return s.history
}
