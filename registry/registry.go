// Package registry owns the server's mutable game state: the set of
// live clients, the session table, the connection-to-session mapping,
// and the reconnection directory. Everything in this package is mutated
// only by the hub goroutine; no method is safe for concurrent use (the
// directory's backing cache happens to be, but the ownership rule still
// applies).
package registry

import (
	"sort"

	"github.com/Henaniomu/SemUPS/game"
	"github.com/Henaniomu/SemUPS/idgen"
)

// Client is the per-connection protocol state. A client with an empty
// Nickname has not completed nickname setup and is routed to the
// matchmaker, never to a session.
type Client struct {
	// Conn is the connection id assigned at accept time.
	Conn uint64

	// Nickname is empty until the client completes nickname setup.
	// Unique among all clients with a non-empty nickname.
	Nickname string

	// WrongTurns counts consecutive out-of-turn or opponent-less
	// messages. Reset on any accepted valid guess; the connection is
	// evicted at MaxWrongTurns.
	WrongTurns int
}

// MaxWrongTurns is the number of consecutive turn violations that gets a
// client disconnected.
const MaxWrongTurns = 3

// Registry tracks clients and sessions. Session ids come from a
// monotonic generator and are never reused, even after deletions.
type Registry struct {
	ids      *idgen.Generator
	clients  map[uint64]*Client
	sessions map[uint64]*game.Session
	byConn   map[uint64]uint64
}

// New returns an empty Registry drawing session ids from ids.
func New(ids *idgen.Generator) *Registry {
	return &Registry{
		ids:      ids,
		clients:  make(map[uint64]*Client),
		sessions: make(map[uint64]*game.Session),
		byConn:   make(map[uint64]uint64),
	}
}

// AddClient registers a freshly accepted, unnamed connection.
func (r *Registry) AddClient(conn uint64) *Client {
	c := &Client{Conn: conn}
	r.clients[conn] = c
	return c
}

// Client returns the record for conn, or nil if unknown.
func (r *Registry) Client(conn uint64) *Client {
	return r.clients[conn]
}

// RemoveClient deletes the client record and its session association.
// The session itself is the caller's responsibility.
func (r *Registry) RemoveClient(conn uint64) {
	delete(r.clients, conn)
	delete(r.byConn, conn)
}

// NicknameInUse reports whether any live client holds nick. Reservations
// for disconnected players do not count; uniqueness is enforced only
// among currently connected, named clients.
func (r *Registry) NicknameInUse(nick string) bool {
	for _, c := range r.clients {
		if c.Nickname != "" && c.Nickname == nick {
			return true
		}
	}

	return false
}

// CreateSession starts a new session with creator in slot 1 holding the
// turn, and binds the creator's connection to it.
func (r *Registry) CreateSession(creator uint64, secret string) *game.Session {
	s := game.NewSession(r.ids.Next(), secret, creator)
	r.sessions[s.ID()] = s
	r.byConn[creator] = s.ID()
	return s
}

// Session returns the session with the given id, or nil.
func (r *Registry) Session(id uint64) *game.Session {
	return r.sessions[id]
}

// SessionByConn returns the session the connection is bound to, or nil.
func (r *Registry) SessionByConn(conn uint64) *game.Session {
	id, ok := r.byConn[conn]
	if !ok {
		return nil
	}

	return r.sessions[id]
}

// Attach places conn into a vacant slot of the session and records the
// association. It reports whether a slot was available.
func (r *Registry) Attach(conn uint64, s *game.Session) bool {
	if !s.Occupy(conn) {
		return false
	}

	r.byConn[conn] = s.ID()
	return true
}

// Detach vacates conn's slot in its session and drops the association.
// It returns the session, or nil if conn had none. Removal of a fully
// vacant session is left to the caller, which also owns the directory
// purge.
func (r *Registry) Detach(conn uint64) *game.Session {
	id, ok := r.byConn[conn]
	if !ok {
		return nil
	}

	delete(r.byConn, conn)
	s := r.sessions[id]
	if s != nil {
		s.Vacate(conn)
	}

	return s
}

// RemoveSession deletes the session from the table. Callers only invoke
// this once both slots are vacant.
func (r *Registry) RemoveSession(id uint64) {
	delete(r.sessions, id)
}

// FirstJoinable scans sessions in ascending id order and returns the
// first with exactly one occupied slot and no reconnection reservation
// pointing at it, or nil. Ascending id order makes the scan stable and
// deterministic when several sessions are waiting.
func (r *Registry) FirstJoinable(reserved map[uint64]bool) *game.Session {
	ids := make([]uint64, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		s := r.sessions[id]
		if reserved[id] {
			continue
		}
		if s.HasVacancy() && !s.BothVacant() {
			return s
		}
	}

	return nil
}

// Sessions returns all sessions in ascending id order, for status
// logging.
func (r *Registry) Sessions() []*game.Session {
	out := make([]*game.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })

	return out
}

// ClientCount returns the number of live connections.
func (r *Registry) ClientCount() int { return len(r.clients) }

// SessionCount returns the number of live sessions.
func (r *Registry) SessionCount() int { return len(r.sessions) }
