// Package server wires the duel server together: a TCP acceptor that
// turns connections into events, and the Hub, a single-goroutine event
// loop that owns all game state and implements the protocol.
package server

import (
	"fmt"
	"net"
	"sync/atomic"

	"github.com/Henaniomu/SemUPS/config"
	"github.com/Henaniomu/SemUPS/idgen"
	"github.com/Henaniomu/SemUPS/logger"
	"github.com/Henaniomu/SemUPS/safemap"
)

// Server accepts TCP connections and feeds their lines to the hub. Each
// connection gets a monotonic id and a reader goroutine; everything else
// happens on the hub goroutine.
type Server struct {
	log      logger.Logger
	addr     string
	maxConns int
	maxLine  int

	hub      *Hub
	listener net.Listener
	conns    *safemap.SafeMap[uint64, Conn]
	running  atomic.Bool
	ids      *idgen.Generator
}

// NewServer builds a Server delivering events to hub.
func NewServer(cfg config.Config, log logger.Logger, hub *Hub) *Server {
	return &Server{
		log:      log.With(logger.F("component", "server")),
		addr:     cfg.Addr(),
		maxConns: cfg.MaxConnections,
		maxLine:  cfg.MaxLineBytes,
		hub:      hub,
		conns:    safemap.New[uint64, Conn](),
		ids:      idgen.New(),
	}
}

// Start binds the listen address and begins accepting in a goroutine.
//
// Returns:
//   - An error if the server is already running or listening fails
func (s *Server) Start() error {
	if s.running.Load() {
		return fmt.Errorf("server already running")
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}

	s.listener = ln
	s.running.Store(true)
	s.log.Info("server started", logger.F("addr", ln.Addr().String()))

	go s.acceptLoop()

	return nil
}

// Addr returns the bound listen address, useful when the configured port
// was 0. Valid only after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}

	return s.listener.Addr().String()
}

// Stop closes the listener and every live connection. Safe to call when
// not running.
func (s *Server) Stop() {
	if !s.running.Load() {
		return
	}

	s.running.Store(false)
	if s.listener != nil {
		_ = s.listener.Close()
	}

	s.conns.Range(func(_ uint64, c Conn) bool {
		_ = c.Close()
		return true
	})

	s.log.Info("server stopped")
}

// acceptLoop accepts connections until the server stops. A connection
// over the configured cap is closed immediately without entering the
// protocol.
func (s *Server) acceptLoop() {
	for s.running.Load() {
		nc, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() {
				return
			}

			s.log.Error("accept failed", logger.F("error", err))
			continue
		}

		if s.maxConns > 0 && s.conns.Len() >= s.maxConns {
			s.log.Warn("connection limit reached, rejecting",
				logger.F("remote", nc.RemoteAddr().String()),
				logger.F("limit", s.maxConns))
			_ = nc.Close()
			continue
		}

		id := s.ids.Next()
		c := newTCPConn(id, nc, s.maxLine)
		s.conns.Store(id, c)
		s.log.Info("connection accepted",
			logger.F("conn", id),
			logger.F("remote", c.RemoteAddr()))

		// The connected event is posted before the reader starts, so the
		// hub always sees a connection before any of its lines.
		s.hub.post(event{kind: eventConnected, conn: c})

		go func() {
			c.readLoop(s.hub.post)
			s.conns.Delete(id)
		}()
	}
}
