// Package client provides an event-driven client for the duel protocol:
// it dials the server, delivers incoming protocol lines to a registered
// handler, and keeps the connection alive with periodic pings. Reconnection
// is left to the caller, because resuming a game requires re-sending the
// nickname.
package client

import (
	"bufio"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/Henaniomu/SemUPS/protocol"
)

// State represents the connection state of the client.
type State int

const (
	Disconnected State = iota // not connected
	Connected                 // connection established
	Closed                    // Close was called; terminal
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connected:
		return "Connected"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// LineHandler receives each protocol line from the server, already
// trimmed of its terminator.
type LineHandler func(line string)

// StateHandler is notified on state changes; err is non-nil when the
// change was caused by a failure.
type StateHandler func(state State, err error)

// Config holds the client settings.
type Config struct {
	// Addr is the server address, host:port.
	Addr string

	// DialTimeout bounds the connection attempt. Zero means 10 seconds.
	DialTimeout time.Duration

	// KeepAliveInterval is the gap between ping probes. Zero means 20
	// seconds; negative disables keep-alive.
	KeepAliveInterval time.Duration
}

// Client is a line-oriented duel-protocol client. Handlers must be
// registered before Connect. Safe for concurrent use.
type Client struct {
	cfg Config

	mu      sync.Mutex
	conn    net.Conn
	state   State
	done    chan struct{}
	onLine  LineHandler
	onState StateHandler

	wg sync.WaitGroup
}

// New creates a Client for the given configuration.
func New(cfg Config) *Client {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.KeepAliveInterval == 0 {
		cfg.KeepAliveInterval = 20 * time.Second
	}

	return &Client{cfg: cfg, state: Disconnected}
}

// OnLine registers the handler for incoming protocol lines.
func (c *Client) OnLine(h LineHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onLine = h
}

// OnState registers the handler for connection state changes.
func (c *Client) OnState(h StateHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onState = h
}

// Connect dials the server and starts the reader and keep-alive
// goroutines. It fails if the client is already connected or closed.
func (c *Client) Connect() error {
	c.mu.Lock()
	if c.state == Connected {
		c.mu.Unlock()
		return fmt.Errorf("already connected to %s", c.cfg.Addr)
	}
	if c.state == Closed {
		c.mu.Unlock()
		return fmt.Errorf("client is closed")
	}
	c.mu.Unlock()

	conn, err := net.DialTimeout("tcp", c.cfg.Addr, c.cfg.DialTimeout)
	if err != nil {
		c.notifyState(Disconnected, err)
		return fmt.Errorf("dial %s: %w", c.cfg.Addr, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.state = Connected
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	c.notifyState(Connected, nil)

	c.wg.Add(1)
	go c.readLoop(conn, done)

	if c.cfg.KeepAliveInterval > 0 {
		c.wg.Add(1)
		go c.keepAliveLoop(conn, done)
	}

	return nil
}

// SetNickname sends the nickname-setup line. The server answers NS or
// NIU via the line handler.
func (c *Client) SetNickname(nick string) error {
	if nick == "" {
		return fmt.Errorf("nickname must not be empty")
	}

	return c.Send(nick)
}

// Guess sends a guess for the given 4 distinct digits. The digits are
// validated locally first, so obviously broken input never reaches the
// wire.
func (c *Client) Guess(digits string) error {
	msg := string(protocol.GuessMarker) + digits
	if _, err := protocol.ParseGuess(msg); err != nil {
		return fmt.Errorf("invalid guess %q: %w", digits, err)
	}

	return c.Send(msg)
}

// Send writes one raw protocol line, appending the terminator.
func (c *Client) Send(line string) error {
	c.mu.Lock()
	conn := c.conn
	state := c.state
	c.mu.Unlock()

	if state != Connected || conn == nil {
		return fmt.Errorf("not connected")
	}

	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("send %q: %w", line, err)
	}

	return nil
}

// Close tears the connection down and stops all goroutines. The client
// cannot be reused afterwards.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.state == Closed {
		c.mu.Unlock()
		return nil
	}

	c.state = Closed
	conn := c.conn
	c.conn = nil
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
	c.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}

	c.wg.Wait()
	c.notifyState(Closed, nil)

	return err
}

// readLoop delivers server lines to the handler until the connection
// drops or the client closes.
func (c *Client) readLoop(conn net.Conn, done chan struct{}) {
	defer c.wg.Done()

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		c.mu.Lock()
		h := c.onLine
		c.mu.Unlock()

		if h != nil {
			h(protocol.TrimLine(sc.Text()))
		}
	}

	select {
	case <-done:
		// Close initiated locally; Close reports the terminal state.
		return
	default:
	}

	c.mu.Lock()
	if c.state == Connected {
		c.state = Disconnected
		c.conn = nil
	}
	c.mu.Unlock()

	c.notifyState(Disconnected, sc.Err())
}

// keepAliveLoop pings the server so the idle sweep never evicts a
// healthy but quiet connection.
func (c *Client) keepAliveLoop(conn net.Conn, done chan struct{}) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if _, err := conn.Write([]byte("PING\n")); err != nil {
				return
			}
		}
	}
}

func (c *Client) notifyState(state State, err error) {
	c.mu.Lock()
	h := c.onState
	c.mu.Unlock()

	if h != nil {
		h(state, err)
	}
}
