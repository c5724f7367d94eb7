package server

import (
	"bufio"
	"fmt"
	"net"
	"sync"
	"time"
)

// writeTimeout bounds a single Send. Sends run on the hub goroutine, so
// a peer that stops reading must surface as a write error rather than
// stall every session.
const writeTimeout = 5 * time.Second

// Conn is one live client connection as seen by the hub. The concrete
// implementation reads in its own goroutine; Send and Close may be
// called from the hub.
type Conn interface {
	// ID returns the connection identity assigned at accept time. Ids
	// are monotonic and never reused while referenced.
	ID() uint64

	// RemoteAddr returns the peer address for logging.
	RemoteAddr() string

	// Send writes one protocol line, appending the terminator.
	Send(payload string) error

	// Close tears the connection down. Safe to call multiple times.
	Close() error
}

type tcpConn struct {
	id      uint64
	nc      net.Conn
	maxLine int

	closeOnce sync.Once
	closeErr  error
}

func newTCPConn(id uint64, nc net.Conn, maxLine int) *tcpConn {
	return &tcpConn{id: id, nc: nc, maxLine: maxLine}
}

func (c *tcpConn) ID() uint64 { return c.id }

func (c *tcpConn) RemoteAddr() string { return c.nc.RemoteAddr().String() }

func (c *tcpConn) Send(payload string) error {
	buf := make([]byte, 0, len(payload)+1)
	buf = append(buf, payload...)
	buf = append(buf, '\n')

	if err := c.nc.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("send to conn %d: %w", c.id, err)
	}

	if _, err := c.nc.Write(buf); err != nil {
		return fmt.Errorf("send to conn %d: %w", c.id, err)
	}

	return nil
}

func (c *tcpConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.nc.Close()
	})

	return c.closeErr
}

// readLoop scans protocol lines and posts them to the hub until the peer
// closes, a read fails, or a line exceeds the limit. It always posts a
// final close event.
func (c *tcpConn) readLoop(post func(event)) {
	sc := bufio.NewScanner(c.nc)
	sc.Buffer(make([]byte, 0, 64), c.maxLine)

	for sc.Scan() {
		post(event{kind: eventLine, conn: c, line: sc.Text()})
	}

	post(event{kind: eventClosed, conn: c, err: sc.Err()})
}

type eventKind int

const (
	eventConnected eventKind = iota
	eventLine
	eventClosed
)

// event is the unit of work handed to the hub. All state mutation
// happens while the hub processes events, one at a time.
type event struct {
	kind eventKind
	conn Conn
	line string
	err  error
}
