package client

import (
	"bufio"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer accepts one connection and records the lines it receives.
type fakeServer struct {
	ln net.Listener

	mu       sync.Mutex
	conn     net.Conn
	received []string
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	fs := &fakeServer{ln: ln}
	go fs.serve()
	t.Cleanup(fs.close)

	return fs
}

func (fs *fakeServer) serve() {
	conn, err := fs.ln.Accept()
	if err != nil {
		return
	}

	fs.mu.Lock()
	fs.conn = conn
	fs.mu.Unlock()

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		fs.mu.Lock()
		fs.received = append(fs.received, sc.Text())
		fs.mu.Unlock()
	}
}

func (fs *fakeServer) addr() string { return fs.ln.Addr().String() }

func (fs *fakeServer) send(t *testing.T, line string) {
	t.Helper()
	fs.mu.Lock()
	conn := fs.conn
	fs.mu.Unlock()
	require.NotNil(t, conn)
	_, err := conn.Write([]byte(line + "\n"))
	require.NoError(t, err)
}

func (fs *fakeServer) lines() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]string, len(fs.received))
	copy(out, fs.received)
	return out
}

func (fs *fakeServer) close() {
	_ = fs.ln.Close()
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.conn != nil {
		_ = fs.conn.Close()
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestClient_ConnectAndReceive(t *testing.T) {
	fs := newFakeServer(t)

	c := New(Config{Addr: fs.addr(), KeepAliveInterval: -1})

	var mu sync.Mutex
	var got []string
	c.OnLine(func(line string) {
		mu.Lock()
		got = append(got, line)
		mu.Unlock()
	})

	var states []State
	c.OnState(func(s State, err error) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	require.NoError(t, c.Connect())
	defer c.Close()

	fs.send(t, "SC")
	fs.send(t, "UT")

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, "server lines not delivered")

	mu.Lock()
	assert.Equal(t, []string{"SC", "UT"}, got)
	assert.Equal(t, []State{Connected}, states)
	mu.Unlock()
}

func TestClient_SendNicknameAndGuess(t *testing.T) {
	fs := newFakeServer(t)

	c := New(Config{Addr: fs.addr(), KeepAliveInterval: -1})
	require.NoError(t, c.Connect())
	defer c.Close()

	require.NoError(t, c.SetNickname("alice"))
	require.NoError(t, c.Guess("1234"))

	waitFor(t, func() bool { return len(fs.lines()) == 2 }, "lines not received")
	assert.Equal(t, []string{"alice", "G1234"}, fs.lines())
}

func TestClient_GuessValidatedLocally(t *testing.T) {
	fs := newFakeServer(t)

	c := New(Config{Addr: fs.addr(), KeepAliveInterval: -1})
	require.NoError(t, c.Connect())
	defer c.Close()

	assert.Error(t, c.Guess("123"))
	assert.Error(t, c.Guess("1123"))
	assert.Error(t, c.Guess("12a4"))

	// Nothing reached the wire.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, fs.lines())
}

func TestClient_KeepAlive(t *testing.T) {
	fs := newFakeServer(t)

	c := New(Config{Addr: fs.addr(), KeepAliveInterval: 20 * time.Millisecond})
	require.NoError(t, c.Connect())
	defer c.Close()

	waitFor(t, func() bool {
		for _, l := range fs.lines() {
			if l == "PING" {
				return true
			}
		}
		return false
	}, "no keep-alive observed")
}

func TestClient_SendRequiresConnection(t *testing.T) {
	c := New(Config{Addr: "127.0.0.1:1"})
	assert.Error(t, c.Send("hello"))
	assert.Error(t, c.SetNickname(""))
}

func TestClient_CloseIsTerminal(t *testing.T) {
	fs := newFakeServer(t)

	c := New(Config{Addr: fs.addr(), KeepAliveInterval: -1})
	require.NoError(t, c.Connect())

	require.NoError(t, c.Close())
	require.NoError(t, c.Close(), "close is idempotent")

	assert.Error(t, c.Connect(), "closed client cannot reconnect")
	assert.Error(t, c.Send("late"))
}

func TestClient_RemoteCloseNotifies(t *testing.T) {
	fs := newFakeServer(t)

	c := New(Config{Addr: fs.addr(), KeepAliveInterval: -1})

	var mu sync.Mutex
	var last State
	notified := false
	c.OnState(func(s State, err error) {
		mu.Lock()
		last = s
		notified = s == Disconnected || notified
		mu.Unlock()
	})

	require.NoError(t, c.Connect())
	defer c.Close()

	fs.close()

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return notified
	}, "disconnect not observed")

	mu.Lock()
	assert.Equal(t, Disconnected, last)
	mu.Unlock()
}
