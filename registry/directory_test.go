package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_ReserveLookup(t *testing.T) {
	d := NewDirectory(0)

	_, found := d.Lookup("alice")
	assert.False(t, found)

	d.Reserve("alice", 7)
	sid, found := d.Lookup("alice")
	require.True(t, found)
	assert.Equal(t, uint64(7), sid)

	t.Run("overwrite keeps latest", func(t *testing.T) {
		d.Reserve("alice", 9)
		sid, found := d.Lookup("alice")
		require.True(t, found)
		assert.Equal(t, uint64(9), sid)
	})
}

func TestDirectory_Cancel(t *testing.T) {
	d := NewDirectory(0)
	d.Reserve("alice", 7)

	d.Cancel("alice")
	_, found := d.Lookup("alice")
	assert.False(t, found)

	// Cancelling an absent entry is a no-op.
	d.Cancel("bob")
}

func TestDirectory_PurgeSession(t *testing.T) {
	d := NewDirectory(0)
	d.Reserve("alice", 7)
	d.Reserve("bob", 7)
	d.Reserve("carol", 8)

	d.PurgeSession(7)

	_, found := d.Lookup("alice")
	assert.False(t, found)
	_, found = d.Lookup("bob")
	assert.False(t, found)

	sid, found := d.Lookup("carol")
	require.True(t, found)
	assert.Equal(t, uint64(8), sid)
}

func TestDirectory_ReservedSessions(t *testing.T) {
	d := NewDirectory(0)
	d.Reserve("alice", 7)
	d.Reserve("bob", 7)
	d.Reserve("carol", 8)

	got := d.ReservedSessions()
	assert.Equal(t, map[uint64]bool{7: true, 8: true}, got)
}

func TestDirectory_TTL(t *testing.T) {
	d := NewDirectory(20 * time.Millisecond)
	d.Reserve("alice", 7)

	_, found := d.Lookup("alice")
	require.True(t, found)

	time.Sleep(50 * time.Millisecond)
	_, found = d.Lookup("alice")
	assert.False(t, found)
}
