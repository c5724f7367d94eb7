package safemap

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m := New[uint64, string]()
	require.NotNil(t, m)
	assert.Equal(t, 0, m.Len())
	_, ok := m.Load(1)
	assert.False(t, ok)
}

func TestSafeMap_StoreLoad(t *testing.T) {
	m := New[string, int]()

	t.Run("store and load returns value", func(t *testing.T) {
		m.Store("a", 1)
		v, ok := m.Load("a")
		assert.True(t, ok)
		assert.Equal(t, 1, v)
	})

	t.Run("overwrite returns new value", func(t *testing.T) {
		m.Store("a", 2)
		v, ok := m.Load("a")
		assert.True(t, ok)
		assert.Equal(t, 2, v)
	})

	t.Run("missing key returns zero value and false", func(t *testing.T) {
		v, ok := m.Load("missing")
		assert.False(t, ok)
		assert.Zero(t, v)
	})
}

func TestSafeMap_Delete(t *testing.T) {
	m := New[string, int]()
	m.Store("a", 1)
	m.Store("b", 2)

	m.Delete("a")
	_, ok := m.Load("a")
	assert.False(t, ok)

	v, ok := m.Load("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	// Deleting an absent key must not panic or change anything.
	m.Delete("missing")
	assert.Equal(t, 1, m.Len())
}

func TestSafeMap_Range(t *testing.T) {
	m := New[string, int]()
	m.Store("a", 1)
	m.Store("b", 2)
	m.Store("c", 3)

	t.Run("iterates all entries", func(t *testing.T) {
		seen := make(map[string]int)
		m.Range(func(k string, v int) bool {
			seen[k] = v
			return true
		})
		assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 3}, seen)
	})

	t.Run("stops when f returns false", func(t *testing.T) {
		count := 0
		m.Range(func(string, int) bool {
			count++
			return false
		})
		assert.Equal(t, 1, count)
	})
}

func TestSafeMap_ConcurrentAccess(t *testing.T) {
	m := New[int, int]()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				k := base*200 + j
				m.Store(k, k)
				_, _ = m.Load(k)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 8*200, m.Len())
}
