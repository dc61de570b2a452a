package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetAndGetRoundTrips(t *testing.T) {
	t.Parallel()

	c, err := New(DefaultPolicy(), nil)
	require.NoError(t, err)
	defer c.Close()

	c.Set("key1", []byte("value1"))

	value, ok := c.Get("key1")
	require.True(t, ok)
	assert.Equal(t, "value1", string(value))
}

func TestCache_HasReflectsPresence(t *testing.T) {
	t.Parallel()

	c, err := New(DefaultPolicy(), nil)
	require.NoError(t, err)
	defer c.Close()

	assert.False(t, c.Has("missing"))
	c.Set("present", []byte("x"))
	assert.True(t, c.Has("present"))
}

func TestCache_DeleteRemovesEntry(t *testing.T) {
	t.Parallel()

	c, err := New(DefaultPolicy(), nil)
	require.NoError(t, err)
	defer c.Close()

	c.Set("k", []byte("v"))
	c.Delete("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_ClearEmptiesStore(t *testing.T) {
	t.Parallel()

	c, err := New(DefaultPolicy(), nil)
	require.NoError(t, err)
	defer c.Close()

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Clear()

	assert.False(t, c.Has("a"))
	assert.False(t, c.Has("b"))
}

func TestCache_ExpiredEntryIsEvictedOnGet(t *testing.T) {
	t.Parallel()

	policy := DefaultPolicy()
	policy.MaxAge = time.Nanosecond
	c, err := New(policy, nil)
	require.NoError(t, err)
	defer c.Close()

	c.Set("k", []byte("v"))
	time.Sleep(time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_EvictUnlikelyDropsBottomHalf(t *testing.T) {
	t.Parallel()

	c, err := New(DefaultPolicy(), nil)
	require.NoError(t, err)
	defer c.Close()

	for _, k := range []string{"a", "b", "c", "d"} {
		c.Set(k, []byte("v"))
	}

	c.EvictUnlikely()

	remaining := 0
	for _, k := range []string{"a", "b", "c", "d"} {
		if c.Has(k) {
			remaining++
		}
	}
	assert.Equal(t, 2, remaining)
}

type fakePersistent struct {
	data map[string][]byte
}

func newFakePersistent() *fakePersistent {
	return &fakePersistent{data: make(map[string][]byte)}
}

func (p *fakePersistent) Get(key string) ([]byte, bool, error) {
	v, ok := p.data[key]
	return v, ok, nil
}
func (p *fakePersistent) Set(key string, value []byte) error {
	p.data[key] = value
	return nil
}
func (p *fakePersistent) Delete(key string) error {
	delete(p.data, key)
	return nil
}

func TestCache_PreloadProbablePromotesFromPersistent(t *testing.T) {
	t.Parallel()

	persistent := newFakePersistent()
	persistent.data["warm"] = []byte("cached-value")

	c, err := New(DefaultPolicy(), persistent)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.PreloadProbable([]string{"warm", "absent"}))

	value, ok := c.Get("warm")
	require.True(t, ok)
	assert.Equal(t, "cached-value", string(value))
	assert.False(t, c.Has("absent"))
}

func TestCache_PreloadProbableNoopWithoutPersistent(t *testing.T) {
	t.Parallel()

	c, err := New(DefaultPolicy(), nil)
	require.NoError(t, err)
	defer c.Close()

	assert.NoError(t, c.PreloadProbable([]string{"anything"}))
}
