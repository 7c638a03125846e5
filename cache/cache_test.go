package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonlens/types"
)

// fakeClock returns a cache whose clock the test controls
func fakeClock(c *ResultCache) *time.Time {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }
	return &current
}

func TestGetOrRenderCachesResult(t *testing.T) {
	c := New(time.Minute, 1024)
	fakeClock(c)

	calls := 0
	renderFn := func() (string, error) {
		calls++
		return "rendered", nil
	}

	out, hit, err := c.GetOrRender("k", renderFn)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "rendered", out)

	out, hit, err = c.GetOrRender("k", renderFn)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "rendered", out)
	assert.Equal(t, 1, calls, "renderFn must run exactly once within the TTL")
}

func TestEntriesExpireAfterTTL(t *testing.T) {
	c := New(time.Minute, 1024)
	clock := fakeClock(c)

	calls := 0
	renderFn := func() (string, error) {
		calls++
		return fmt.Sprintf("render-%d", calls), nil
	}

	_, _, err := c.GetOrRender("k", renderFn)
	require.NoError(t, err)

	*clock = clock.Add(59 * time.Second)
	_, hit, _ := c.GetOrRender("k", renderFn)
	assert.True(t, hit, "entry must survive just under the TTL")

	*clock = clock.Add(2 * time.Second)
	out, hit, err := c.GetOrRender("k", renderFn)
	require.NoError(t, err)
	assert.False(t, hit, "entry must expire after the TTL")
	assert.Equal(t, "render-2", out)
	assert.Equal(t, 2, calls)
}

func TestExpiredEntriesArePurgedOnAccess(t *testing.T) {
	c := New(time.Minute, 4096)
	clock := fakeClock(c)

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("k%d", i)
		_, _, err := c.GetOrRender(key, func() (string, error) { return "v", nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 5, c.Len())

	*clock = clock.Add(2 * time.Minute)
	_, _, _ = c.GetOrRender("fresh", func() (string, error) { return "v", nil })

	assert.Equal(t, 1, c.Len(), "stale entries must be gone after access")
}

func TestSizeCapEvictsOldestExpiryFirst(t *testing.T) {
	// Each entry is len(key)+len(value) = 2+8 = 10 bytes; cap holds three
	c := New(time.Minute, 30)
	clock := fakeClock(c)

	value := func() (string, error) { return "12345678", nil }

	_, _, _ = c.GetOrRender("k0", value)
	*clock = clock.Add(time.Second)
	_, _, _ = c.GetOrRender("k1", value)
	*clock = clock.Add(time.Second)
	_, _, _ = c.GetOrRender("k2", value)
	require.Equal(t, 3, c.Len())
	require.Equal(t, 30, c.Size())

	*clock = clock.Add(time.Second)
	_, _, _ = c.GetOrRender("k3", value)

	assert.Equal(t, 3, c.Len())
	assert.LessOrEqual(t, c.Size(), 30)

	// k0 had the earliest expiry, so it is the one evicted
	_, hit, _ := c.GetOrRender("k0", value)
	assert.False(t, hit)
	_, hit, _ = c.GetOrRender("k3", value)
	assert.True(t, hit)
}

func TestOversizedValueIsNotCached(t *testing.T) {
	c := New(time.Minute, 10)
	fakeClock(c)

	big := func() (string, error) { return "this value exceeds the whole budget", nil }
	out, hit, err := c.GetOrRender("k", big)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotEmpty(t, out)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Size())
}

func TestRenderErrorIsNotCached(t *testing.T) {
	c := New(time.Minute, 1024)
	fakeClock(c)

	calls := 0
	failing := func() (string, error) {
		calls++
		if calls == 1 {
			return "", fmt.Errorf("render blew up")
		}
		return "ok", nil
	}

	_, _, err := c.GetOrRender("k", failing)
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())

	out, hit, err := c.GetOrRender("k", failing)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "ok", out)
}

func TestClear(t *testing.T) {
	c := New(time.Minute, 1024)
	fakeClock(c)

	_, _, _ = c.GetOrRender("k", func() (string, error) { return "v", nil })
	require.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Size())
}

func TestKeyDerivation(t *testing.T) {
	optsA := types.RenderOptions{Kind: types.RenderPlain, Indent: 2}
	optsB := types.RenderOptions{Kind: types.RenderPretty, Indent: 2}

	content := []byte(`{"a": 1}`)
	other := []byte(`{"a": 2}`)

	assert.Equal(t, Key(content, optsA), Key(content, optsA),
		"same content and options must share a key")
	assert.NotEqual(t, Key(content, optsA), Key(content, optsB),
		"different options must not share a key")
	assert.NotEqual(t, Key(content, optsA), Key(other, optsA),
		"different content must not share a key")
	assert.Len(t, Key(content, optsA), 64)
}
