package cache

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_QueryOrderIndependent(t *testing.T) {
	a := Key("/claims", url.Values{"topic": {"x"}, "limit": {"20"}})
	b := Key("/claims", url.Values{"limit": {"20"}, "topic": {"x"}})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, Key("/claims", nil))
}

func TestKey_SafeFileName(t *testing.T) {
	key := Key("/topics/a:b", url.Values{"refresh": {"true"}})
	assert.Len(t, key, 64)
	assert.False(t, strings.ContainsAny(key, `:/\?*"<>|`))

	dir := t.TempDir()
	require.NoError(t, NewDiskCache(dir, time.Hour).Set(key, []byte("{}"), 0))
	_, err := os.Stat(filepath.Join(dir, key+".json"))
	assert.NoError(t, err)
}

func TestMemoryCache_CopiesValue(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	body := []byte("abc")
	require.NoError(t, c.Set("k", body, 0))
	body[0] = 'x'

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "abc", string(got))

	require.NoError(t, c.Delete("k"))
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestDiskCache_RoundTripAndExpiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set("k", []byte(`{"sources":[]}`), 0))
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, `{"sources":[]}`, string(got))

	now = now.Add(2 * time.Hour)
	_, ok = c.Get("k")
	assert.False(t, ok)
	_, err := os.Stat(filepath.Join(dir, "k.json"))
	assert.True(t, os.IsNotExist(err), "expired entry should be removed")

	assert.NoError(t, c.Delete("missing"))
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "k.json"), []byte("{not json"), 0o644))

	c := NewDiskCache(dir, time.Hour)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestLayeredCache_LastKnownOutlivesFresh(t *testing.T) {
	c := NewLayeredCache(time.Millisecond, t.TempDir(), time.Hour)
	require.NoError(t, c.Set("k", []byte("v"), 0))

	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok, "fresh layer should have expired")

	got, ok := c.LastKnown("k")
	require.True(t, ok)
	assert.Equal(t, "v", string(got))
}

func TestLayeredCache_MemoryOnly(t *testing.T) {
	c := NewLayeredCache(time.Minute, "", time.Hour)
	require.NoError(t, c.Set("k", []byte("v"), 0))

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", string(got))

	require.NoError(t, c.Clear())
	_, ok = c.LastKnown("k")
	assert.False(t, ok)
}

func TestLayeredCache_DeleteAndClearBothLayers(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Hour)
	require.NoError(t, c.Set("a", []byte("1"), 0))
	require.NoError(t, c.Set("b", []byte("2"), 0))

	require.NoError(t, c.Delete("a"))
	_, ok := c.LastKnown("a")
	assert.False(t, ok)
	_, ok = c.LastKnown("b")
	assert.True(t, ok)

	require.NoError(t, c.Clear())
	_, ok = c.LastKnown("b")
	assert.False(t, ok)
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
