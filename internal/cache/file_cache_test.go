package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func TestFileCacheRoundTrip(t *testing.T) {
	fc := NewFileCache[payload](t.TempDir(), 0)
	key := fc.GenerateKey(28.6, 77.2, "2024-09-04")

	_, ok := fc.Get(key)
	assert.False(t, ok)

	want := payload{Name: "delhi", Value: 42}
	require.NoError(t, fc.Set(key, want))

	got, ok := fc.Get(key)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestFileCacheKeyIsStable(t *testing.T) {
	fc := NewFileCache[payload](t.TempDir(), 0)
	assert.Equal(t, fc.GenerateKey(1.5, "a"), fc.GenerateKey(1.5, "a"))
	assert.NotEqual(t, fc.GenerateKey(1.5, "a"), fc.GenerateKey(1.5, "b"))
}

func TestFileCacheExpiry(t *testing.T) {
	dir := t.TempDir()
	fc := NewFileCache[payload](dir, time.Hour)
	key := fc.GenerateKey("expiring")
	require.NoError(t, fc.Set(key, payload{Name: "old"}))

	// Backdate the entry past the max age.
	cacheFile := filepath.Join(dir, key+".json")
	raw, err := os.ReadFile(cacheFile)
	require.NoError(t, err)
	var entry Entry[payload]
	require.NoError(t, json.Unmarshal(raw, &entry))
	entry.CreatedAt = time.Now().Add(-2 * time.Hour)
	raw, err = json.Marshal(entry)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cacheFile, raw, 0644))

	_, ok := fc.Get(key)
	assert.False(t, ok)
}

func TestFileCacheRejectsTamperedEntry(t *testing.T) {
	dir := t.TempDir()
	fc := NewFileCache[payload](dir, 0)
	key := fc.GenerateKey("tamper")
	require.NoError(t, fc.Set(key, payload{Name: "real", Value: 1}))

	cacheFile := filepath.Join(dir, key+".json")
	raw, err := os.ReadFile(cacheFile)
	require.NoError(t, err)
	var entry Entry[payload]
	require.NoError(t, json.Unmarshal(raw, &entry))
	entry.Data.Value = 999
	raw, err = json.Marshal(entry)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cacheFile, raw, 0644))

	_, ok := fc.Get(key)
	assert.False(t, ok)
}
