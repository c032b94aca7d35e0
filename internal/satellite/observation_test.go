package satellite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupeCollapsesExactTriples(t *testing.T) {
	ts := time.Date(2024, 9, 4, 8, 15, 0, 0, time.UTC)
	obs := []Observation{
		{Lat: 28.6, Lon: 77.2, Timestamp: ts, AOD: 0.4},
		{Lat: 28.6, Lon: 77.2, Timestamp: ts, AOD: 0.9}, // duplicate triple
		{Lat: 28.6, Lon: 77.2, Timestamp: ts.Add(time.Hour), AOD: 0.5},
		{Lat: 19.0, Lon: 72.8, Timestamp: ts, AOD: 0.6},
	}

	out := Dedupe(obs)
	require.Len(t, out, 3)

	// First seen wins the duplicate; order is timestamp, lat, lon.
	assert.Equal(t, Observation{Lat: 19.0, Lon: 72.8, Timestamp: ts, AOD: 0.6}, out[0])
	assert.Equal(t, 0.4, out[1].AOD)
	assert.Equal(t, ts.Add(time.Hour), out[2].Timestamp)
}

func TestDedupeEmpty(t *testing.T) {
	assert.Empty(t, Dedupe(nil))
}
