package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourlySeries(start time.Time, temps []float64) Series {
	s := Series{Temperature: temps}
	for i := range temps {
		s.Times = append(s.Times, start.Add(time.Duration(i)*time.Hour))
		s.Humidity = append(s.Humidity, 50+float64(i))
		s.WindSpeed = append(s.WindSpeed, 2+float64(i))
	}
	return s
}

func TestNearestPicksClosestHour(t *testing.T) {
	start := time.Date(2024, 9, 4, 0, 0, 0, 0, time.UTC)
	series := hourlySeries(start, []float64{20, 21, 22, 23})

	sample, ok := series.Nearest(start.Add(time.Hour + 25*time.Minute))
	require.True(t, ok)
	assert.Equal(t, 21.0, *sample.Temperature)
	assert.Equal(t, 51.0, *sample.Humidity)
	assert.Equal(t, 3.0, *sample.WindSpeed)
}

func TestNearestTieKeepsEarlierEntry(t *testing.T) {
	start := time.Date(2024, 9, 4, 0, 0, 0, 0, time.UTC)
	series := hourlySeries(start, []float64{20, 21})

	// Exactly between the two hourly rows.
	sample, ok := series.Nearest(start.Add(30 * time.Minute))
	require.True(t, ok)
	assert.Equal(t, 20.0, *sample.Temperature)
}

func TestNearestBeforeAndAfterRange(t *testing.T) {
	start := time.Date(2024, 9, 4, 0, 0, 0, 0, time.UTC)
	series := hourlySeries(start, []float64{20, 21, 22})

	sample, ok := series.Nearest(start.Add(-6 * time.Hour))
	require.True(t, ok)
	assert.Equal(t, 20.0, *sample.Temperature)

	sample, ok = series.Nearest(start.Add(48 * time.Hour))
	require.True(t, ok)
	assert.Equal(t, 22.0, *sample.Temperature)
}

func TestNearestEmptySeries(t *testing.T) {
	_, ok := Series{}.Nearest(time.Now())
	assert.False(t, ok)
}

func TestParseSeriesMisalignedArrays(t *testing.T) {
	var payload forecastResponse
	payload.Hourly.Time = []string{"2024-09-04T00:00", "2024-09-04T01:00"}
	payload.Hourly.Temperature = []float64{20}
	payload.Hourly.Humidity = []float64{50, 51}
	payload.Hourly.WindSpeed = []float64{2, 3}

	_, err := parseSeries(payload)
	assert.Error(t, err)
}
