package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/air-guardian/pm25-fusion-poc/internal/ground"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const forecastPayload = `{
	"hourly": {
		"time": ["2024-09-04T00:00", "2024-09-04T01:00"],
		"temperature_2m": [28.5, 27.9],
		"relative_humidity_2m": [71, 74],
		"wind_speed_10m": [3.2, 2.8]
	}
}`

func TestForecastParsesAndCaches(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "temperature_2m,relative_humidity_2m,wind_speed_10m", r.URL.Query().Get("hourly"))
		w.Write([]byte(forecastPayload))
	}))
	defer server.Close()

	client := NewClient(server.URL, t.TempDir(), 5*time.Second, zerolog.Nop())

	series, fromCache, err := client.Forecast(context.Background(), 28.6, 77.2)
	require.NoError(t, err)
	assert.False(t, fromCache)
	require.Len(t, series.Times, 2)
	assert.Equal(t, time.Date(2024, 9, 4, 0, 0, 0, 0, time.UTC), series.Times[0])
	assert.Equal(t, 28.5, series.Temperature[0])
	assert.Equal(t, 74.0, series.Humidity[1])
	assert.Equal(t, 2.8, series.WindSpeed[1])

	// Same coordinate on the same day hits the cache.
	cached, fromCache, err := client.Forecast(context.Background(), 28.6, 77.2)
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, series, cached)
	assert.Equal(t, 1, calls)
}

func TestForecastServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, t.TempDir(), 5*time.Second, zerolog.Nop())
	_, _, err := client.Forecast(context.Background(), 19.0, 72.8)
	assert.Error(t, err)
}

func TestAttachToleratesFailedLocations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("latitude") == "19.000000" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(forecastPayload))
	}))
	defer server.Close()

	client := NewClient(server.URL, t.TempDir(), 5*time.Second, zerolog.Nop())
	readings := []ground.Reading{
		{Station: "delhi", Lat: 28.6, Lon: 77.2, Timestamp: time.Date(2024, 9, 4, 0, 30, 0, 0, time.UTC), PM25: 120},
		{Station: "mumbai", Lat: 19.0, Lon: 72.8, Timestamp: time.Date(2024, 9, 4, 0, 30, 0, 0, time.UTC), PM25: 55},
	}

	records := Attach(context.Background(), client, readings, 0, zerolog.Nop())
	require.Len(t, records, 2)

	assert.NotNil(t, records[0].Temperature)
	assert.Nil(t, records[1].Temperature)
	assert.Nil(t, records[1].Humidity)
	assert.Nil(t, records[1].WindSpeed)
}
