package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/air-guardian/pm25-fusion-poc/internal/cache"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// Series is an hourly forecast for one coordinate, as returned by the
// weather API. Slices are index-aligned and sorted by time.
type Series struct {
	Times       []time.Time `json:"times"`
	Temperature []float64   `json:"temperature"`
	Humidity    []float64   `json:"humidity"`
	WindSpeed   []float64   `json:"wind_speed"`
}

type forecastResponse struct {
	Hourly struct {
		Time        []string  `json:"time"`
		Temperature []float64 `json:"temperature_2m"`
		Humidity    []float64 `json:"relative_humidity_2m"`
		WindSpeed   []float64 `json:"wind_speed_10m"`
	} `json:"hourly"`
}

type Client struct {
	baseURL string
	http    *http.Client
	circuit *gobreaker.CircuitBreaker
	cache   *cache.FileCache[Series]
	logger  zerolog.Logger
}

// NewClient builds an Open-Meteo forecast client. Responses are cached
// per (lat, lon, day) so re-runs on the same day do not hit the network.
func NewClient(baseURL, cacheDir string, timeout time.Duration, logger zerolog.Logger) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "open-meteo",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		circuit: cb,
		cache:   cache.NewFileCache[Series](cacheDir, 24*time.Hour),
		logger:  logger.With().Str("component", "weather").Logger(),
	}
}

// Forecast returns the hourly series for a coordinate. The second
// return value reports whether the series came from the cache.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (Series, bool, error) {
	key := c.cache.GenerateKey(fmt.Sprintf("%.4f", lat), fmt.Sprintf("%.4f", lon), time.Now().UTC().Format("2006-01-02"))
	if cached, ok := c.cache.Get(key); ok {
		return cached, true, nil
	}

	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%f", lat))
	query.Set("longitude", fmt.Sprintf("%f", lon))
	query.Set("hourly", "temperature_2m,relative_humidity_2m,wind_speed_10m")
	query.Set("timezone", "UTC")
	requestURL := c.baseURL + "?" + query.Encode()

	result, err := c.circuit.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
		}

		var payload forecastResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("failed to parse weather response: %w", err)
		}
		return payload, nil
	})
	if err != nil {
		return Series{}, false, fmt.Errorf("failed to fetch forecast for (%.4f, %.4f): %w", lat, lon, err)
	}

	payload := result.(forecastResponse)
	series, err := parseSeries(payload)
	if err != nil {
		return Series{}, false, err
	}

	if err := c.cache.Set(key, series); err != nil {
		c.logger.Warn().Err(err).Msg("failed to cache weather series")
	}
	return series, false, nil
}

func parseSeries(payload forecastResponse) (Series, error) {
	h := payload.Hourly
	if len(h.Time) != len(h.Temperature) || len(h.Time) != len(h.Humidity) || len(h.Time) != len(h.WindSpeed) {
		return Series{}, fmt.Errorf("weather response has misaligned hourly arrays")
	}

	series := Series{
		Times:       make([]time.Time, 0, len(h.Time)),
		Temperature: h.Temperature,
		Humidity:    h.Humidity,
		WindSpeed:   h.WindSpeed,
	}
	for _, raw := range h.Time {
		// Open-Meteo returns local-naive timestamps; we request UTC.
		ts, err := time.Parse("2006-01-02T15:04", raw)
		if err != nil {
			return Series{}, fmt.Errorf("failed to parse weather timestamp %q: %w", raw, err)
		}
		series.Times = append(series.Times, ts.UTC())
	}
	return series, nil
}
