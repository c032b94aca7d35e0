package ground

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Reading is one ground-station PM2.5 measurement.
type Reading struct {
	Station   string    `csv:"station"`
	Lat       float64   `csv:"lat"`
	Lon       float64   `csv:"lon"`
	Timestamp time.Time `csv:"timestamp"`
	PM25      float64   `csv:"pm25"`
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient builds an OpenAQ measurements client. The API key is passed
// explicitly; a blank key means unauthenticated access.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "ground").Logger(),
	}
}

type measurementsResponse struct {
	Results []struct {
		Location    string `json:"location"`
		Coordinates *struct {
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		} `json:"coordinates"`
		Date *struct {
			UTC string `json:"utc"`
		} `json:"date"`
		Value *float64 `json:"value"`
	} `json:"results"`
}

// FetchMeasurements pulls the latest PM2.5 measurements for a country.
// Malformed records are skipped with a warning; transport and 5xx errors
// are retried with exponential backoff before giving up.
func (c *Client) FetchMeasurements(ctx context.Context, country string, limit int) ([]Reading, error) {
	query := url.Values{}
	query.Set("country", country)
	query.Set("limit", fmt.Sprintf("%d", limit))
	query.Set("parameter", "pm25")
	requestURL := c.baseURL + "?" + query.Encode()

	var payload measurementsResponse
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if c.apiKey != "" {
			req.Header.Set("X-API-Key", c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("ground API returned status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("ground API returned status %d", resp.StatusCode))
		}

		payload = measurementsResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to parse ground API response: %w", err))
		}
		return nil
	}

	// 2 retries on top of the initial call: 3 attempts total.
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, fmt.Errorf("failed to fetch ground measurements: %w", err)
	}

	readings := make([]Reading, 0, len(payload.Results))
	skipped := 0
	for _, item := range payload.Results {
		if item.Coordinates == nil || item.Coordinates.Latitude == nil || item.Coordinates.Longitude == nil ||
			item.Date == nil || item.Value == nil {
			skipped++
			continue
		}
		ts, err := time.Parse(time.RFC3339, item.Date.UTC)
		if err != nil {
			skipped++
			continue
		}
		if *item.Value < 0 {
			skipped++
			continue
		}
		readings = append(readings, Reading{
			Station:   item.Location,
			Lat:       *item.Coordinates.Latitude,
			Lon:       *item.Coordinates.Longitude,
			Timestamp: ts.UTC(),
			PM25:      *item.Value,
		})
	}

	if skipped > 0 {
		c.logger.Warn().Int("skipped", skipped).Msg("dropped malformed ground records")
	}
	c.logger.Info().Int("records", len(readings)).Str("country", country).Msg("fetched ground measurements")
	return readings, nil
}
