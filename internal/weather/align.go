package weather

import (
	"context"
	"time"

	"github.com/air-guardian/pm25-fusion-poc/internal/ground"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
)

// Sample holds the weather fields aligned to one ground reading. Nil
// fields mean the lookup failed for that location.
type Sample struct {
	Temperature *float64
	Humidity    *float64
	WindSpeed   *float64
}

// StationRecord is a ground reading with its aligned weather sample,
// the row format of the ground_weather artifact.
type StationRecord struct {
	ground.Reading
	Temperature *float64 `csv:"temperature,omitempty"`
	Humidity    *float64 `csv:"humidity,omitempty"`
	WindSpeed   *float64 `csv:"wind_speed,omitempty"`
}

// Nearest picks the hourly entry whose timestamp is closest to ts in
// absolute difference. Ties keep the earlier entry. Returns false on an
// empty series.
func (s Series) Nearest(ts time.Time) (Sample, bool) {
	if len(s.Times) == 0 {
		return Sample{}, false
	}

	best := 0
	bestDiff := absDuration(s.Times[0].Sub(ts))
	for i := 1; i < len(s.Times); i++ {
		diff := absDuration(s.Times[i].Sub(ts))
		if diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}

	return Sample{
		Temperature: &s.Temperature[best],
		Humidity:    &s.Humidity[best],
		WindSpeed:   &s.WindSpeed[best],
	}, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// Attach fetches the forecast for every reading's coordinate and aligns
// the closest-in-time hourly entry. A failed location keeps its weather
// fields empty and does not abort the batch. Calls go out one location
// at a time, with a fixed pause after every uncached request.
func Attach(ctx context.Context, client *Client, readings []ground.Reading, pause time.Duration, logger zerolog.Logger) []StationRecord {
	logger = logger.With().Str("component", "weather").Logger()
	bar := progressbar.Default(int64(len(readings)), "Aligning weather")

	records := make([]StationRecord, 0, len(readings))
	failed := 0
	for _, reading := range readings {
		record := StationRecord{Reading: reading}

		series, fromCache, err := client.Forecast(ctx, reading.Lat, reading.Lon)
		if err != nil {
			failed++
			logger.Warn().Err(err).
				Float64("lat", reading.Lat).
				Float64("lon", reading.Lon).
				Msg("weather lookup failed, leaving fields empty")
		} else if sample, ok := series.Nearest(reading.Timestamp); ok {
			record.Temperature = sample.Temperature
			record.Humidity = sample.Humidity
			record.WindSpeed = sample.WindSpeed
		}

		records = append(records, record)
		bar.Add(1)

		if !fromCache && pause > 0 {
			time.Sleep(pause)
		}
	}
	bar.Finish()

	if failed > 0 {
		logger.Warn().Int("failed", failed).Int("total", len(readings)).Msg("some locations have no weather data")
	}
	return records
}
