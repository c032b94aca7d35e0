// Package synth fabricates plausible feature values for ground readings
// so the training and mapping stages can run before any satellite
// rasters are available.
package synth

import (
	"math"
	"math/rand"

	"github.com/air-guardian/pm25-fusion-poc/internal/fusion"
	"github.com/air-guardian/pm25-fusion-poc/internal/ground"
	"github.com/air-guardian/pm25-fusion-poc/internal/weather"
)

func uniform(r *rand.Rand, lo, hi, decimals float64) float64 {
	v := lo + r.Float64()*(hi-lo)
	scale := math.Pow(10, decimals)
	return math.Round(v*scale) / scale
}

// Features attaches uniform-random AOD, temperature, humidity and wind
// speed to each reading. The seed makes output reproducible.
func Features(readings []ground.Reading, seed int64) []fusion.Record {
	r := rand.New(rand.NewSource(seed))
	records := make([]fusion.Record, 0, len(readings))
	for _, reading := range readings {
		aod := uniform(r, 0.1, 1.2, 2)
		temp := uniform(r, 20, 40, 1)
		hum := uniform(r, 30, 90, 1)
		wind := uniform(r, 1, 10, 1)
		records = append(records, fusion.Record{
			StationRecord: weather.StationRecord{
				Reading:     reading,
				Temperature: &temp,
				Humidity:    &hum,
				WindSpeed:   &wind,
			},
			AOD: &aod,
		})
	}
	return records
}
