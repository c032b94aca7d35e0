package ground

import (
	"fmt"
	"sort"
)

func coordinateKey(lat, lon float64) string {
	return fmt.Sprintf("%.6f_%.6f", lat, lon)
}

// Dedupe keeps one reading per (lat, lon) pair, the one with the
// maximum timestamp. Output order is stable across runs: sorted by
// latitude, then longitude.
func Dedupe(readings []Reading) []Reading {
	latest := make(map[string]Reading, len(readings))
	for _, r := range readings {
		key := coordinateKey(r.Lat, r.Lon)
		if prev, ok := latest[key]; !ok || r.Timestamp.After(prev.Timestamp) {
			latest[key] = r
		}
	}

	out := make([]Reading, 0, len(latest))
	for _, r := range latest {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Lat != out[j].Lat {
			return out[i].Lat < out[j].Lat
		}
		return out[i].Lon < out[j].Lon
	})
	return out
}
