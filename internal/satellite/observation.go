package satellite

import (
	"fmt"
	"sort"
	"time"
)

// Observation is one flattened grid cell of a satellite AOD raster.
type Observation struct {
	Lat       float64
	Lon       float64
	Timestamp time.Time
	AOD       float64
}

// Schema maps vendor-specific raster layouts onto the fields we need.
// Candidates are tried in declaration order.
type Schema struct {
	// AODVariables are subdataset/variable names probed when a file does
	// not expose its AOD grid as a plain raster band.
	AODVariables []string
}

func DefaultSchema() Schema {
	return Schema{AODVariables: []string{"AOD_550nm", "AOD", "aod"}}
}

// Dedupe collapses observations sharing an exact (lat, lon, timestamp)
// triple, keeping the first seen. Output order is stable: sorted by
// timestamp, then latitude, then longitude.
func Dedupe(obs []Observation) []Observation {
	seen := make(map[string]struct{}, len(obs))
	out := make([]Observation, 0, len(obs))
	for _, o := range obs {
		key := fmt.Sprintf("%.6f_%.6f_%d", o.Lat, o.Lon, o.Timestamp.Unix())
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		if out[i].Lat != out[j].Lat {
			return out[i].Lat < out[j].Lat
		}
		return out[i].Lon < out[j].Lon
	})
	return out
}
