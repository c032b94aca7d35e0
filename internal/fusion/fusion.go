// Package fusion joins ground+weather station records with satellite AOD
// observations by nearest neighbor in a combined spatio-temporal metric
// space: (latitude, longitude, unixSeconds/TimeScale). The time scale
// converts a temporal difference into spatial-degree-equivalent units, so
// a single Euclidean k-d tree query weighs both.
package fusion

import (
	"errors"
	"fmt"
	"time"

	"github.com/air-guardian/pm25-fusion-poc/internal/ground"
	"github.com/air-guardian/pm25-fusion-poc/internal/satellite"
	"github.com/air-guardian/pm25-fusion-poc/internal/weather"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// DefaultTimeScale makes one day of elapsed time equivalent to 0.1
// degree of spatial offset: 86400 s / 0.1° = 864000.
const DefaultTimeScale = 864000.0

// ErrNoCompleteRecords is returned when every fused row was dropped by
// the completeness filter, so downstream training must not proceed.
var ErrNoCompleteRecords = errors.New("no complete records after fusion")

// Record is one fused feature row: a station record plus the AOD of its
// nearest satellite observation.
type Record struct {
	weather.StationRecord
	AOD *float64 `csv:"aod,omitempty"`
}

// Complete reports whether every feature field required for modeling is
// present.
func (r Record) Complete() bool {
	return r.AOD != nil && r.Temperature != nil && r.Humidity != nil && r.WindSpeed != nil
}

type Options struct {
	// TimeScale is the number of seconds of time difference worth one
	// spatial degree. Zero selects DefaultTimeScale.
	TimeScale float64
}

// obsPoint is a satellite observation embedded in the scaled 3D space.
type obsPoint struct {
	coords [3]float64
	idx    int
}

func (p obsPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(obsPoint)
	return p.coords[d] - q.coords[d]
}

func (p obsPoint) Dims() int { return 3 }

func (p obsPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(obsPoint)
	var sum float64
	for i := range p.coords {
		d := p.coords[i] - q.coords[i]
		sum += d * d
	}
	return sum
}

type obsPoints []obsPoint

func (p obsPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p obsPoints) Len() int                              { return len(p) }
func (p obsPoints) Pivot(d kdtree.Dim) int                { return obsPlane{obsPoints: p, Dim: d}.Pivot() }
func (p obsPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

type obsPlane struct {
	kdtree.Dim
	obsPoints
}

func (p obsPlane) Less(i, j int) bool {
	return p.obsPoints[i].coords[p.Dim] < p.obsPoints[j].coords[p.Dim]
}
func (p obsPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p obsPlane) Slice(start, end int) kdtree.SortSlicer {
	p.obsPoints = p.obsPoints[start:end]
	return p
}
func (p obsPlane) Swap(i, j int) {
	p.obsPoints[i], p.obsPoints[j] = p.obsPoints[j], p.obsPoints[i]
}

func scaledCoords(lat, lon float64, ts time.Time, timeScale float64) [3]float64 {
	return [3]float64{lat, lon, float64(ts.Unix()) / timeScale}
}

// Index is a static nearest-neighbor index over satellite observations
// in the scaled spatio-temporal space.
type Index struct {
	tree      *kdtree.Tree
	obs       []satellite.Observation
	timeScale float64
}

// NewIndex builds the k-d tree. The observation set must be non-empty.
func NewIndex(obs []satellite.Observation, timeScale float64) (*Index, error) {
	if len(obs) == 0 {
		return nil, errors.New("cannot index an empty observation set")
	}
	if timeScale <= 0 {
		timeScale = DefaultTimeScale
	}

	points := make(obsPoints, len(obs))
	for i, o := range obs {
		points[i] = obsPoint{coords: scaledCoords(o.Lat, o.Lon, o.Timestamp, timeScale), idx: i}
	}
	return &Index{
		tree:      kdtree.New(points, false),
		obs:       obs,
		timeScale: timeScale,
	}, nil
}

// Nearest returns the observation closest to (lat, lon, ts) and the
// squared scaled distance to it. Ties are broken by tree traversal
// order. No maximum-distance cutoff is enforced.
func (ix *Index) Nearest(lat, lon float64, ts time.Time) (satellite.Observation, float64) {
	q := obsPoint{coords: scaledCoords(lat, lon, ts, ix.timeScale)}
	got, dist := ix.tree.Nearest(q)
	return ix.obs[got.(obsPoint).idx], dist
}

// Fuse produces one record per deduplicated ground row, attaching the
// nearest satellite AOD, then drops rows with any missing feature. An
// empty satellite set leaves every AOD missing, so no rows survive.
// Fuse never fails on individual rows; it errors only when the final
// set is empty, or on invalid options.
func Fuse(rows []weather.StationRecord, obs []satellite.Observation, opts Options, logger zerolog.Logger) ([]Record, error) {
	logger = logger.With().Str("component", "fusion").Logger()
	if opts.TimeScale < 0 {
		return nil, fmt.Errorf("time scale must be non-negative, got %v", opts.TimeScale)
	}

	rows = dedupeRows(rows)
	obs = satellite.Dedupe(obs)

	var index *Index
	if len(obs) > 0 {
		var err error
		index, err = NewIndex(obs, opts.TimeScale)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Warn().Msg("no satellite observations, AOD will be missing on every row")
	}

	bar := progressbar.Default(int64(len(rows)), "Fusing records")
	records := make([]Record, 0, len(rows))
	worst := 0.0
	for _, row := range rows {
		record := Record{StationRecord: row}
		if index != nil {
			nearest, dist := index.Nearest(row.Lat, row.Lon, row.Timestamp)
			aod := nearest.AOD
			record.AOD = &aod
			if dist > worst {
				worst = dist
			}
		}
		records = append(records, record)
		bar.Add(1)
	}
	bar.Finish()

	complete := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Complete() {
			complete = append(complete, r)
		}
	}

	dropped := len(records) - len(complete)
	logger.Info().
		Int("ground_rows", len(rows)).
		Int("satellite_points", len(obs)).
		Int("fused", len(complete)).
		Int("dropped_incomplete", dropped).
		Msg("fusion finished")
	if index != nil {
		logger.Debug().Float64("worst_scaled_distance_sq", worst).Msg("no distance cutoff is enforced")
	}

	if len(complete) == 0 {
		return nil, ErrNoCompleteRecords
	}
	return complete, nil
}

// dedupeRows keeps the most recent row per (lat, lon) pair, mirroring
// the ground store's own dedup so fusion is safe to call on raw input.
func dedupeRows(rows []weather.StationRecord) []weather.StationRecord {
	readings := make([]ground.Reading, len(rows))
	byKey := make(map[ground.Reading]weather.StationRecord, len(rows))
	for i, row := range rows {
		readings[i] = row.Reading
		byKey[row.Reading] = row
	}
	kept := ground.Dedupe(readings)

	out := make([]weather.StationRecord, 0, len(kept))
	for _, r := range kept {
		out = append(out, byKey[r])
	}
	return out
}
