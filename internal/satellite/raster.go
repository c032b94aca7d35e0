package satellite

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/air-guardian/pm25-fusion-poc/internal/utils"
	"github.com/airbusgeo/godal"
	"github.com/rs/zerolog"
)

// GDAL needs its format drivers registered before any dataset can be
// opened or created. Done once, lazily, so every entrypoint is covered.
var registerDrivers sync.Once

var rasterExtensions = []string{".nc", ".nc4", ".hdf", ".tif", ".tiff"}

func isRasterFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range rasterExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadDirectory parses every raster file in dir into a flat, deduplicated
// observation set. Malformed files are skipped with a warning; a missing
// or empty directory yields an empty set, not an error.
func LoadDirectory(dir string, schema Schema, now func() time.Time, logger zerolog.Logger) ([]Observation, error) {
	logger = logger.With().Str("component", "satellite").Logger()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("dir", dir).Msg("satellite raster directory does not exist, continuing without AOD")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read satellite raster directory: %w", err)
	}

	var all []Observation
	for _, entry := range entries {
		if entry.IsDir() || !isRasterFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		obs, err := LoadFile(path, schema, now, logger)
		if err != nil {
			logger.Warn().Err(err).Str("file", entry.Name()).Msg("skipping malformed raster file")
			continue
		}
		all = append(all, obs...)
		logger.Info().Str("file", entry.Name()).Int("points", len(obs)).Msg("parsed raster file")
	}

	all = Dedupe(all)
	if len(all) > 0 {
		stamps := make([]time.Time, 0, len(all))
		for _, o := range all {
			stamps = append(stamps, o.Timestamp)
		}
		stamps = utils.SortDates(stamps, true)
		logger.Info().
			Int("points", len(all)).
			Time("first", stamps[0]).
			Time("last", stamps[len(stamps)-1]).
			Msg("satellite observation set ready")
	}
	return all, nil
}

// LoadFile flattens one raster into (lat, lon, timestamp, aod) points.
// The acquisition time comes from the file name when the raster has no
// time coordinate of its own; wall clock is the last resort.
func LoadFile(path string, schema Schema, now func() time.Time, logger zerolog.Logger) ([]Observation, error) {
	ds, err := openAODDataset(path, schema)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, fmt.Errorf("raster %s exposes no bands", filepath.Base(path))
	}
	band := bands[0]

	width := ds.Structure().SizeX
	height := ds.Structure().SizeY
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster %s has an empty grid", filepath.Base(path))
	}

	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("raster %s has no geotransform: %w", filepath.Base(path), err)
	}

	buf := make([]float64, width*height)
	if err := band.Read(0, 0, buf, width, height); err != nil {
		return nil, fmt.Errorf("failed to read AOD band from %s: %w", filepath.Base(path), err)
	}

	nodata, hasNodata := band.NoData()

	ts, ok := TimestampFromFilename(filepath.Base(path))
	if !ok {
		ts = now().UTC()
		logger.Warn().Str("file", filepath.Base(path)).Time("fallback", ts).
			Msg("no timestamp in raster or file name, using wall clock")
	}

	obs := make([]Observation, 0, len(buf))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := buf[y*width+x]
			if math.IsNaN(v) || (hasNodata && v == nodata) {
				continue
			}
			// Pixel centers, affine grid in degrees.
			lon := gt[0] + gt[1]*(float64(x)+0.5) + gt[2]*(float64(y)+0.5)
			lat := gt[3] + gt[4]*(float64(x)+0.5) + gt[5]*(float64(y)+0.5)
			obs = append(obs, Observation{Lat: lat, Lon: lon, Timestamp: ts, AOD: v})
		}
	}
	return obs, nil
}

// openAODDataset opens the raster directly, falling back to probing the
// schema's candidate variable names as subdatasets for container formats
// that do not expose a default band.
func openAODDataset(path string, schema Schema) (*godal.Dataset, error) {
	registerDrivers.Do(godal.RegisterAll)

	ds, err := godal.Open(path, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("%s", msg)
	}))
	if err == nil && len(ds.Bands()) > 0 {
		return ds, nil
	}
	if ds != nil {
		ds.Close()
	}

	ext := strings.ToLower(filepath.Ext(path))
	driver := "NETCDF"
	if ext == ".hdf" {
		driver = "HDF5"
	}
	for _, variable := range schema.AODVariables {
		sub := fmt.Sprintf("%s:\"%s\":%s", driver, path, variable)
		ds, err := godal.Open(sub)
		if err == nil && len(ds.Bands()) > 0 {
			return ds, nil
		}
		if ds != nil {
			ds.Close()
		}
	}
	return nil, fmt.Errorf("no AOD variable found in %s (tried %v)", filepath.Base(path), schema.AODVariables)
}
