package satellite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestRaster creates a 2x2 AOD grid anchored at (28.7N, 77.0E)
// with 0.1-degree cells and one NoData hole.
func writeTestRaster(t *testing.T, path string) {
	t.Helper()
	registerDrivers.Do(godal.RegisterAll)

	ds, err := godal.Create(godal.GTiff, path, 1, godal.Float64, 2, 2)
	require.NoError(t, err)
	require.NoError(t, ds.SetGeoTransform([6]float64{77.0, 0.1, 0, 28.7, 0, -0.1}))

	band := ds.Bands()[0]
	require.NoError(t, band.SetNoData(-999))
	require.NoError(t, band.Write(0, 0, []float64{0.4, 0.6, -999, 0.8}, 2, 2))
	require.NoError(t, ds.Close())
}

func TestLoadFileFlattensGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aod_20240904_0815.tif")
	writeTestRaster(t, path)

	obs, err := LoadFile(path, DefaultSchema(), time.Now, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, obs, 3) // NoData cell dropped

	want := time.Date(2024, 9, 4, 8, 15, 0, 0, time.UTC)
	for _, o := range obs {
		assert.Equal(t, want, o.Timestamp)
	}

	// Pixel centers of the top row.
	assert.InDelta(t, 28.65, obs[0].Lat, 1e-9)
	assert.InDelta(t, 77.05, obs[0].Lon, 1e-9)
	assert.Equal(t, 0.4, obs[0].AOD)
	assert.InDelta(t, 77.15, obs[1].Lon, 1e-9)
	assert.Equal(t, 0.6, obs[1].AOD)
	// Bottom row keeps only the cell next to the hole.
	assert.InDelta(t, 28.55, obs[2].Lat, 1e-9)
	assert.Equal(t, 0.8, obs[2].AOD)
}

func TestLoadFileFallsBackToWallClock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aod_latest.tif")
	writeTestRaster(t, path)

	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	obs, err := LoadFile(path, DefaultSchema(), func() time.Time { return fixed }, zerolog.Nop())
	require.NoError(t, err)
	require.NotEmpty(t, obs)
	assert.Equal(t, fixed, obs[0].Timestamp)
}

func TestLoadDirectorySkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "aod_20240904_0815.tif")
	writeTestRaster(t, good)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage_20240904_0900.nc"), []byte("not a raster"), 0644))

	obs, err := LoadDirectory(dir, DefaultSchema(), time.Now, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, obs, 3)
}

func TestLoadDirectoryMissingDir(t *testing.T) {
	obs, err := LoadDirectory(filepath.Join(t.TempDir(), "absent"), DefaultSchema(), time.Now, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, obs)
}
