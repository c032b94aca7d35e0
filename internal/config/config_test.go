package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ROOT_PATH", "OPENAQ_BASE_URL", "OPENAQ_API_KEY", "GROUND_COUNTRY",
		"GROUND_PAGE_LIMIT", "OPEN_METEO_BASE_URL", "WEATHER_PAUSE",
		"HTTP_TIMEOUT", "FUSION_TIME_SCALE", "AOD_VARIABLE_NAMES",
		"SAT_TOKEN_URL", "SAT_PRODUCT_URLS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.RootPath)
	assert.Equal(t, "https://api.openaq.org/v2/measurements", cfg.GroundBaseURL)
	assert.Equal(t, "IN", cfg.Country)
	assert.Equal(t, 1000, cfg.PageLimit)
	assert.Equal(t, "https://api.open-meteo.com/v1/forecast", cfg.WeatherBaseURL)
	assert.Equal(t, 300*time.Millisecond, cfg.WeatherPause)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 864000.0, cfg.TimeScale)
	assert.Equal(t, []string{"AOD_550nm", "AOD", "aod"}, cfg.AODVariables)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ROOT_PATH", "/tmp/pipeline")
	t.Setenv("GROUND_COUNTRY", "NP")
	t.Setenv("GROUND_PAGE_LIMIT", "250")
	t.Setenv("WEATHER_PAUSE", "2s")
	t.Setenv("FUSION_TIME_SCALE", "43200")
	t.Setenv("AOD_VARIABLE_NAMES", "AOD_550, Optical_Depth ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/pipeline", cfg.RootPath)
	assert.Equal(t, "NP", cfg.Country)
	assert.Equal(t, 250, cfg.PageLimit)
	assert.Equal(t, 2*time.Second, cfg.WeatherPause)
	assert.Equal(t, 43200.0, cfg.TimeScale)
	assert.Equal(t, []string{"AOD_550", "Optical_Depth"}, cfg.AODVariables)
}

func TestLoadRejectsBadTimeScale(t *testing.T) {
	clearEnv(t)

	t.Setenv("FUSION_TIME_SCALE", "0")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("FUSION_TIME_SCALE", "-86400")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("FUSION_TIME_SCALE", "ten days")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHER_PAUSE", "soon")
	_, err := Load()
	require.Error(t, err)
}
