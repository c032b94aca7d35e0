package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/air-guardian/pm25-fusion-poc/internal/properties"
	"github.com/joho/godotenv"
)

// Config carries every tunable of the pipeline. Components receive the
// values they need explicitly; nothing reads the process environment
// past Load.
type Config struct {
	RootPath string

	// Ground reading API (OpenAQ-compatible).
	GroundBaseURL string
	GroundAPIKey  string
	Country       string
	PageLimit     int

	// Weather forecast API (Open-Meteo-compatible).
	WeatherBaseURL string
	// Pause between consecutive uncached weather calls, to respect the
	// third-party rate limit.
	WeatherPause time.Duration

	HTTPTimeout time.Duration

	// Fusion: seconds of time difference worth one spatial degree.
	TimeScale float64

	// Candidate raster variable names for the AOD band, tried in order.
	AODVariables []string

	// Optional OAuth2-protected raster vendor endpoint.
	SatTokenURL     string
	SatClientID     string
	SatClientSecret string
	SatProductURLs  []string

	DiscordSuccessURL string
	DiscordErrorURL   string
}

// Load reads configuration from the environment, with a best-effort .env
// file on top.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		RootPath:          properties.RootPath(),
		GroundBaseURL:     getenvDefault("OPENAQ_BASE_URL", "https://api.openaq.org/v2/measurements"),
		GroundAPIKey:      os.Getenv("OPENAQ_API_KEY"),
		Country:           getenvDefault("GROUND_COUNTRY", "IN"),
		PageLimit:         getenvInt("GROUND_PAGE_LIMIT", 1000),
		WeatherBaseURL:    getenvDefault("OPEN_METEO_BASE_URL", "https://api.open-meteo.com/v1/forecast"),
		SatTokenURL:       os.Getenv("SAT_TOKEN_URL"),
		SatClientID:       os.Getenv("SAT_CLIENT_ID"),
		SatClientSecret:   os.Getenv("SAT_CLIENT_SECRET"),
		SatProductURLs:    getenvList("SAT_PRODUCT_URLS"),
		DiscordSuccessURL: os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL"),
		DiscordErrorURL:   os.Getenv("DISCORD_ERROR_NOTIFICATION_URL"),
	}

	pause, err := getenvDuration("WEATHER_PAUSE", 300*time.Millisecond)
	if err != nil {
		return nil, err
	}
	cfg.WeatherPause = pause

	timeout, err := getenvDuration("HTTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	scale, err := getenvFloat("FUSION_TIME_SCALE", 864000)
	if err != nil {
		return nil, err
	}
	if scale <= 0 {
		return nil, fmt.Errorf("FUSION_TIME_SCALE must be positive, got %v", scale)
	}
	cfg.TimeScale = scale

	cfg.AODVariables = getenvList("AOD_VARIABLE_NAMES")
	if len(cfg.AODVariables) == 0 {
		cfg.AODVariables = []string{"AOD_550nm", "AOD", "aod"}
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
