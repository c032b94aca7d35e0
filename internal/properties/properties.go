package properties

import (
	"os"
	"path/filepath"
)

// RootPath is the base directory for the data/ tree. Defaults to the
// working directory when ROOT_PATH is unset.
func RootPath() string {
	if root := os.Getenv("ROOT_PATH"); root != "" {
		return root
	}
	return "."
}

func GroundLivePath(root string) string {
	return filepath.Join(root, "data", "raw", "ground_live.csv")
}

func GroundWeatherPath(root string) string {
	return filepath.Join(root, "data", "raw", "ground_weather.csv")
}

func SatelliteDir(root string) string {
	return filepath.Join(root, "data", "raw", "aod")
}

func FusedPath(root string) string {
	return filepath.Join(root, "data", "processed", "fused.csv")
}

func ModelPath(root string) string {
	return filepath.Join(root, "data", "model", "regressor.bin")
}

func ValidationReportPath(root string) string {
	return filepath.Join(root, "data", "output", "validation_report.csv")
}

func MapPath(root string) string {
	return filepath.Join(root, "data", "output", "india_pm_map.png")
}

func WeatherCacheDir(root string) string {
	return filepath.Join(root, "data", "cache", "weather")
}

func EnsureParentDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}
