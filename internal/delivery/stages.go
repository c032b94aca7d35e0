// Package delivery sequences the pipeline stages. Each stage checks its
// prerequisites, does its work, and writes its artifact atomically; a
// failed stage reports an actionable error and leaves no partial output.
package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/air-guardian/pm25-fusion-poc/internal/config"
	"github.com/air-guardian/pm25-fusion-poc/internal/fusion"
	"github.com/air-guardian/pm25-fusion-poc/internal/ground"
	"github.com/air-guardian/pm25-fusion-poc/internal/ml"
	"github.com/air-guardian/pm25-fusion-poc/internal/output"
	"github.com/air-guardian/pm25-fusion-poc/internal/properties"
	"github.com/air-guardian/pm25-fusion-poc/internal/satellite"
	"github.com/air-guardian/pm25-fusion-poc/internal/synth"
	"github.com/air-guardian/pm25-fusion-poc/internal/weather"
	"github.com/rs/zerolog"
)

// FetchData pulls live ground readings, deduplicates them, aligns the
// weather forecast per station and writes both raw artifacts.
func FetchData(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	client := ground.NewClient(cfg.GroundBaseURL, cfg.GroundAPIKey, cfg.HTTPTimeout, logger)
	readings, err := client.FetchMeasurements(ctx, cfg.Country, cfg.PageLimit)
	if err != nil {
		return err
	}
	readings = ground.Dedupe(readings)
	if len(readings) == 0 {
		return fmt.Errorf("ground API returned no usable readings for country %s", cfg.Country)
	}

	if err := writeCSV(readings, properties.GroundLivePath(cfg.RootPath)); err != nil {
		return err
	}
	logger.Info().Int("stations", len(readings)).Str("file", properties.GroundLivePath(cfg.RootPath)).Msg("ground readings saved")

	weatherClient := weather.NewClient(cfg.WeatherBaseURL, properties.WeatherCacheDir(cfg.RootPath), cfg.HTTPTimeout, logger)
	records := weather.Attach(ctx, weatherClient, readings, cfg.WeatherPause, logger)

	if err := writeCSV(records, properties.GroundWeatherPath(cfg.RootPath)); err != nil {
		return err
	}
	logger.Info().Int("rows", len(records)).Str("file", properties.GroundWeatherPath(cfg.RootPath)).Msg("ground+weather table saved")
	return nil
}

// DownloadRasters fetches AOD products from the configured vendor
// endpoint, when one is configured.
func DownloadRasters(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	if cfg.SatTokenURL == "" || len(cfg.SatProductURLs) == 0 {
		logger.Info().Msg("no satellite vendor endpoint configured, expecting manually supplied rasters")
		return nil
	}
	dl := satellite.DownloadConfig{
		TokenURL:     cfg.SatTokenURL,
		ClientID:     cfg.SatClientID,
		ClientSecret: cfg.SatClientSecret,
	}
	return satellite.Download(ctx, dl, cfg.SatProductURLs, properties.SatelliteDir(cfg.RootPath), logger)
}

// FuseSatellite joins the ground+weather table with the satellite AOD
// observations and writes the fused feature table.
func FuseSatellite(cfg *config.Config, logger zerolog.Logger) error {
	groundWeatherPath := properties.GroundWeatherPath(cfg.RootPath)
	if err := requireArtifact(groundWeatherPath, "fetch"); err != nil {
		return err
	}

	rows, err := readCSV[weather.StationRecord](groundWeatherPath)
	if err != nil {
		return err
	}

	schema := satellite.Schema{AODVariables: cfg.AODVariables}
	obs, err := satellite.LoadDirectory(properties.SatelliteDir(cfg.RootPath), schema, time.Now, logger)
	if err != nil {
		return err
	}

	records, err := fusion.Fuse(rows, obs, fusion.Options{TimeScale: cfg.TimeScale}, logger)
	if err != nil {
		return err
	}

	fusedPath := properties.FusedPath(cfg.RootPath)
	if err := writeCSV(records, fusedPath); err != nil {
		return err
	}
	logger.Info().Int("rows", len(records)).Str("file", fusedPath).Msg("fused feature table saved")
	return nil
}

// Train fits the regressor on the fused table and writes the model
// artifact plus the validation report.
func Train(cfg *config.Config, logger zerolog.Logger) error {
	fusedPath := properties.FusedPath(cfg.RootPath)
	if err := requireArtifact(fusedPath, "fuse"); err != nil {
		return err
	}

	records, err := readCSV[fusion.Record](fusedPath)
	if err != nil {
		return err
	}

	result, err := ml.Train(records, ml.DefaultSeed, logger)
	if err != nil {
		return err
	}

	modelPath := properties.ModelPath(cfg.RootPath)
	if err := ml.Save(result.Model, modelPath); err != nil {
		return err
	}
	reportPath := properties.ValidationReportPath(cfg.RootPath)
	if err := writeCSV(result.Report, reportPath); err != nil {
		return err
	}
	logger.Info().
		Float64("mae", result.MAE).
		Str("model", modelPath).
		Str("report", reportPath).
		Msg("training artifacts saved")
	return nil
}

// PredictAndMap applies the persisted model to the fused table and
// renders the prediction map.
func PredictAndMap(cfg *config.Config, logger zerolog.Logger) error {
	fusedPath := properties.FusedPath(cfg.RootPath)
	if err := requireArtifact(fusedPath, "fuse"); err != nil {
		return err
	}
	modelPath := properties.ModelPath(cfg.RootPath)
	if err := requireArtifact(modelPath, "train"); err != nil {
		return err
	}

	records, err := readCSV[fusion.Record](fusedPath)
	if err != nil {
		return err
	}
	model, err := ml.Load(modelPath)
	if err != nil {
		return err
	}

	complete, preds, err := ml.PredictRecords(model, records)
	if err != nil {
		return err
	}
	if len(complete) == 0 {
		return fmt.Errorf("no complete rows available for prediction, map cannot be generated")
	}

	points := make([]output.Point, 0, len(complete))
	for i, r := range complete {
		points = append(points, output.Point{Lat: r.Lat, Lon: r.Lon, Value: preds[i]})
	}

	mapPath := properties.MapPath(cfg.RootPath)
	if err := output.RenderMap(points, mapPath); err != nil {
		return err
	}
	logger.Info().Int("points", len(points)).Str("file", mapPath).Msg("prediction map saved")
	return nil
}

// Synthesize writes a fused table with synthetic features, so train and
// predict can run without satellite rasters.
func Synthesize(cfg *config.Config, logger zerolog.Logger) error {
	groundLivePath := properties.GroundLivePath(cfg.RootPath)
	if err := requireArtifact(groundLivePath, "fetch"); err != nil {
		return err
	}

	readings, err := readCSV[ground.Reading](groundLivePath)
	if err != nil {
		return err
	}
	if len(readings) == 0 {
		return fmt.Errorf("%s is empty, nothing to synthesize", groundLivePath)
	}

	records := synth.Features(readings, ml.DefaultSeed)
	fusedPath := properties.FusedPath(cfg.RootPath)
	if err := writeCSV(records, fusedPath); err != nil {
		return err
	}
	logger.Info().Int("rows", len(records)).Str("file", fusedPath).Msg("synthetic feature table saved")
	return nil
}
