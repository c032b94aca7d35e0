package main

import (
	"fmt"
	"os"

	"github.com/air-guardian/pm25-fusion-poc/internal/config"
	"github.com/air-guardian/pm25-fusion-poc/internal/delivery"
	"github.com/air-guardian/pm25-fusion-poc/internal/notification"
	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func printBanner() {
	banner := figure.NewFigure("Air Guardian", "standard", true)
	bannercolor.Cyan(banner.String())
	fmt.Println()
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func main() {
	logger := newLogger()

	var cfg *config.Config
	rootCmd := &cobra.Command{
		Use:   "air-guardian",
		Short: "PM2.5 estimation pipeline for India",
		Long: `Estimates surface-level PM2.5 across India by fusing ground-station
measurements, weather forecasts and satellite AOD rasters, then training
a regression model and rendering a prediction map.

Stages run in order: fetch -> fuse -> train -> predict.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			return err
		},
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "fetch",
		Short: "Fetch live ground readings and align weather forecasts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return delivery.FetchData(cmd.Context(), cfg, logger)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "download",
		Short: "Download AOD rasters from a configured vendor endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return delivery.DownloadRasters(cmd.Context(), cfg, logger)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "fuse",
		Short: "Fuse ground+weather rows with satellite AOD observations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return delivery.FuseSatellite(cfg, logger)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "train",
		Short: "Train the regression model and write the validation report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return delivery.Train(cfg, logger)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "predict",
		Short: "Predict PM2.5 and render the India map",
		RunE: func(cmd *cobra.Command, args []string) error {
			return delivery.PredictAndMap(cfg, logger)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "synth",
		Short: "Generate synthetic features when no rasters are available",
		RunE: func(cmd *cobra.Command, args []string) error {
			return delivery.Synthesize(cfg, logger)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: fetch, fuse, train, predict",
		RunE: func(cmd *cobra.Command, args []string) error {
			printBanner()
			stages := []struct {
				name string
				fn   func() error
			}{
				{"fetch", func() error { return delivery.FetchData(cmd.Context(), cfg, logger) }},
				{"fuse", func() error { return delivery.FuseSatellite(cfg, logger) }},
				{"train", func() error { return delivery.Train(cfg, logger) }},
				{"predict", func() error { return delivery.PredictAndMap(cfg, logger) }},
			}
			for _, stage := range stages {
				bannercolor.Blue("--- Running stage: %s ---", stage.name)
				if err := stage.fn(); err != nil {
					notifyErr := notification.SendDiscordError(cfg.DiscordErrorURL,
						fmt.Sprintf("Stage %s failed: %s", stage.name, err.Error()))
					if notifyErr != nil {
						logger.Warn().Err(notifyErr).Msg("failed to send failure notification")
					}
					return fmt.Errorf("stage %s failed: %w", stage.name, err)
				}
			}
			bannercolor.Green("Pipeline completed successfully.")
			if err := notification.SendDiscordSuccess(cfg.DiscordSuccessURL,
				"All stages completed. Map and validation report are ready."); err != nil {
				logger.Warn().Err(err).Msg("failed to send success notification")
			}
			return nil
		},
	})

	if err := rootCmd.Execute(); err != nil {
		bannercolor.Red("Error: %s", err.Error())
		os.Exit(1)
	}
}
