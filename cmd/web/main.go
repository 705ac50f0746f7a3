package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/claimworks/subsidence-report/pkg/observability"
	"github.com/claimworks/subsidence-report/pkg/server"
	"github.com/claimworks/subsidence-report/pkg/services/config"
	"github.com/claimworks/subsidence-report/pkg/services/geocode"
	"github.com/claimworks/subsidence-report/pkg/services/geology"
	"github.com/claimworks/subsidence-report/pkg/services/maprender"
	"github.com/claimworks/subsidence-report/pkg/services/report"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgPath   string
	credsPath string
	profile   string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the subsidence report web service",
		RunE:  runServer,
	}

	home, _ := os.UserHomeDir()
	defaultCreds := filepath.Join(home, ".subsidence", "credentials")

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the service config file (optional, defaults apply)")
	rootCmd.Flags().StringVar(&credsPath, "credentials", defaultCreds,
		"Path to the API credentials file (env vars override)")
	rootCmd.Flags().StringVar(&profile, "profile", "default",
		"Credentials profile to use")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	registry, err := config.NewRegistry(credsPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", credsPath).
			Msg("credentials file not loaded, falling back to environment")
		registry = config.NewEnvRegistry()
	}

	creds, err := registry.GetCredentials(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to resolve credentials: %w", err)
	}

	metrics := observability.NewMetrics()

	var maps maprender.Provider
	switch cfg.MapProvider {
	case config.MapProviderScreenshot:
		maps = maprender.NewScreenshotProvider(cfg.SettleDelay, cfg.CaptureTimeout, clockwork.NewRealClock(), metrics)
	default:
		maps = maprender.NewStaticProvider(creds.MapboxToken, cfg.RequestTimeout, metrics)
	}

	pipeline := report.NewPipeline(
		creds,
		geocode.NewClient(creds.OpenCageKey, cfg.RequestTimeout, metrics),
		geology.NewClient(cfg.RequestTimeout, metrics),
		maps,
		metrics,
	)

	logger.Info().Str("map_provider", cfg.MapProvider).Msg("pipeline configured")

	api := server.NewWebAPI(logger, server.Config{
		Addr:            cfg.Addr,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Pipeline: pipeline,
		},
	})

	return api.Start()
}
