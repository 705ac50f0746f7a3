package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/claimworks/subsidence-report/pkg/models/domain"
	"github.com/claimworks/subsidence-report/pkg/observability"
	"github.com/claimworks/subsidence-report/pkg/services/config"
	"github.com/claimworks/subsidence-report/pkg/services/docwriter"
	"github.com/claimworks/subsidence-report/pkg/services/geocode"
	"github.com/claimworks/subsidence-report/pkg/services/geology"
	"github.com/claimworks/subsidence-report/pkg/services/maprender"
	"github.com/claimworks/subsidence-report/pkg/services/report"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	credsPath string
	profile   string

	insurer        string
	claimRef       string
	address        string
	eircode        string
	inspectionDate string
	photoPaths     []string
	outputPath     string
	mapProvider    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "subsidence",
		Short: "Forensic subsidence report assistant",
	}

	home, _ := os.UserHomeDir()
	defaultCreds := filepath.Join(home, ".subsidence", "credentials")
	rootCmd.PersistentFlags().StringVar(&credsPath, "credentials", defaultCreds,
		"Path to the API credentials file (env vars override)")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "default",
		"Credentials profile to use")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a subsidence report document",
		RunE:  runGenerate,
	}
	generateCmd.Flags().StringVar(&insurer, "insurer", "", "Insurer name")
	generateCmd.Flags().StringVar(&claimRef, "claim-ref", "", "Claim reference")
	generateCmd.Flags().StringVar(&address, "address", "", "Property address")
	generateCmd.Flags().StringVar(&eircode, "eircode", "", "Eircode of the property")
	generateCmd.Flags().StringVar(&inspectionDate, "inspection-date",
		time.Now().Format("2006-01-02"), "Date of inspection (YYYY-MM-DD)")
	generateCmd.Flags().StringArrayVar(&photoPaths, "photo", nil,
		"Historical photo to embed (repeatable, png/jpg/jpeg)")
	generateCmd.Flags().StringVarP(&outputPath, "output", "o",
		docwriter.ReportFilename, "Output path for the report")
	generateCmd.Flags().StringVar(&mapProvider, "map-provider", config.MapProviderStatic,
		"Map image strategy: static or screenshot")
	_ = generateCmd.MarkFlagRequired("eircode")

	rootCmd.AddCommand(generateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	// .env is optional for the CLI.
	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)
	ctx := logger.WithContext(cmd.Context())

	date, err := time.Parse("2006-01-02", inspectionDate)
	if err != nil {
		return fmt.Errorf("inspection date must be YYYY-MM-DD: %w", err)
	}

	claim := domain.ClaimInput{
		Insurer:        insurer,
		ClaimRef:       claimRef,
		Address:        address,
		Eircode:        strings.TrimSpace(eircode),
		InspectionDate: date,
	}

	bar := progressbar.NewOptions(3,
		progressbar.OptionSetDescription("Generating report"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	for _, path := range photoPaths {
		photo, err := loadPhoto(path)
		if err != nil {
			return err
		}
		claim.HistoricalPhotos = append(claim.HistoricalPhotos, photo)
	}
	_ = bar.Add(1)

	pipeline, err := buildPipeline(ctx)
	if err != nil {
		return err
	}

	result, err := pipeline.Generate(ctx, claim)
	if err != nil {
		return err
	}
	_ = bar.Add(1)

	buf, err := docwriter.Write(result.Document)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	_ = bar.Add(1)
	_ = bar.Finish()

	fmt.Printf("Location resolved: %s\n", result.Coordinate)
	fmt.Println(result.GeologySummary)
	if result.MapImage == nil {
		fmt.Println("Map image unavailable; report contains a placeholder note.")
	}
	fmt.Printf("Report written to %s\n", outputPath)
	return nil
}

func buildPipeline(ctx context.Context) (*report.Pipeline, error) {
	if err := config.ValidateMapProvider(mapProvider); err != nil {
		return nil, err
	}

	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}

	registry, err := config.NewRegistry(credsPath)
	if err != nil {
		registry = config.NewEnvRegistry()
	}
	creds, err := registry.GetCredentials(ctx, profile)
	if err != nil {
		return nil, err
	}

	metrics := observability.NewMetrics()

	var maps maprender.Provider
	if mapProvider == config.MapProviderScreenshot {
		maps = maprender.NewScreenshotProvider(cfg.SettleDelay, cfg.CaptureTimeout, clockwork.NewRealClock(), metrics)
	} else {
		maps = maprender.NewStaticProvider(creds.MapboxToken, cfg.RequestTimeout, metrics)
	}

	return report.NewPipeline(
		creds,
		geocode.NewClient(creds.OpenCageKey, cfg.RequestTimeout, metrics),
		geology.NewClient(cfg.RequestTimeout, metrics),
		maps,
		metrics,
	), nil
}

func loadPhoto(path string) (domain.Photo, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return domain.Photo{}, fmt.Errorf("unsupported photo type %q (png/jpg/jpeg only)", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Photo{}, fmt.Errorf("read photo %q: %w", path, err)
	}
	return domain.Photo{Filename: filepath.Base(path), Data: data}, nil
}
