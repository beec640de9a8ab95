package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/routelens/routelens/internal/config"
	"github.com/routelens/routelens/internal/history"
	"github.com/routelens/routelens/internal/log"
	"github.com/routelens/routelens/internal/model"
	"github.com/routelens/routelens/internal/orchestrator"
	"github.com/routelens/routelens/internal/report"
	"github.com/routelens/routelens/internal/route"
	"github.com/spf13/cobra"
)

// routeAverageSpeedKMH is the assumed average speed for the travel-time
// estimate shown in report headers. Providers that know better (live
// traffic) report their own figures.
const routeAverageSpeedKMH = 50.0

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [route-csv]",
		Short: "Analyze a route against all configured providers",
		Long: `Analyze runs the full provider pipeline over a route coordinate CSV.

Each row of the CSV is read as "latitude,longitude" in decimal degrees.
Header rows and malformed rows are skipped.

Providers run concurrently and independently:
- A provider whose credential is missing is skipped, not failed.
- A provider that fails contributes nothing; the run continues.
- The fleet provider needs no credentials and always runs.

Credentials come from a .routelens YAML file (see 'routelens init') and
ROUTELENS_* environment variables; the environment wins on conflict.

Examples:
  # Analyze with the default human-readable report
  routelens analyze route.csv --from "Bangalore" --to "Chennai"

  # Heavy goods vehicle with weight and height for compliance checks
  routelens analyze route.csv --vehicle-class heavy_goods_vehicle --weight 28000 --height 4.2

  # JSON report written to a file
  routelens analyze route.csv --json -o report.json

  # Use an explicit credentials file
  routelens analyze route.csv -c ./staging.routelens`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyzeCmd,
	}

	// Route description flags
	cmd.Flags().String("from", "", "Human-readable origin address for the report")
	cmd.Flags().String("to", "", "Human-readable destination address for the report")

	// Vehicle flags
	cmd.Flags().String("vehicle-class", "car",
		"Vehicle class: car, medium_goods_vehicle, heavy_goods_vehicle, or bus")
	cmd.Flags().Float64("weight", 0, "Gross vehicle weight in kilograms")
	cmd.Flags().Float64("height", 0, "Vehicle height in meters")
	cmd.Flags().Int("axles", 0, "Number of axles")

	// Run behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultProviderTimeout,
		"Timeout for each provider's whole analysis")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of providers analyzed in parallel")

	// Credentials file
	cmd.Flags().StringP("credentials", "c", "",
		"Credentials file path (default: .routelens in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential masking
	verbose := getVerboseFlag(cmd)
	logger := log.NewSecureLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAnalyze(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	if len(args) > 0 {
		cfg.RouteCSVPath = args[0]
	}

	var err error

	cfg.FromAddress, err = cmd.Flags().GetString("from")
	if err != nil {
		return nil, err
	}

	cfg.ToAddress, err = cmd.Flags().GetString("to")
	if err != nil {
		return nil, err
	}

	cfg.VehicleClass, err = cmd.Flags().GetString("vehicle-class")
	if err != nil {
		return nil, err
	}

	cfg.VehicleWeightKG, err = cmd.Flags().GetFloat64("weight")
	if err != nil {
		return nil, err
	}

	cfg.VehicleHeightM, err = cmd.Flags().GetFloat64("height")
	if err != nil {
		return nil, err
	}

	cfg.VehicleAxleCount, err = cmd.Flags().GetInt("axles")
	if err != nil {
		return nil, err
	}

	cfg.ProviderTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.CredentialsPath, err = cmd.Flags().GetString("credentials")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Runs are always saved to the XDG data directory for history
	cfg.SaveHistory = true
	cfg.HistoryDir = config.XDGDataDir()

	return cfg, nil
}

// runAnalyze executes one analysis run end to end.
func runAnalyze(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Resolve credentials: file overlaid with environment variables.
	creds, err := config.ResolveCredentials(cfg.CredentialsPath)
	if err != nil {
		return fmt.Errorf("failed to resolve credentials: %w", err)
	}

	rc, err := loadRoute(cfg)
	if err != nil {
		return err
	}

	logger.Info("starting analysis",
		"route", cfg.RouteCSVPath,
		"points", rc.PointCount(),
		"distance_km", rc.DistanceKM(),
		"vehicle_class", rc.Vehicle().Class,
		"credentials", creds.Configured(),
	)

	fmt.Printf("Analyzing %s (%d points, %.1f km)...\n",
		cfg.RouteCSVPath, rc.PointCount(), rc.DistanceKM())
	startTime := time.Now()

	orch := orchestrator.New(
		orchestrator.WithLogger(logger),
		orchestrator.WithProviderTimeout(cfg.ProviderTimeout),
		orchestrator.WithConcurrency(cfg.Concurrency),
	)

	routeReport := orch.Run(ctx, rc, creds)

	elapsed := time.Since(startTime)
	fmt.Printf("Analysis completed in %s\n\n", elapsed.Round(time.Millisecond))

	// Rendering is the only fatal path: a run that analyzed providers but
	// cannot deliver its report has failed the user.
	if err := outputReport(cfg, routeReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	// History persistence is best effort; a full report on stdout beats
	// aborting over a bad database file.
	if cfg.SaveHistory {
		if err := saveRunReport(ctx, cfg, routeReport, logger); err != nil {
			logger.Error("failed to save run to history", "error", err)
		}
	}

	return nil
}

// loadRoute reads and analyzes the route CSV into an immutable context.
func loadRoute(cfg *config.Config) (*model.RouteContext, error) {
	f, err := os.Open(cfg.RouteCSVPath) //nolint:gosec // User-provided route path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open route file: %w", err)
	}
	defer f.Close()

	points, err := route.ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse route %s: %w", cfg.RouteCSVPath, err)
	}

	distanceKM := route.TotalDistanceKM(points)
	turns := route.SharpTurns(points, config.DefaultTurnAngleThreshold)
	durationMin := distanceKM / routeAverageSpeedKMH * 60

	vehicle := model.VehicleDescriptor{
		Class:     model.VehicleClass(cfg.VehicleClass),
		WeightKG:  cfg.VehicleWeightKG,
		HeightM:   cfg.VehicleHeightM,
		AxleCount: cfg.VehicleAxleCount,
	}

	return model.NewRouteContext(points, turns,
		cfg.FromAddress, cfg.ToAddress, distanceKM, durationMin, vehicle), nil
}

// outputReport outputs the run report in the requested format.
func outputReport(cfg *config.Config, routeReport *model.RouteReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with owner-only permissions;
		// reports can reveal route and fleet details.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // Path comes from the --output flag
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output,
			report.WithPrettyPrint(),
			report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithShowEmpty(cfg.Verbose))
	}

	_, err := w.Write(routeReport)
	return err
}

// saveRunReport stores the run in the history database.
func saveRunReport(ctx context.Context, cfg *config.Config, routeReport *model.RouteReport, logger *slog.Logger) error {
	store, err := history.Open(cfg.HistoryDir, history.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	if err := store.SaveRun(ctx, routeReport); err != nil {
		return err
	}

	logger.Info("run saved to history",
		"run_id", routeReport.RunID,
		"route", routeReport.RouteLabel(),
		"dir", cfg.HistoryDir,
	)
	return nil
}
