package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. These are chosen for typical commercial
// routing API characteristics: upstream calls are individually fast, but a
// provider may fan out over many sampled route points.
const (
	// DefaultProviderTimeout bounds one provider's whole analysis,
	// including all of its operations. Exceeding it is treated the same
	// as a provider failure; the run continues with the other providers.
	DefaultProviderTimeout = 45 * time.Second

	// DefaultConcurrency is the number of providers analyzed in
	// parallel. All six declared providers are independent, so the
	// default runs them all at once; lower values trade latency for
	// gentler upstream fan-out.
	DefaultConcurrency = 6

	// DefaultSamplePoints caps how many route points a provider samples
	// for upstream calls. Mirrors the per-provider sampling the upstream
	// APIs are priced around.
	DefaultSamplePoints = 10

	// DefaultTurnAngleThreshold is the deflection angle in degrees above
	// which a turn is classified as sharp.
	DefaultTurnAngleThreshold = 45.0

	// DefaultUserAgent identifies RouteLens in upstream HTTP requests.
	DefaultUserAgent = "RouteLens/1.0 (+https://github.com/routelens/routelens)"

	// AppName is the application name used for XDG directory paths.
	AppName = "routelens"
)

// Config holds all configuration options for a RouteLens run.
// This struct is populated from CLI flags and passed through the
// application via dependency injection rather than global state.
type Config struct {
	// RouteCSVPath is the path of the route coordinate CSV to analyze.
	RouteCSVPath string

	// FromAddress is the human-readable origin address for the report.
	FromAddress string

	// ToAddress is the human-readable destination address for the report.
	ToAddress string

	// VehicleClass is the vehicle class the route is analyzed for.
	// Must be one of: car, medium_goods_vehicle, heavy_goods_vehicle, bus.
	VehicleClass string

	// VehicleWeightKG is the gross vehicle weight for fleet analysis.
	VehicleWeightKG float64

	// VehicleHeightM is the vehicle height in meters, used for
	// clearance checks in heavy-vehicle analysis.
	VehicleHeightM float64

	// VehicleAxleCount is the number of axles, used for compliance checks.
	VehicleAxleCount int

	// ProviderTimeout bounds each provider's analysis.
	ProviderTimeout time.Duration

	// Concurrency is the maximum number of providers running at once.
	Concurrency int

	// CredentialsPath is an explicit credentials file path. When empty,
	// the loader searches .routelens in the current directory and home.
	CredentialsPath string

	// JSONReport enables JSON report output.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile writes the report to this path instead of stdout.
	// Parent directories are created as needed.
	ReportFile string

	// HistoryDir is the directory for the run-history SQLite database.
	// Defaults to the XDG data directory; empty disables persistence
	// only when SaveHistory is false.
	HistoryDir string

	// SaveHistory stores the run in the history database when true.
	SaveHistory bool

	// Verbose enables debug-level log output.
	Verbose bool
}

// NewConfig creates a Config with default values.
//
// Design decision: We use a constructor instead of relying on zero values
// because many defaults are non-zero. This also serves as documentation of
// what the defaults are.
func NewConfig() *Config {
	return &Config{
		VehicleClass:    "car",
		ProviderTimeout: DefaultProviderTimeout,
		Concurrency:     DefaultConcurrency,
		HistoryDir:      XDGDataDir(),
		SaveHistory:     true,
	}
}

// XDGDataDir returns the XDG data directory for RouteLens.
// On Linux: ~/.local/share/routelens
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for RouteLens.
// On Linux: ~/.config/routelens
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid. It returns the first
// specific error found; fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.RouteCSVPath == "" {
		return ErrNoRoute
	}
	if c.ProviderTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	switch c.VehicleClass {
	case "car", "medium_goods_vehicle", "heavy_goods_vehicle", "bus":
	default:
		return ErrInvalidVehicleClass
	}
	return nil
}
