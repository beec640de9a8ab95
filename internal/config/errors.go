package config

import "errors"

// Configuration validation errors.
//
// Design decision: We use package-level sentinel errors rather than creating
// new error instances in Validate(). This allows callers to use errors.Is()
// for programmatic handling while still providing human-readable messages.
var (
	// ErrNoRoute is returned when no route CSV file is specified.
	ErrNoRoute = errors.New("no route specified: provide a route coordinate CSV file")

	// ErrInvalidTimeout is returned when the provider timeout is not positive.
	// A zero or negative timeout would fail every provider immediately.
	ErrInvalidTimeout = errors.New("invalid provider timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency limit is not
	// positive. Zero concurrency would mean no provider ever runs.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidVehicleClass is returned for an unknown vehicle class.
	ErrInvalidVehicleClass = errors.New("invalid vehicle class: must be car, medium_goods_vehicle, heavy_goods_vehicle, or bus")

	// ErrCredentialsNotFound is returned when an explicitly specified
	// credentials file does not exist.
	ErrCredentialsNotFound = errors.New("credentials file not found")
)
