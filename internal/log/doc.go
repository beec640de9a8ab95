// Package log provides secure logging with automatic sanitization of
// provider credentials, built on top of the standard slog package.
//
// RouteLens handles up to eight external-service API keys per run. The
// SecureHandler guarantees that none of them reach log output, even in
// verbose mode and even when a key is passed under an unexpected attribute
// name: both attribute keys (api_key, secret, token, credential names like
// "tomtom") and API-key-shaped values (Google AIza... keys, long
// alphanumeric strings) are masked.
//
// Usage:
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
package log
