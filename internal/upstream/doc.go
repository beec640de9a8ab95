// Package upstream provides bounded HTTP access for intelligence providers.
//
// Providers never talk to the network directly: they depend on the Fetcher
// interface, which the HTTP client here implements with request timeouts,
// response size limits, and an identifying User-Agent. Tests inject fake
// fetchers to exercise provider success and failure paths without network
// access.
package upstream
