// Package history stores completed run reports in a local SQLite
// database so past analyses can be listed and compared.
//
// The store keeps outcome metadata in queryable columns next to the
// serialized report document. Listing and comparison read only the
// columns; the JSON document is kept for export and never decoded back
// into report structures.
package history
