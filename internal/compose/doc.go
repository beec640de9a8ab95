// Package compose translates provider results into renderable sections.
//
// The composer is a pure mapping: given a provider name and its results
// it applies that provider's fixed translation table and returns ordered
// sections. It performs no I/O and never returns an error. A failed
// result, a missing payload sub-field, and an empty collection all
// compose the same way: the affected block is omitted, and a result
// whose every block is omitted yields no section at all.
package compose
