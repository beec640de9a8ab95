// Package report renders assembled route reports.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - MarkdownWriter: Markdown output for documentation and sharing
//   - JSONWriter: Structured JSON output for tool integration
//
// Rendering is the consumed collaborator of the pipeline: the
// orchestrator hands over the ordered section sequence plus the run
// summary, and the writers own every presentational concern from there.
// A write error is the single fatal condition of a run; everything
// upstream of the writers degrades instead of failing.
package report
