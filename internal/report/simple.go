package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/routelens/routelens/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether skipped providers appear in the summary.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to list skipped providers.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.RouteReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeSections(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with route information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.RouteReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      ROUTELENS ROUTE REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Route:         %s\n", report.RouteLabel()))
	sb.WriteString(fmt.Sprintf("Generated:     %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Distance:      %.1f km\n", report.DistanceKM))
	sb.WriteString(fmt.Sprintf("Est. Duration: %.0f min\n", report.DurationMinutes))
	sb.WriteString(fmt.Sprintf("Vehicle:       %s\n", report.VehicleClass))
	sb.WriteString(fmt.Sprintf("Route Points:  %d\n", report.PointCount))

	if report.Cancelled {
		sb.WriteString("Status:        CANCELLED (partial results)\n")
	} else {
		sb.WriteString("Status:        Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the provider outcome summary.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.RouteReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PROVIDER SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	s := report.Summary
	sb.WriteString(fmt.Sprintf("  SUCCEEDED: %d\n", s.Succeeded()))
	sb.WriteString(fmt.Sprintf("  FAILED:    %d\n", s.Failed()))
	sb.WriteString(fmt.Sprintf("  SKIPPED:   %d\n", s.Skipped()))
	sb.WriteString(fmt.Sprintf("  SECTIONS:  %d\n", s.SectionCount))
	sb.WriteString("\n")

	for _, st := range s.Statuses {
		if st.State == model.StateSkipped && !w.showEmpty {
			continue
		}
		line := fmt.Sprintf("  [%s] %s", w.stateIndicator(st.State), st.Provider)
		if st.State == model.StateFailed && st.Cause != "" {
			line += " - " + st.Cause
		}
		if w.verbose && st.FailedOperations > 0 {
			line += fmt.Sprintf(" (%d operation(s) failed)", st.FailedOperations)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n")
}

// stateIndicator returns a visual indicator for the provider state.
func (w *SimpleWriter) stateIndicator(state model.ProviderState) string {
	switch state {
	case model.StateSucceeded:
		return "+"
	case model.StateFailed:
		return "!"
	case model.StateSkipped:
		return "-"
	default:
		return "?"
	}
}

// writeSections writes every section in canonical order.
func (w *SimpleWriter) writeSections(sb *strings.Builder, report *model.RouteReport) {
	for _, section := range report.Sections {
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s  [%s]\n", strings.ToUpper(section.Title), section.Category))
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n\n")

		for _, block := range section.Blocks {
			w.writeBlock(sb, block)
		}
	}
}

// writeBlock writes one renderable block.
func (w *SimpleWriter) writeBlock(sb *strings.Builder, block model.Block) {
	switch b := block.(type) {
	case model.Table:
		if b.Caption != "" {
			sb.WriteString(fmt.Sprintf("  %s:\n", b.Caption))
		}
		sb.WriteString(fmt.Sprintf("    %s\n", strings.Join(b.Header, " | ")))
		for _, row := range b.Rows {
			sb.WriteString(fmt.Sprintf("    %s\n", strings.Join(row, " | ")))
		}
		sb.WriteString("\n")
	case model.List:
		if b.Caption != "" {
			sb.WriteString(fmt.Sprintf("  %s:\n", b.Caption))
		}
		for i, item := range b.Items {
			marker := "*"
			if b.Ordered {
				marker = fmt.Sprintf("%d.", i+1)
			}
			sb.WriteString(fmt.Sprintf("    %s %s\n", marker, item))
		}
		sb.WriteString("\n")
	case model.Scalar:
		sb.WriteString(fmt.Sprintf("  %s: %s\n", b.Label, b.Value))
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by RouteLens\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
