package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/routelens/routelens/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RouteReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeSections(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with route information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RouteReport) {
	md.H1("RouteLens Route Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Route", report.RouteLabel()},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Distance", fmt.Sprintf("%.1f km", report.DistanceKM)},
			{"Est. Duration", fmt.Sprintf("%.0f min", report.DurationMinutes)},
			{"Vehicle", string(report.VehicleClass)},
			{"Route Points", strconv.Itoa(report.PointCount)},
			{"Status", w.statusText(report)},
		},
	})
	md.PlainText("")
}

// statusText returns the status text based on report state.
func (w *MarkdownWriter) statusText(report *model.RouteReport) string {
	if report.Cancelled {
		return "⚠️ Cancelled (partial results)"
	}
	return "✅ Complete"
}

// writeSummary writes the provider outcome summary.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.RouteReport) {
	md.H2("Provider Summary")
	md.PlainText("")

	s := report.Summary
	rows := make([][]string, 0, len(s.Statuses))
	for _, st := range s.Statuses {
		detail := "-"
		switch {
		case st.State == model.StateFailed && st.Cause != "":
			detail = st.Cause
		case st.State == model.StateSucceeded:
			detail = fmt.Sprintf("%d section(s)", st.Sections)
			if st.FailedOperations > 0 {
				detail += fmt.Sprintf(", %d operation(s) failed", st.FailedOperations)
			}
		}
		rows = append(rows, []string{st.Provider, st.StateText, detail})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Provider", "State", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, s)
	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of provider outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s model.RunSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Provider Outcomes"),
		piechart.WithShowData(true),
	)

	if n := s.Succeeded(); n > 0 {
		chart.LabelAndIntValue("Succeeded", uint64(n))
	}
	if n := s.Failed(); n > 0 {
		chart.LabelAndIntValue("Failed", uint64(n))
	}
	if n := s.Skipped(); n > 0 {
		chart.LabelAndIntValue("Skipped", uint64(n))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the run outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.RouteReport) {
	s := report.Summary
	switch {
	case report.Cancelled:
		md.Warningf("Run was cancelled; %d section(s) completed before the cut are included.", s.SectionCount)
	case s.Failed() > 0:
		md.Importantf("%d provider(s) failed; their sections are absent from this report.", s.Failed())
	case s.Skipped() == len(s.Statuses)-1 && s.Succeeded() == 1:
		md.Note("Only credential-free analysis ran. Configure provider credentials for a fuller report.")
	default:
		md.Tip("All eligible providers completed.")
	}
	md.PlainText("")
}

// writeSections writes every section in canonical order.
func (w *MarkdownWriter) writeSections(md *markdown.Markdown, report *model.RouteReport) {
	lastCategory := ""
	for _, section := range report.Sections {
		if section.Category != lastCategory {
			md.H2(titleForCategory(section.Category))
			md.PlainText("")
			lastCategory = section.Category
		}

		md.H3(section.Title)
		md.PlainText("")
		for _, block := range section.Blocks {
			w.writeBlock(md, block)
		}
	}
}

// categoryTitles maps section categories to their report headings.
var categoryTitles = map[string]string{
	"traffic":   "Traffic Intelligence",
	"weather":   "Weather Intelligence",
	"maps":      "Route Intelligence",
	"realtime":  "Realtime Conditions",
	"fleet":     "Fleet Analysis",
	"emergency": "Emergency Preparedness",
	"location":  "Location Analytics",
}

// titleForCategory returns the heading for a section category.
func titleForCategory(category string) string {
	if t, ok := categoryTitles[category]; ok {
		return t
	}
	return category
}

// writeBlock writes one renderable block.
func (w *MarkdownWriter) writeBlock(md *markdown.Markdown, block model.Block) {
	switch b := block.(type) {
	case model.Table:
		if b.Caption != "" {
			md.PlainTextf("**%s**", b.Caption)
			md.PlainText("")
		}
		md.Table(markdown.TableSet{Header: b.Header, Rows: b.Rows})
		md.PlainText("")
	case model.List:
		if b.Caption != "" {
			md.PlainTextf("**%s**", b.Caption)
			md.PlainText("")
		}
		if b.Ordered {
			md.OrderedList(b.Items...)
		} else {
			md.BulletList(b.Items...)
		}
		md.PlainText("")
	case model.Scalar:
		md.PlainTextf("- **%s**: %s", b.Label, b.Value)
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.PlainText("")
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by RouteLens*")
}
