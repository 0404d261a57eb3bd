// Package reporter renders triage results and execution ledgers for the
// CLI in several output formats.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/desk-triage/internal/executor"
	"github.com/fenilsonani/desk-triage/internal/scanner"
	"github.com/fenilsonani/desk-triage/internal/strategy"
	"github.com/fenilsonani/desk-triage/pkg/utils"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatSummary OutputFormat = "summary"
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A78BFA")).
			Italic(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// Reporter handles report generation
type Reporter struct {
	writer io.Writer
	format OutputFormat
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{
		writer: writer,
		format: format,
	}
}

// ReportTriage renders the merged result of a triage run
func (r *Reporter) ReportTriage(result *strategy.Result, stats scanner.Statistics) error {
	switch r.format {
	case FormatSummary:
		return r.triageSummary(result, stats)
	case FormatTable:
		return r.triageTable(result)
	case FormatJSON:
		return r.encodeJSON(triageReport(result, stats))
	case FormatYAML:
		return r.encodeYAML(triageReport(result, stats))
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// ReportLedger renders the outcome of an execution run
func (r *Reporter) ReportLedger(ledger *executor.Ledger) error {
	switch r.format {
	case FormatSummary:
		return r.ledgerSummary(ledger)
	case FormatTable:
		return r.ledgerTable(ledger)
	case FormatJSON:
		return r.encodeJSON(ledgerReport(ledger))
	case FormatYAML:
		return r.encodeYAML(ledgerReport(ledger))
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

func actionCounts(result *strategy.Result) (deletes, moves, keeps int) {
	for _, s := range result.Suggestions {
		switch s.Action {
		case strategy.ActionDelete:
			deletes++
		case strategy.ActionMove:
			moves++
		default:
			keeps++
		}
	}
	return
}

func (r *Reporter) triageSummary(result *strategy.Result, stats scanner.Statistics) error {
	fmt.Fprintln(r.writer, titleStyle.Render("=== Triage Summary ==="))
	fmt.Fprintf(r.writer, "Scanned: %d files (%.2f MB)\n", stats.TotalFiles, stats.TotalSizeMB)
	fmt.Fprintf(r.writer, "Classified: %d files\n", len(result.Suggestions))

	deletes, moves, keeps := actionCounts(result)
	fmt.Fprintf(r.writer, "  delete: %d, move: %d, keep: %d\n", deletes, moves, keeps)

	if len(result.Categories) > 0 {
		fmt.Fprintln(r.writer, "\nCategories:")
		for _, label := range result.Categories.Labels() {
			fmt.Fprintf(r.writer, "  %s: %d files\n",
				categoryStyle.Render(label), len(result.Categories[label]))
		}
	}

	if missing := stats.TotalFiles - len(result.Suggestions); missing > 0 {
		fmt.Fprintln(r.writer, mutedStyle.Render(
			fmt.Sprintf("%d files were not classified (failed batches)", missing)))
	}

	return nil
}

func (r *Reporter) triageTable(result *strategy.Result) error {
	fmt.Fprintf(r.writer, "%-50s | %-6s | %-10s | %-4s | %s\n",
		"Path", "Action", "Category", "Conf", "Reason")
	fmt.Fprintln(r.writer, strings.Repeat("-", 110))

	for _, s := range result.Suggestions {
		path := s.FilePath
		if len(path) > 50 {
			path = "..." + path[len(path)-47:]
		}
		fmt.Fprintf(r.writer, "%-50s | %-6s | %-10s | %.2f | %s\n",
			path, s.Action, s.Category, s.Confidence, s.Reason)
	}

	fmt.Fprintf(r.writer, "\nTotal: %d suggestions\n", len(result.Suggestions))
	return nil
}

func (r *Reporter) ledgerSummary(ledger *executor.Ledger) error {
	fmt.Fprintln(r.writer, titleStyle.Render("=== Execution Summary ==="))
	fmt.Fprintf(r.writer, "Deleted: %d, Moved: %d, Kept: %d\n",
		ledger.DeletedCount, ledger.MovedCount, ledger.KeptCount)
	fmt.Fprintln(r.writer, successStyle.Render(
		fmt.Sprintf("Freed: %.2f MB", ledger.FreedSpaceMB)))

	if len(ledger.Failures) > 0 {
		fmt.Fprintln(r.writer, errorStyle.Render(
			fmt.Sprintf("Failures: %d", len(ledger.Failures))))
		for _, f := range ledger.Failures {
			fmt.Fprintf(r.writer, "  %s: %s\n", f.Path, f.Error)
		}
	}

	return nil
}

func (r *Reporter) ledgerTable(ledger *executor.Ledger) error {
	fmt.Fprintf(r.writer, "%-50s | %-6s | %s\n", "Path", "Action", "Detail")
	fmt.Fprintln(r.writer, strings.Repeat("-", 100))

	for _, op := range ledger.Successes {
		detail := op.NewPath
		if op.Action == strategy.ActionDelete {
			detail = fmt.Sprintf("freed %s", utils.FormatBytes(int64(op.FreedMB*float64(utils.MB))))
		}
		fmt.Fprintf(r.writer, "%-50s | %-6s | %s\n", op.Path, op.Action, detail)
	}
	for _, f := range ledger.Failures {
		fmt.Fprintf(r.writer, "%-50s | %-6s | FAILED: %s\n", f.Path, f.Action, f.Error)
	}

	fmt.Fprintf(r.writer, "\nTotal: %d ok, %d failed, %d kept\n",
		len(ledger.Successes), len(ledger.Failures), ledger.KeptCount)
	return nil
}

func triageReport(result *strategy.Result, stats scanner.Statistics) any {
	return struct {
		Timestamp   string                `json:"timestamp" yaml:"timestamp"`
		Scanned     int                   `json:"scanned" yaml:"scanned"`
		TotalSizeMB float64               `json:"total_size_mb" yaml:"total_size_mb"`
		Suggestions []strategy.Suggestion `json:"suggestions" yaml:"suggestions"`
		Categories  strategy.CategoryIndex `json:"categories" yaml:"categories"`
	}{
		Timestamp:   time.Now().Format(time.RFC3339),
		Scanned:     stats.TotalFiles,
		TotalSizeMB: stats.TotalSizeMB,
		Suggestions: result.Suggestions,
		Categories:  result.Categories,
	}
}

func ledgerReport(ledger *executor.Ledger) any {
	return struct {
		Timestamp string           `json:"timestamp" yaml:"timestamp"`
		Ledger    *executor.Ledger `json:"ledger" yaml:"ledger"`
	}{
		Timestamp: time.Now().Format(time.RFC3339),
		Ledger:    ledger,
	}
}

func (r *Reporter) encodeJSON(v any) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (r *Reporter) encodeYAML(v any) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(v)
}
