package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fenilsonani/desk-triage/internal/executor"
	"github.com/fenilsonani/desk-triage/internal/scanner"
	"github.com/fenilsonani/desk-triage/internal/strategy"
)

func sampleResult() *strategy.Result {
	return &strategy.Result{
		Suggestions: []strategy.Suggestion{
			{FilePath: "/d/a.tmp", Action: strategy.ActionDelete, Category: "临时文件", Confidence: 0.9, Reason: "临时文件"},
			{FilePath: "/d/b.jpg", Action: strategy.ActionMove, Category: "图片", Confidence: 0.85, Reason: "图片文件"},
			{FilePath: "/d/c.pdf", Action: strategy.ActionKeep, Category: "文档", Confidence: 0.9, Reason: "最近使用"},
		},
		Categories: strategy.CategoryIndex{
			"临时文件": {"a.tmp"},
			"图片":   {"b.jpg"},
			"文档":   {"c.pdf"},
		},
	}
}

func sampleLedger() *executor.Ledger {
	return &executor.Ledger{
		Successes: []executor.OperationRecord{
			{Path: "/d/a.tmp", Action: strategy.ActionDelete, FreedMB: 2.0},
			{Path: "/d/b.jpg", Action: strategy.ActionMove, NewPath: "/d/整理_图片/b.jpg"},
		},
		Failures: []executor.FailureRecord{
			{Path: "/d/gone.tmp", Action: strategy.ActionDelete, Error: "File not found"},
		},
		Skipped:      []string{"/d/c.pdf"},
		DeletedCount: 1,
		MovedCount:   1,
		KeptCount:    1,
		FreedSpaceMB: 2.0,
	}
}

func TestReportTriageSummary(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, FormatSummary)

	stats := scanner.Statistics{TotalFiles: 5, TotalSizeMB: 10.5}
	if err := r.ReportTriage(sampleResult(), stats); err != nil {
		t.Fatalf("ReportTriage error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Scanned: 5 files", "Classified: 3 files", "delete: 1, move: 1, keep: 1", "图片"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "2 files were not classified") {
		t.Errorf("summary should flag unclassified files:\n%s", out)
	}
}

func TestReportTriageJSON(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, FormatJSON)

	if err := r.ReportTriage(sampleResult(), scanner.Statistics{TotalFiles: 3}); err != nil {
		t.Fatalf("ReportTriage error: %v", err)
	}

	var decoded struct {
		Scanned     int                   `json:"scanned"`
		Suggestions []strategy.Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Scanned != 3 || len(decoded.Suggestions) != 3 {
		t.Errorf("decoded report = %+v", decoded)
	}
}

func TestReportTriageTable(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, FormatTable)

	if err := r.ReportTriage(sampleResult(), scanner.Statistics{}); err != nil {
		t.Fatalf("ReportTriage error: %v", err)
	}
	if !strings.Contains(buf.String(), "Total: 3 suggestions") {
		t.Errorf("table missing total line:\n%s", buf.String())
	}
}

func TestReportLedgerSummary(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, FormatSummary)

	if err := r.ReportLedger(sampleLedger()); err != nil {
		t.Fatalf("ReportLedger error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Deleted: 1, Moved: 1, Kept: 1", "Freed: 2.00 MB", "Failures: 1", "gone.tmp"} {
		if !strings.Contains(out, want) {
			t.Errorf("ledger summary missing %q:\n%s", want, out)
		}
	}
}

func TestReportLedgerYAML(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, FormatYAML)

	if err := r.ReportLedger(sampleLedger()); err != nil {
		t.Fatalf("ReportLedger error: %v", err)
	}
	if !strings.Contains(buf.String(), "deleted_count: 1") {
		t.Errorf("yaml output missing counts:\n%s", buf.String())
	}
}

func TestUnsupportedFormat(t *testing.T) {
	r := New(&bytes.Buffer{}, OutputFormat("xml"))
	if err := r.ReportLedger(sampleLedger()); err == nil {
		t.Error("expected error for unsupported format")
	}
	if err := r.ReportTriage(sampleResult(), scanner.Statistics{}); err == nil {
		t.Error("expected error for unsupported format")
	}
}
