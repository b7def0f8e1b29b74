package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/chatlens/chatlens/pkg/stats"
)

func TestWriteFile(t *testing.T) {
	group := stats.NewGroupStatistics([]string{"Jane Doe"})
	group.Users["Jane Doe"].MessagesSent = 7
	group.TargetWord = "cat"

	report := New(group)
	if report.ReportID == "" {
		t.Error("Expected a generated report ID")
	}
	if report.GeneratedAt.IsZero() {
		t.Error("Expected a generation timestamp")
	}

	path := filepath.Join(t.TempDir(), "report.json")
	if err := report.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}

	var got Report
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if got.ReportID != report.ReportID {
		t.Errorf("ReportID = %q, want %q", got.ReportID, report.ReportID)
	}
	if got.Group == nil || got.Group.Users["Jane Doe"].MessagesSent != 7 {
		t.Error("Round-tripped group statistics do not match")
	}
}

func TestWriteFileBadPath(t *testing.T) {
	report := New(stats.NewGroupStatistics(nil))
	if err := report.WriteFile(filepath.Join(t.TempDir(), "missing", "report.json")); err == nil {
		t.Fatal("Expected error for unwritable path")
	}
}
