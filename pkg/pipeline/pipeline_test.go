package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chatlens/chatlens/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ms(year int, month time.Month, day, hour int) int64 {
	return time.Date(year, month, day, hour, 0, 0, 0, time.Local).UnixMilli()
}

func writeFixture(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
}

// testConfig lays out a full fixture set: one export file with clean
// messages, notices, spam and a foreign sender, plus keyword and alias
// files.
func testConfig(t *testing.T) config.PipelineConfig {
	t.Helper()
	dir := t.TempDir()
	exportDir := filepath.Join(dir, "export")
	if err := os.Mkdir(exportDir, 0o755); err != nil {
		t.Fatalf("failed to create export dir: %v", err)
	}

	// Newest-first, as exported
	export := fmt.Sprintf(`{
		"participants": [{"name": "Jane Doe"}, {"name": "John Smith"}],
		"messages": [
			{"sender_name": "Jane Doe", "timestamp_ms": %d, "content": "Jane Doe changed the chat theme to Ocean.", "type": "Generic"},
			{"sender_name": "John Smith", "timestamp_ms": %d, "content": "sounds good", "type": "Generic"},
			{"sender_name": "John Smith", "timestamp_ms": %d, "type": "Generic"},
			{"sender_name": "Stranger", "timestamp_ms": %d, "content": "can I join", "type": "Generic"},
			{"sender_name": "Jane Doe", "timestamp_ms": %d, "content": "jane named the group chess club", "type": "Generic"},
			{"sender_name": "Jane Doe", "timestamp_ms": %d, "content": "my cat is here", "type": "Generic"}
		]
	}`,
		ms(2020, 9, 3, 18),
		ms(2020, 9, 2, 12),
		ms(2020, 9, 2, 11),
		ms(2020, 9, 1, 15),
		ms(2020, 9, 1, 10),
		ms(2020, 9, 1, 9),
	)
	writeFixture(t, filepath.Join(exportDir, "message_1.json"), export)

	keywordsFile := filepath.Join(dir, "keywords.txt")
	writeFixture(t, keywordsFile, "named the group\nchanged the chat theme to\n")

	aliasesFile := filepath.Join(dir, "aliases.json")
	writeFixture(t, aliasesFile, `{
		"users": [
			{"name": "Jane Doe", "aliases": [{"alias": "jane"}]},
			{"name": "John Smith", "aliases": []}
		]
	}`)

	return config.PipelineConfig{
		ExportDir:    exportDir,
		KeywordsFile: keywordsFile,
		AliasesFile:  aliasesFile,
		TargetWord:   "cat",
		OwnerName:    "Jane Doe",
	}
}

func TestRun(t *testing.T) {
	group, run, err := NewService(testConfig(t), discardLogger()).Run()
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if run.RunID == "" {
		t.Error("Expected a run ID")
	}
	if run.TrackedUsers != 2 {
		t.Errorf("TrackedUsers = %d, want 2", run.TrackedUsers)
	}
	if run.FilesLoaded != 1 || run.RecordsParsed != 6 {
		t.Errorf("load stats = %d files %d records, want 1/6", run.FilesLoaded, run.RecordsParsed)
	}
	if run.CleanMessages != 2 {
		t.Errorf("CleanMessages = %d, want 2", run.CleanMessages)
	}
	if run.NoticeMessages != 2 {
		t.Errorf("NoticeMessages = %d, want 2", run.NoticeMessages)
	}
	if run.SpamMessages != 1 {
		t.Errorf("SpamMessages = %d, want 1", run.SpamMessages)
	}
	if run.ForeignMessages != 1 {
		t.Errorf("ForeignMessages = %d, want 1", run.ForeignMessages)
	}

	// The alias-resolved group naming is attributed to the canonical user
	if len(group.GroupNames) != 1 || group.GroupNames[0] != "chess club" {
		t.Errorf("GroupNames = %v, want [chess club]", group.GroupNames)
	}
	if got := group.Users["Jane Doe"].GroupNameChanged; got != 1 {
		t.Errorf("Jane GroupNameChanged = %d, want 1", got)
	}
	if got := group.Users["Jane Doe"].ThemeChanged; got != 1 {
		t.Errorf("Jane ThemeChanged = %d, want 1", got)
	}

	if got := group.Users["Jane Doe"].MessagesSent; got != 1 {
		t.Errorf("Jane MessagesSent = %d, want 1", got)
	}
	if got := group.Users["John Smith"].MessagesSent; got != 1 {
		t.Errorf("John MessagesSent = %d, want 1", got)
	}

	// Target word series over the observed span
	if group.TargetWord != "cat" {
		t.Errorf("TargetWord = %q, want cat", group.TargetWord)
	}
	if group.Period != 2 {
		t.Errorf("Period = %d, want 2", group.Period)
	}
	if len(group.MessagesEachDay) != 3 {
		t.Errorf("Expected 3 seeded days, got %v", group.MessagesEachDay)
	}
	if group.LastOccurrence == nil || group.LastOccurrence.Content != "my cat is here" {
		t.Errorf("LastOccurrence = %+v", group.LastOccurrence)
	}
}

func TestRunDegradesWithoutKeywordFiles(t *testing.T) {
	cfg := testConfig(t)
	cfg.KeywordsFile = filepath.Join(t.TempDir(), "missing.txt")
	cfg.AliasesFile = filepath.Join(t.TempDir(), "missing.json")

	group, run, err := NewService(cfg, discardLogger()).Run()
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if run.TrackedUsers != 0 {
		t.Errorf("TrackedUsers = %d, want 0", run.TrackedUsers)
	}
	// With no tracked users everything falls through to the foreign list
	if run.CleanMessages != 0 || run.NoticeMessages != 0 {
		t.Errorf("Expected no clean or notice messages, got %d/%d",
			run.CleanMessages, run.NoticeMessages)
	}
	if len(run.Errors) < 2 {
		t.Errorf("Expected degradation errors to be recorded, got %v", run.Errors)
	}
	if group == nil {
		t.Fatal("Expected a group aggregate even in degraded mode")
	}
}

func TestRunMissingExportDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.ExportDir = filepath.Join(t.TempDir(), "missing")

	if _, _, err := NewService(cfg, discardLogger()).Run(); err == nil {
		t.Fatal("Expected error for missing export directory")
	}
}
