package ingestion

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeExport(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "message_1.json", `{
		"participants": [{"name": "Jane Doe"}, {"name": "John Smith"}],
		"messages": [
			{"sender_name": "Jane Doe", "timestamp_ms": 1601000000000, "content": "newer", "type": "Generic"}
		]
	}`)
	writeExport(t, dir, "message_2.json", `{
		"participants": [{"name": "Jane Doe"}],
		"messages": [
			{"sender_name": "John Smith", "timestamp_ms": 1600000000000, "content": "older", "type": "Generic"}
		]
	}`)

	svc := NewService(discardLogger())
	messages, stats, err := svc.LoadDirectory(dir)
	if err != nil {
		t.Fatalf("LoadDirectory() unexpected error: %v", err)
	}

	if stats.FilesFound != 2 || stats.FilesLoaded != 2 || stats.FilesSkipped != 0 {
		t.Errorf("file stats = %d/%d/%d, want 2/2/0", stats.FilesFound, stats.FilesLoaded, stats.FilesSkipped)
	}
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	// Lexical file order, in-file order within each file
	if messages[0].Content != "newer" || messages[1].Content != "older" {
		t.Errorf("Unexpected message order: %q, %q", messages[0].Content, messages[1].Content)
	}
	// Participants are deduplicated across files
	if len(stats.Participants) != 2 {
		t.Errorf("Expected 2 unique participants, got %v", stats.Participants)
	}
}

func TestLoadDirectorySkipsBadFile(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "bad.json", `{"participants": [`)
	writeExport(t, dir, "good.json", `{
		"participants": [{"name": "Jane Doe"}],
		"messages": [
			{"sender_name": "Jane Doe", "timestamp_ms": 1600000000000, "content": "hi", "type": "Generic"}
		]
	}`)

	svc := NewService(discardLogger())
	messages, stats, err := svc.LoadDirectory(dir)
	if err != nil {
		t.Fatalf("LoadDirectory() unexpected error: %v", err)
	}

	if stats.FilesSkipped != 1 || stats.FilesLoaded != 1 {
		t.Errorf("file stats = loaded %d skipped %d, want 1/1", stats.FilesLoaded, stats.FilesSkipped)
	}
	if len(messages) != 1 {
		t.Errorf("Expected 1 message from the good file, got %d", len(messages))
	}
	if len(stats.Errors) == 0 {
		t.Error("Expected an error entry for the skipped file")
	}
}

func TestLoadDirectoryRepairsText(t *testing.T) {
	dir := t.TempDir()
	// Content carries double-encoded UTF-8 the repair pass must fold
	writeExport(t, dir, "message_1.json", `{
		"participants": [{"name": "Jane Doe"}],
		"messages": [
			{"sender_name": "Jane Doe", "timestamp_ms": 1600000000000, "content": "cafÃ©", "type": "Generic"}
		]
	}`)

	svc := NewService(discardLogger())
	messages, _, err := svc.LoadDirectory(dir)
	if err != nil {
		t.Fatalf("LoadDirectory() unexpected error: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}
	if messages[0].Content != "café" {
		t.Errorf("Expected repaired content %q, got %q", "café", messages[0].Content)
	}
}

func TestLoadDirectoryEmpty(t *testing.T) {
	svc := NewService(discardLogger())
	if _, _, err := svc.LoadDirectory(t.TempDir()); err == nil {
		t.Fatal("Expected error for directory without export files")
	}
}
