package aliases

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTableAdd(t *testing.T) {
	table := NewTable()
	table.Add("Jane Doe", "jane")
	table.Add("John Smith")
	table.Add("Jane Doe", "janey")

	if table.Len() != 2 {
		t.Fatalf("Expected 2 tracked users, got %d", table.Len())
	}
	names := table.Names()
	if names[0] != "Jane Doe" || names[1] != "John Smith" {
		t.Errorf("Unexpected name order: %v", names)
	}
	got := table.Aliases("Jane Doe")
	if len(got) != 2 || got[0] != "jane" || got[1] != "janey" {
		t.Errorf("Unexpected aliases for Jane Doe: %v", got)
	}
	if !table.IsTracked("John Smith") {
		t.Error("Expected John Smith to be tracked")
	}
	if table.IsTracked("Stranger") {
		t.Error("Expected Stranger to be untracked")
	}
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.json")
	content := `{
		"users": [
			{"name": "Jane Doe", "aliases": [{"alias": "jane"}, {"alias": "janey"}]},
			{"name": "John Smith", "aliases": []}
		]
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable() unexpected error: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("Expected 2 users, got %d", table.Len())
	}
	if got := table.Names()[0]; got != "Jane Doe" {
		t.Errorf("Expected file order preserved, got first name %s", got)
	}
	if got := table.Aliases("Jane Doe"); len(got) != 2 {
		t.Errorf("Expected 2 aliases for Jane Doe, got %v", got)
	}
	if got := table.Aliases("John Smith"); len(got) != 0 {
		t.Errorf("Expected no aliases for John Smith, got %v", got)
	}
}

func TestLoadTableMissingFile(t *testing.T) {
	if _, err := LoadTable(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestLoadKeywords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.txt")
	content := "changed the group photo.\n\n  named the group  \nchanged the chat theme to\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	keywords, err := LoadKeywords(path)
	if err != nil {
		t.Fatalf("LoadKeywords() unexpected error: %v", err)
	}
	want := []string{"changed the group photo.", "named the group", "changed the chat theme to"}
	if len(keywords) != len(want) {
		t.Fatalf("Expected %d keywords, got %d: %v", len(want), len(keywords), keywords)
	}
	for i := range want {
		if keywords[i] != want[i] {
			t.Errorf("keyword[%d] = %q, want %q", i, keywords[i], want[i])
		}
	}
}
