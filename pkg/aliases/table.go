// Package aliases holds the tracked-user alias table and the notice
// keyword list, and rewrites notice messages so they are attributed to
// canonical user names. Both inputs are loaded once at pipeline start and
// treated as immutable afterwards.
package aliases

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Table maps each canonical user name to the alias strings that may
// appear as the subject of an auto-generated notice about that user.
// Canonical name order follows the alias file.
type Table struct {
	names   []string
	aliases map[string][]string
}

// NewTable creates an empty alias table
func NewTable() *Table {
	return &Table{aliases: make(map[string][]string)}
}

// Add registers a canonical user and its aliases. Adding the same name
// twice appends to its alias list.
func (t *Table) Add(name string, userAliases ...string) {
	if _, ok := t.aliases[name]; !ok {
		t.names = append(t.names, name)
		t.aliases[name] = nil
	}
	t.aliases[name] = append(t.aliases[name], userAliases...)
}

// Names returns the canonical user names in table order
func (t *Table) Names() []string {
	return t.names
}

// Aliases returns the alias list for a canonical user name
func (t *Table) Aliases(name string) []string {
	return t.aliases[name]
}

// IsTracked reports whether name is a canonical user name
func (t *Table) IsTracked(name string) bool {
	_, ok := t.aliases[name]
	return ok
}

// Len returns the number of tracked users
func (t *Table) Len() int {
	return len(t.names)
}

// aliasFile mirrors the alias table file layout
type aliasFile struct {
	Users []struct {
		Name    string `json:"name"`
		Aliases []struct {
			Alias string `json:"alias"`
		} `json:"aliases"`
	} `json:"users"`
}

// LoadTable loads an alias table from a JSON file
// (users[].name, users[].aliases[].alias)
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias table: %w", err)
	}

	var file aliasFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse alias table: %w", err)
	}

	table := NewTable()
	for _, user := range file.Users {
		table.Add(user.Name)
		for _, alias := range user.Aliases {
			table.Add(user.Name, alias.Alias)
		}
	}

	return table, nil
}

// LoadKeywords loads the newline-delimited notice keyword list. Blank
// lines are skipped; keyword order is preserved (first match wins).
func LoadKeywords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyword file: %w", err)
	}
	defer f.Close()

	var keywords []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		keywords = append(keywords, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read keyword file: %w", err)
	}

	return keywords, nil
}
