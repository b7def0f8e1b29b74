// Package ingestion reads chat export files into the in-memory message
// model. Each file is repaired (see textrepair) and parsed on its own;
// a file that cannot be repaired or parsed is logged and skipped, never
// fatal to the run.
package ingestion

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chatlens/chatlens/pkg/models"
	"github.com/chatlens/chatlens/pkg/textrepair"
)

// Service handles loading a directory of export files
type Service struct {
	parser *ExportParser
	log    *slog.Logger
}

// NewService creates a new ingestion service
func NewService(log *slog.Logger, config ...ParserConfig) *Service {
	return &Service{
		parser: NewExportParser(config...),
		log:    log,
	}
}

// Stats tracks ingestion progress and statistics
type Stats struct {
	FilesFound     int
	FilesLoaded    int
	FilesSkipped   int
	RecordsParsed  int
	RecordsSkipped int
	Participants   []string
	Errors         []error
}

// AddError adds an error to the stats
func (s *Stats) AddError(err error) {
	s.Errors = append(s.Errors, err)
}

// LoadDirectory loads every *.json export file in dirPath, in lexical
// file order, and returns the combined message list. Messages keep their
// in-file order (exports are typically newest-first).
func (s *Service) LoadDirectory(dirPath string) ([]models.Message, *Stats, error) {
	stats := &Stats{}

	files, err := filepath.Glob(filepath.Join(dirPath, "*.json"))
	if err != nil {
		return nil, stats, fmt.Errorf("failed to list export files: %w", err)
	}
	if len(files) == 0 {
		return nil, stats, fmt.Errorf("no export files found in %s", dirPath)
	}
	stats.FilesFound = len(files)

	var messages []models.Message
	seenParticipants := make(map[string]bool)

	for _, file := range files {
		export, err := s.loadFile(file)
		if err != nil {
			stats.FilesSkipped++
			stats.AddError(fmt.Errorf("skipping %s: %w", filepath.Base(file), err))
			s.log.Warn("skipping export file", "file", filepath.Base(file), "error", err)
			continue
		}

		stats.FilesLoaded++
		messages = append(messages, export.Messages...)
		for _, name := range export.Participants {
			if !seenParticipants[name] {
				seenParticipants[name] = true
				stats.Participants = append(stats.Participants, name)
			}
		}
	}

	total, processed, errCount := s.parser.GetStats()
	stats.RecordsParsed = processed
	stats.RecordsSkipped = total - processed
	if errCount > 0 {
		for _, err := range s.parser.GetErrors() {
			stats.AddError(err)
			s.log.Warn("skipping export record", "error", err)
		}
	}

	return messages, stats, nil
}

// loadFile repairs and parses a single export file
func (s *Service) loadFile(path string) (*Export, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	repaired, err := textrepair.Repair(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to repair text: %w", err)
	}

	return s.parser.Parse([]byte(repaired))
}
