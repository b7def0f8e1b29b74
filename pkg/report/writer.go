// Package report writes the final statistics report. The chart and
// layout side of reporting lives outside this module; the report file is
// the contract surface it consumes.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/chatlens/chatlens/pkg/stats"
)

// Report is the on-disk report document
type Report struct {
	ReportID    string                 `json:"report_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Group       *stats.GroupStatistics `json:"group"`
}

// New wraps a computed group aggregate into a report document
func New(group *stats.GroupStatistics) *Report {
	return &Report{
		ReportID:    uuid.NewString(),
		GeneratedAt: time.Now(),
		Group:       group,
	}
}

// WriteFile writes the report as indented JSON to path
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}
