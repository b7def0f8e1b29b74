package ingestion

import (
	"encoding/json"
	"fmt"

	"github.com/chatlens/chatlens/pkg/models"
)

// ParserConfig contains configuration for the export parser
type ParserConfig struct {
	SkipErrors      bool // Whether to skip records with errors
	ValidateRecords bool // Whether to validate records
}

// DefaultParserConfig returns default parser configuration
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		SkipErrors:      true,
		ValidateRecords: true,
	}
}

// Export holds the contents of a single parsed export file
type Export struct {
	Participants []string
	Messages     []models.Message
}

// ExportParser handles parsing of chat export record sets
type ExportParser struct {
	config           ParserConfig
	totalRecords     int
	processedRecords int
	errorCount       int
	errors           []error
}

// NewExportParser creates a new export parser instance
func NewExportParser(config ...ParserConfig) *ExportParser {
	cfg := DefaultParserConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	return &ExportParser{
		config: cfg,
		errors: make([]error, 0),
	}
}

// exportDocument mirrors the export file layout
type exportDocument struct {
	Participants []struct {
		Name string `json:"name"`
	} `json:"participants"`
	Messages []exportRecord `json:"messages"`
}

// exportRecord is a single message entry as it appears on disk
type exportRecord struct {
	SenderName  string  `json:"sender_name"`
	TimestampMS *int64  `json:"timestamp_ms"`
	Content     *string `json:"content"`
	Type        string  `json:"type"`
	Users       []struct {
		Name string `json:"name"`
	} `json:"users"`
	Photos []struct {
		URI string `json:"uri"`
	} `json:"photos"`
	Reactions []struct {
		Reaction string `json:"reaction"`
		Actor    string `json:"actor"`
	} `json:"reactions"`
}

// Parse parses one repaired export document. A malformed document is an
// error for the whole file; invalid records are skipped (and recorded)
// when SkipErrors is set.
func (p *ExportParser) Parse(data []byte) (*Export, error) {
	var doc exportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse export document: %w", err)
	}

	export := &Export{
		Participants: make([]string, 0, len(doc.Participants)),
		Messages:     make([]models.Message, 0, len(doc.Messages)),
	}
	for _, part := range doc.Participants {
		export.Participants = append(export.Participants, part.Name)
	}

	for _, record := range doc.Messages {
		p.totalRecords++

		msg, err := p.parseRecord(record)
		if err != nil {
			if p.config.SkipErrors {
				p.recordError(fmt.Errorf("failed to parse record %d: %w", p.totalRecords, err))
				continue
			}
			return nil, fmt.Errorf("failed to parse record %d: %w", p.totalRecords, err)
		}

		export.Messages = append(export.Messages, msg)
		p.processedRecords++
	}

	return export, nil
}

// parseRecord converts an export record to a Message
func (p *ExportParser) parseRecord(record exportRecord) (models.Message, error) {
	msg := models.Message{
		Sender: record.SenderName,
		Type:   record.Type,
		Kind:   models.KindGeneric,
	}

	// Missing optional text content becomes the empty string
	if record.Content != nil {
		msg.Content = *record.Content
	}
	if record.TimestampMS != nil {
		msg.Timestamp = *record.TimestampMS
	}

	for _, user := range record.Users {
		msg.Users = append(msg.Users, user.Name)
	}
	for _, photo := range record.Photos {
		msg.Photos = append(msg.Photos, photo.URI)
	}
	for _, reaction := range record.Reactions {
		// reactions missing either field are dropped
		if reaction.Reaction == "" || reaction.Actor == "" {
			continue
		}
		msg.Reactions = append(msg.Reactions, models.Reaction{
			Emoji: reaction.Reaction,
			Actor: reaction.Actor,
		})
	}

	if p.config.ValidateRecords {
		if err := p.validateMessage(msg, record); err != nil {
			return msg, err
		}
	}

	return msg, nil
}

// validateMessage validates a parsed Message
func (p *ExportParser) validateMessage(msg models.Message, record exportRecord) error {
	if msg.Sender == "" {
		return fmt.Errorf("no sender name")
	}

	if record.TimestampMS == nil {
		return fmt.Errorf("no timestamp")
	}

	return nil
}

// recordError records a parsing error
func (p *ExportParser) recordError(err error) {
	p.errorCount++
	p.errors = append(p.errors, err)
}

// GetErrors returns all parsing errors
func (p *ExportParser) GetErrors() []error {
	return p.errors
}

// GetStats returns parsing statistics
func (p *ExportParser) GetStats() (total, processed, errors int) {
	return p.totalRecords, p.processedRecords, p.errorCount
}
