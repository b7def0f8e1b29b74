package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig
	Pipeline PipelineConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
}

// PipelineConfig holds the analysis pipeline configuration
type PipelineConfig struct {
	ExportDir    string // directory of export *.json files
	KeywordsFile string // newline-delimited notice keyword phrases
	AliasesFile  string // JSON alias table
	TargetWord   string // word tracked by the daily usage series
	OwnerName    string // exporting user, subject of "your nickname" notices
	ReportFile   string // JSON report output path
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", ""),
		},
		Pipeline: PipelineConfig{
			ExportDir:    getEnv("EXPORT_DIR", "export"),
			KeywordsFile: getEnv("KEYWORDS_FILE", "keywords.txt"),
			AliasesFile:  getEnv("ALIASES_FILE", "aliases.json"),
			TargetWord:   getEnv("TARGET_WORD", "seni"),
			OwnerName:    getEnv("OWNER_NAME", ""),
			ReportFile:   getEnv("REPORT_FILE", "report.json"),
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate server port
	if c.Server.Port != "" {
		port, err := strconv.Atoi(c.Server.Port)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("invalid port: %s", c.Server.Port)
		}
	}

	if c.Pipeline.ExportDir == "" {
		return fmt.Errorf("EXPORT_DIR is required")
	}

	return nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
