package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/chatlens/chatlens/internal/config"
	"github.com/chatlens/chatlens/pkg/pipeline"
	"github.com/chatlens/chatlens/pkg/report"
)

func main() {
	// Define command-line flags
	var (
		exportDir  = flag.String("export", "", "Directory of chat export JSON files (overrides EXPORT_DIR)")
		keywords   = flag.String("keywords", "", "Notice keyword phrase file (overrides KEYWORDS_FILE)")
		aliasFile  = flag.String("aliases", "", "Alias table JSON file (overrides ALIASES_FILE)")
		targetWord = flag.String("target-word", "", "Word tracked by the daily usage series (overrides TARGET_WORD)")
		owner      = flag.String("owner", "", "Exporting user name (overrides OWNER_NAME)")
		output     = flag.String("output", "", "Report output path (overrides REPORT_FILE)")
		help       = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	applyFlag(&cfg.Pipeline.ExportDir, *exportDir)
	applyFlag(&cfg.Pipeline.KeywordsFile, *keywords)
	applyFlag(&cfg.Pipeline.AliasesFile, *aliasFile)
	applyFlag(&cfg.Pipeline.TargetWord, *targetWord)
	applyFlag(&cfg.Pipeline.OwnerName, *owner)
	applyFlag(&cfg.Pipeline.ReportFile, *output)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Run the pipeline
	startTime := time.Now()
	group, run, err := pipeline.NewService(cfg.Pipeline, logger).Run()
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	// Write the report
	if err := report.New(group).WriteFile(cfg.Pipeline.ReportFile); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}

	// Print results
	duration := time.Since(startTime)
	fmt.Println("\n=== Analysis Complete ===")
	fmt.Printf("Duration: %s\n", duration.Round(time.Millisecond))
	fmt.Printf("Run ID: %s\n", run.RunID)
	fmt.Printf("Files loaded: %d/%d\n", run.FilesLoaded, run.FilesFound)
	fmt.Printf("Records parsed: %d (skipped %d)\n", run.RecordsParsed, run.RecordsSkipped)
	fmt.Printf("Tracked users: %d\n", run.TrackedUsers)
	fmt.Printf("Counted messages: %d\n", run.CleanMessages)
	fmt.Printf("Notices: %d\n", run.NoticeMessages)
	fmt.Printf("Spam: %d\n", run.SpamMessages)
	fmt.Printf("Foreign-sender messages: %d\n", run.ForeignMessages)
	fmt.Printf("Report written to: %s\n", cfg.Pipeline.ReportFile)

	if len(run.Errors) > 0 {
		fmt.Printf("\nErrors encountered: %d\n", len(run.Errors))
		// Show first 10 errors
		for i, err := range run.Errors {
			if i >= 10 {
				fmt.Printf("... and %d more errors\n", len(run.Errors)-10)
				break
			}
			fmt.Printf("  - %v\n", err)
		}
	}
}

// applyFlag overrides a config value when the flag was set
func applyFlag(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func printUsage() {
	fmt.Println("chatlens chat export analyzer")
	fmt.Println("\nUsage:")
	fmt.Println("  analyze [options]")
	fmt.Println("\nOptions:")
	flag.PrintDefaults()
	fmt.Println("\nExamples:")
	fmt.Println("  # Analyze an export directory with defaults from the environment")
	fmt.Println("  analyze -export messages/")
	fmt.Println("\n  # Full explicit invocation")
	fmt.Println("  analyze -export messages/ -keywords keywords.txt -aliases aliases.json -output report.json")
}
