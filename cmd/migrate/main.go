package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"

	"medibot/adapters/postgres"
	"medibot/domain/metrics"
	"medibot/internal/migration"

	"github.com/google/uuid"
)

// Migrates the run archive schema and optionally imports JSON reports
// written by `medibot-cli evaluate --format json`.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <database_url> [report_dir]")
	}

	databaseURL := os.Args[1]
	ctx := context.Background()

	db, err := postgres.Connect(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Schema at version %s", runner.Version())

	if len(os.Args) < 3 {
		return
	}
	reportDir := os.Args[2]

	files, err := findReportFiles(reportDir)
	if err != nil {
		log.Fatalf("Failed to find report files: %v", err)
	}
	log.Printf("Found %d report files to import", len(files))

	runs := postgres.NewRunRepository(db)
	imported, skipped := 0, 0
	for _, file := range files {
		report, err := loadReportFromFile(file)
		if err != nil {
			log.Printf("Failed to load report from %s: %v", file, err)
			skipped++
			continue
		}

		// deterministic ID so re-running the import does not duplicate runs
		id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(file)).String()
		if _, err := runs.GetByID(ctx, id); err == nil {
			skipped++
			continue
		}

		record := metrics.NewRunRecord(id, filepath.Base(file), report, 0)
		if err := runs.Save(ctx, record); err != nil {
			log.Printf("Failed to save run from %s: %v", file, err)
			skipped++
			continue
		}
		imported++
	}

	log.Printf("Import complete: %d imported, %d skipped", imported, skipped)
}

func findReportFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".json") {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

func loadReportFromFile(filePath string) (*metrics.Report, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var report metrics.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
