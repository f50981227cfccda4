package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/estia-cy/estia/internal/config"
	"github.com/estia-cy/estia/internal/importer"
	"github.com/estia-cy/estia/internal/notify"
	"github.com/estia-cy/estia/internal/sources"
)

func main() {
	input := flag.String("input", "agents.json", "Path to the JSON agent array to import")
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall import deadline")
	flag.Parse()

	// A .env in the working directory is a convenience for local runs;
	// real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireBackend(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	client := sources.NewBackendClient(cfg.Backend.URL, cfg.Backend.Key,
		time.Duration(cfg.Backend.TimeoutSeconds)*time.Second)

	im := importer.New(client, cfg.Import.BatchSize, cfg.Import.BatchesPerSecond)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := im.ImportFile(ctx, *input)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	fmt.Println(result.Summary())

	// Let a running estia-web know the directory contents changed.
	writer := notify.NewEventWriter(cfg.Import.DataPath)
	if err := writer.Notify(notify.EventImportCompleted, result.RunID, result.Imported); err != nil {
		log.Printf("Warning: failed to write import event: %v", err)
	}

	if result.FailedBatches > 0 {
		os.Exit(1)
	}
}
