package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/estia-cy/estia/internal/config"
	"github.com/estia-cy/estia/internal/directory"
	"github.com/estia-cy/estia/internal/notify"
	"github.com/estia-cy/estia/internal/server"
	"github.com/estia-cy/estia/internal/sources"
	"github.com/estia-cy/estia/web/handlers"
)

func main() {
	// Parse command line flags
	sourcesPath := flag.String("sources", "", "Path to a sources.yaml chain file (default: config/sources.yaml)")
	flag.Parse()

	// If no chain file specified, use default if it exists
	if *sourcesPath == "" {
		defaultPath := "config/sources.yaml"
		if _, err := os.Stat(defaultPath); err == nil {
			*sourcesPath = defaultPath
			log.Printf("Using source chain: %s", defaultPath)
		}
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *sourcesPath != "" {
		cfg.Sources.File = *sourcesPath
	}

	// Build the source chain
	manager, err := sources.NewManager(cfg)
	if err != nil {
		log.Fatalf("Failed to build source chain: %v", err)
	}
	defer manager.Close()

	dir := directory.New(manager.Chain())

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Announce cache population to connected dashboards
	hub := handlers.NewEventHub()
	dir.OnLoad(func(source string, agents int) {
		hub.Broadcast(handlers.Event{
			Type:   handlers.EventDirectoryLoaded,
			Source: source,
			Agents: agents,
		})
	})

	// Start server
	addr := server.Start(ctx, cfg, dir, hub)
	log.Printf("Estia directory API running at http://%s", addr)

	// Relay import completions from estia-import to connected dashboards
	watcher := notify.NewEventWatcher(cfg.Import.DataPath, func(event notify.Event) {
		hub.Broadcast(handlers.Event{
			Type:     handlers.EventImportCompleted,
			RunID:    event.RunID,
			Imported: event.Imported,
		})
	})
	if err := watcher.Start(); err != nil {
		log.Printf("Warning: import event watcher unavailable: %v", err)
	} else {
		defer watcher.Stop()
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}
