package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedpipe/app/api"
	"feedpipe/app/cache"
	"feedpipe/app/cfg"
	"feedpipe/app/database"
	"feedpipe/app/enrich"
	"feedpipe/app/feedlist"
	"feedpipe/app/fetch"
	"feedpipe/app/pipeline"
	"feedpipe/app/sources"
	"feedpipe/app/tasks"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load configuration from environment variables and command-line flags
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	slog.Info("Starting feedpipe server", "version", appCfg.Version)

	// Database connection and schema
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	feedRepo := database.NewFeedRepository(db)

	// Source catalog
	catalog := sources.NewCatalog(appCfg.SourcesFile)
	if err := catalog.Run(); err != nil {
		log.Fatalf("Failed to load source catalog: %v", err)
	}
	slog.Info("Source catalog loaded", "categories", catalog.GetCategoryCount())

	// Local feed list (pruned on dead URLs)
	localFeeds := feedlist.NewList(appCfg.FeedsFile)

	// Ingestion pipeline
	client := fetch.NewClient(appCfg.UserAgent, appCfg.FetchTimeout)
	enricher := enrich.NewEnricher(client, appCfg.MaxEnrichment, appCfg.CDNExtractionEnabled())

	loop := pipeline.NewLoop()
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go loop.Run(loopCtx)

	orch := pipeline.NewOrchestrator(client, enricher, loop, localFeeds, feedRepo,
		appCfg.CDNExtractionEnabled(), 30*time.Second)

	// Background upkeep
	scheduler := tasks.NewScheduler(catalog, feedRepo, orch)
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP server
	views := api.NewViewSet()
	thumbs, err := cache.NewMemoryCache(cache.DefaultCapacity)
	if err != nil {
		log.Fatalf("Failed to create thumbnail cache: %v", err)
	}
	apiHandler := api.NewHandler(catalog, feedRepo, orch, views, thumbs, client, appCfg.Version)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
