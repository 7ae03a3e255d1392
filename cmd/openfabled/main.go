package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/openfable/openfable/internal/config"
	"github.com/openfable/openfable/internal/version"
	"github.com/openfable/openfable/pkg/database"
	"github.com/openfable/openfable/pkg/database/migration"
	"github.com/openfable/openfable/pkg/database/repository"
	"github.com/openfable/openfable/pkg/logging"
	"github.com/openfable/openfable/pkg/registry"
	"github.com/openfable/openfable/pkg/registry/service"
	"github.com/robfig/cron/v3"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application initialization failed: %v", err)
	}
}

// run handles the complete application lifecycle
func run() error {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
		// Continue execution as .env file might not exist in production
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.NewGormDBFromConfig(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Get the underlying *sql.DB for Close() method
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	defer sqlDB.Close()

	if err := migration.RunMigration(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	loggerFactory := logging.NewLoggerFactoryWithLevel(cfg.LogLevel)
	logging.SetGlobalLoggerFactory(loggerFactory)
	systemLogger := loggerFactory.CreateLogger("system")
	systemLogger.Info("Starting openfable registry service", map[string]interface{}{
		"version":       version.Get().Version,
		"sync_schedule": cfg.SyncSchedule,
	})

	// Wire the registry services
	registryRepo := repository.NewRegistryRepository(db)
	characterRepo := repository.NewCharacterRepository(db)
	client := registry.NewHTTPClient(cfg.FetchTimeout)
	svc := service.NewRegistryService(registry.NewService(registryRepo, characterRepo, client, loggerFactory))

	// Ingest the default registry once if it is configured and not yet known
	bootstrapDefaultRegistry(cfg, svc, systemLogger)

	// Schedule periodic registry synchronization
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SyncSchedule, func() {
		if _, err := svc.UpdateAllRegistries(context.Background()); err != nil {
			systemLogger.Error("Scheduled registry sync failed", err, nil)
		}
	}); err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", cfg.SyncSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	healthServer := startHealthServer(cfg.ListenAddr, registryRepo, characterRepo)

	log.Println("openfable is running. Press CTRL-C to exit.")
	log.Printf("Health check endpoint available at http://localhost%s/health", cfg.ListenAddr)

	// Wait here until CTRL-C or other term signal is received.
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	log.Println("Shutting down gracefully...")
	shutdownHealthServer(healthServer)
	log.Println("Application shutdown complete")
	return nil
}

// bootstrapDefaultRegistry ingests the configured default registry when the
// store has never seen it. Failure is logged and non-fatal; the next sync run
// or a manual fetch can pick it up.
func bootstrapDefaultRegistry(cfg *config.Config, svc *service.RegistryService, logger logging.Logger) {
	if cfg.DefaultRegistryURL == "" {
		return
	}

	stored, err := svc.GetRegistryFromStore(cfg.DefaultRegistryURL)
	if err != nil {
		logger.Error("Failed to check for default registry", err, map[string]interface{}{
			"registry_url": cfg.DefaultRegistryURL,
		})
		return
	}
	if stored != nil {
		return
	}

	result, err := svc.FetchRegistry(context.Background(), cfg.DefaultRegistryURL)
	if err != nil {
		logger.Error("Failed to ingest default registry", err, map[string]interface{}{
			"registry_url": cfg.DefaultRegistryURL,
		})
		return
	}
	logger.Info("Default registry ingested", map[string]interface{}{
		"registry_url":    cfg.DefaultRegistryURL,
		"registry_name":   result.Registry.Meta.Name,
		"character_count": len(result.Registry.Characters),
		"skipped_count":   len(result.Warnings),
	})
}

var startTime = time.Now()

// startHealthServer starts the HTTP server for health checks
func startHealthServer(addr string, registries *repository.RegistryRepository, characters *repository.CharacterRepository) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		registryCount, regErr := registries.Count()
		characterCount, charErr := characters.Count()
		healthy := regErr == nil && charErr == nil

		w.Header().Set("Content-Type", "application/json")
		status := "healthy"
		if !healthy {
			status = "unhealthy"
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		fmt.Fprintf(w, `{
	"status": "%s",
	"uptime": "%s",
	"database_connected": %t,
	"registries": %d,
	"characters": %d
}`, status, time.Since(startTime).Round(time.Second), healthy, registryCount, characterCount)
	})

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
	"application": "openfable registry service",
	"version": "%s",
	"uptime": "%s",
	"start_time": "%s"
}`, version.Get().Version, time.Since(startTime).Round(time.Second), startTime.Format(time.RFC3339))
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("Starting health check server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Health check server error: %v", err)
		}
	}()

	return server
}

// shutdownHealthServer gracefully shuts down the health check server
func shutdownHealthServer(server *http.Server) {
	if server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Health server shutdown error: %v", err)
	} else {
		log.Println("Health check server shutdown complete")
	}
}
