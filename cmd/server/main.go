package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/analytics/internal/config"
	"github.com/aristath/analytics/internal/database"
	"github.com/aristath/analytics/internal/grading"
	"github.com/aristath/analytics/internal/marketcal"
	"github.com/aristath/analytics/internal/modules/analysis"
	"github.com/aristath/analytics/internal/modules/migration"
	"github.com/aristath/analytics/internal/modules/pulse"
	"github.com/aristath/analytics/internal/modules/screening"
	"github.com/aristath/analytics/internal/scheduler"
	"github.com/aristath/analytics/internal/server"
	"github.com/aristath/analytics/pkg/logger"
)

func main() {
	// Load configuration first so the log level is honored from the start
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting analytics service")

	// Initialize database
	db, err := database.New(database.Config{
		Path:    cfg.DatabasePath(),
		Profile: database.ProfileAnalytics,
		Name:    "analytics",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize schema")
	}

	// Shared configuration tables
	grades := grading.Default()
	calendar := marketcal.NewUSCalendar()

	// Repositories and services
	analysisRepo := analysis.NewRepository(db, log)
	agentRepo := analysis.NewAgentResultRepository(db, log)
	analysisService := analysis.NewService(analysisRepo, agentRepo, grades, log)

	pulseService := pulse.NewService(pulse.NewRepository(db, log), calendar, log)
	screeningEngine := screening.NewEngine(db, log)
	migrator := migration.NewMigrator(analysisRepo, analysis.NewNormalizer(), grades, log)

	legacyPath := cfg.LegacyDBPath
	if legacyPath == "" {
		legacyPath = filepath.Join(cfg.DataDir, "fundamental_analyses.db")
	}

	// Background maintenance
	sched := scheduler.New(log)
	if err := sched.AddJob("@hourly", scheduler.NewWALCheckpointJob(db, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register WAL checkpoint job")
	}
	if err := sched.AddJob("@every 6h", scheduler.NewIntegrityCheckJob(db, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register integrity check job")
	}
	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Port:             cfg.Port,
		Log:              log,
		DB:               db,
		DevMode:          cfg.DevMode,
		AnalysisHandler:  analysis.NewHandler(analysisService, log),
		PulseHandler:     pulse.NewHandler(pulseService, log),
		ScreeningHandler: screening.NewHandler(screeningEngine, log),
		MigrationHandler: migration.NewHandler(migrator, legacyPath, log),
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
