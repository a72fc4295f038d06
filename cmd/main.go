package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"labstock/internal/caching"
	"labstock/internal/config"
	"labstock/internal/handlers"
	"labstock/internal/jobs"
	"labstock/internal/middleware"
	"labstock/internal/repositories"
	"labstock/internal/services"
)

const version = "1.0.0"

func main() {
	// .env is optional, the environment always wins
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "labstock").Logger().Level(level)

	ctx := context.Background()

	// Static panel catalog, loaded once
	catalog, err := repositories.NewFileCatalogRepository(cfg.Store.CatalogPath).Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load panel catalog")
	}

	// The two snapshot stores
	currentRepo, err := repositories.NewFileSnapshotRepository(cfg.Store.CurrentDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open current store")
	}
	historyRepo, err := repositories.NewFileSnapshotRepository(cfg.Store.HistoryDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open historical store")
	}

	// Cache service
	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)

	// Optional off-site snapshot backup
	var backupSvc services.BackupService
	if cfg.Backup.Enabled {
		backupSvc, err = services.NewMinioBackupService(
			cfg.Backup.Endpoint, cfg.Backup.AccessKey, cfg.Backup.SecretKey,
			cfg.Backup.Bucket, cfg.Backup.UseSSL,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize backup service")
		}
		if err := backupSvc.EnsureBucketExists(ctx, cfg.Backup.Bucket); err != nil {
			log.Warn().Err(err).Msg("backup bucket check failed")
		}
	}

	// Core services
	groupingSvc := services.NewGroupingService(catalog)
	stockSvc := services.NewStockService(groupingSvc)
	syncSvc := services.NewSyncService(groupingSvc, stockSvc, currentRepo, historyRepo, cacheSvc, backupSvc,
		services.SyncConfig{
			CurrentPrefix:  cfg.Store.CurrentPrefix,
			HistoryPrefix:  cfg.Store.HistoryPrefix,
			CurrentExclude: cfg.Store.CurrentExclude,
			HistoryExclude: cfg.Store.HistoryExclude,
			PanelViewTTL:   cfg.Redis.PanelViewTTL,
		}, log)

	// Load the latest snapshot of each store; a failed load is recoverable
	// and leaves that store's in-memory state empty
	if currentErr, historyErr := syncSvc.LoadStores(ctx); currentErr != nil || historyErr != nil {
		if currentErr != nil {
			log.Error().Err(currentErr).Msg("current store load failed, starting empty")
		}
		if historyErr != nil {
			log.Error().Err(historyErr).Msg("historical store load failed, starting empty")
		}
	}

	// Background jobs
	if cfg.Jobs.Enabled {
		alarmSweep := jobs.NewAlarmSweepService(syncSvc, log)
		scheduler, err := jobs.NewJobScheduler(syncSvc, alarmSweep, cfg.Jobs.SnapshotInterval, cfg.Jobs.AlarmInterval, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create job scheduler")
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Create handlers
	panelHandlers := handlers.NewPanelHandlers(syncSvc)
	recordHandlers := handlers.NewRecordHandlers(syncSvc)
	snapshotHandlers := handlers.NewSnapshotHandlers(syncSvc)
	historyHandlers := handlers.NewHistoryHandlers(syncSvc)
	healthHandlers := handlers.NewHealthHandlers(cacheSvc, cfg.Store.CurrentDir, cfg.Store.HistoryDir)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewRequestValidator()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	// Health endpoints
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	// API routes
	v1 := e.Group("/v1")
	v1.Use(versionMiddleware.VersionHeader("v1"))

	v1.GET("/panels", panelHandlers.ListPanels)
	v1.GET("/panels/:panel", panelHandlers.GetPanel)
	v1.GET("/panels/:panel/export", panelHandlers.ExportPanel)
	v1.POST("/panels/:panel/import", panelHandlers.ImportPanel)
	v1.PUT("/panels/:panel/records/:index", recordHandlers.UpdateRecord)
	v1.POST("/panels/:panel/records/:index/consume", recordHandlers.ConsumeRecord)

	v1.GET("/snapshots/:store", snapshotHandlers.ListSnapshots)
	v1.POST("/snapshots/:store", snapshotHandlers.CreateSnapshot)
	v1.GET("/snapshots/:store/buckets/:bucket", snapshotHandlers.ListBucket)
	v1.DELETE("/snapshots/:store/buckets/:bucket", snapshotHandlers.DeleteBucket)
	v1.DELETE("/snapshots/:store/:bucket/:name", snapshotHandlers.DeleteSnapshot)

	v1.GET("/history/:panel", historyHandlers.GetHistory)
	v1.DELETE("/history/:panel/records", historyHandlers.ReconcileDelete)

	log.Info().Str("version", version).Str("port", cfg.App.Port).Msg("labstock server starting")
	if err := e.Start(":" + cfg.App.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
