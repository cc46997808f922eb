package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/studycards/internal/api"
	"github.com/vytor/studycards/internal/config"
	"github.com/vytor/studycards/internal/db"
	"github.com/vytor/studycards/internal/logger"
	"github.com/vytor/studycards/internal/repository/blobstore"
	"github.com/vytor/studycards/internal/repository/rowstore"
	"github.com/vytor/studycards/internal/services"
	"github.com/vytor/studycards/internal/worker"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("StudyCards Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_driver=%s", cfg.DBDriver)
	log.Debug("backup_dir=%s", cfg.BackupDir)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("bulk_batch_size=%d", cfg.BulkBatchSize)
	log.Debug("audit_backups=%t", cfg.AuditBackups)
	log.Debug("audit_worker_count=%d", cfg.AuditWorkerCount)
	log.Debug("audit_queue_size=%d", cfg.AuditQueueSize)

	// Open database
	database, err := db.Open(cfg.DBDriver, cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	cards := rowstore.NewCardRepository(database.DB, rowstore.WithBatchSize(cfg.BulkBatchSize))
	backups := blobstore.NewBackupStore(cfg.BackupDir)

	// Audit backups run on their own pool, off the request path.
	auditPool := worker.NewPool(cfg.AuditWorkerCount, cfg.AuditQueueSize)
	auditor := services.NoopAuditor()
	if cfg.AuditBackups {
		auditor = worker.NewPoolAuditor(auditPool, services.NewBackupWriter(cards, backups))
	}

	srv := &api.Server{
		StudyService:       services.NewStudyService(cards, auditor),
		MaintenanceService: services.NewMaintenanceService(cards, backups, auditor),
		Cards:              cards,
		Sessions:           api.NewSessionRegistry(api.DefaultSessionIdleTimeout),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// The pool outlives ctx so queued audits can drain after the signal.
	auditPool.Start(context.Background())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("initiating graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// HTTP first so no new audits are queued
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error: %v", err)
		}
		log.Debug("draining audit pool")
		if err := auditPool.Stop(shutdownCtx); err != nil {
			log.Error("audit pool shutdown error: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("HTTP server error: %v", err)
	}

	log.Info("===========================================")
	log.Info("StudyCards Server Stopped")
	log.Info("===========================================")
}
