package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/neonmatrix/neonmatrix/internal/auth"
	"github.com/neonmatrix/neonmatrix/internal/backup"
	"github.com/neonmatrix/neonmatrix/internal/database"
	"github.com/neonmatrix/neonmatrix/internal/logging"
	"github.com/neonmatrix/neonmatrix/internal/server"
)

func main() {
	restoreID := flag.Int64("restore", 0, "restore the given backup id and exit")
	flag.Parse()

	logger := logging.Setup(os.Getenv("NEONMATRIX_LOG_LEVEL"))

	port := os.Getenv("NEONMATRIX_PORT")
	if port == "" {
		port = "3001"
	}

	dbPath := os.Getenv("NEONMATRIX_DB_PATH")
	if dbPath == "" {
		dbPath = "neonmatrix.db"
	}

	secret := os.Getenv("NEONMATRIX_JWT_SECRET")
	tokens, err := auth.NewTokenService(secret)
	if err != nil {
		logger.Error("NEONMATRIX_JWT_SECRET must be set to at least 16 bytes", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err, "path", dbPath)
		os.Exit(1)
	}
	defer db.Close()

	backupCfg := backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("NEONMATRIX_S3_ENDPOINT"),
			Bucket:    os.Getenv("NEONMATRIX_S3_BUCKET"),
			Region:    envDefault("NEONMATRIX_S3_REGION", "auto"),
			AccessKey: os.Getenv("NEONMATRIX_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("NEONMATRIX_S3_SECRET_KEY"),
		},
		DBPath:        dbPath,
		Passphrase:    os.Getenv("NEONMATRIX_BACKUP_PASSPHRASE"),
		ScheduleHour:  envInt("NEONMATRIX_BACKUP_HOUR", 3),
		RetentionDays: envInt("NEONMATRIX_BACKUP_RETENTION_DAYS", 30),
	}

	srv := server.New(db, tokens, backupCfg, os.Getenv("NEONMATRIX_FRONTEND_URL"), logger)

	if *restoreID != 0 {
		if err := srv.BackupManager().Restore(context.Background(), *restoreID); err != nil {
			logger.Error("restore failed", "error", err, "backup_id", *restoreID)
			os.Exit(1)
		}
		fmt.Printf("Restored backup %d to %s\n", *restoreID, dbPath)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv.BackupManager().Start(ctx)
	defer srv.BackupManager().Stop()

	// Hourly cleanup of expired rate limiter entries.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", "http://localhost:"+port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
