package main

import (
	"context"
	"log"
	"os/signal"
	"path/filepath"
	"syscall"

	"reelvault/internal/config"
	"reelvault/internal/daemon"
	"reelvault/internal/deletion"
	"reelvault/internal/logging"
	"reelvault/internal/notifications"
	"reelvault/internal/queue"
	"reelvault/internal/services/drive"
	"reelvault/internal/services/ffmpeg"
	"reelvault/internal/services/hosting"
	"reelvault/internal/services/recordstore"
	"reelvault/internal/services/whisper"
	"reelvault/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
		Dir:     cfg.Paths.LogDir,
		Pattern: "*.log",
		Exclude: []string{filepath.Join(cfg.Paths.LogDir, "reelvault.log")},
	})

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return
	}

	records := recordstore.NewClient(cfg)
	deps := workflow.Deps{
		Store:       store,
		Notifier:    notifications.NewService(cfg),
		RecordStore: records,
		Primary:     drive.NewClient(cfg),
		Compressor:  ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.FFmpegBinary())),
		Transcriber: whisper.NewCLI(cfg),
	}
	if backup := hosting.NewClient(cfg); backup != nil {
		deps.Backup = backup
	}

	manager := workflow.NewManager(cfg, deps, logger)
	intake := workflow.NewIntake(store, records, logger)
	sweeper := deletion.NewSweeper(cfg, store, logger)

	d, err := daemon.New(cfg, store, logger, manager, sweeper, intake)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("reelvaultd shutting down")
	d.Stop()
}
