package workflow

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"reelvault/internal/compression"
	"reelvault/internal/logging"
	"reelvault/internal/queue"
	"reelvault/internal/retry"
	"reelvault/internal/services"
	"reelvault/internal/services/ffmpeg"
	"reelvault/internal/services/recordstore"
)

// Progress anchors for the pipeline stages. Compression scales linearly into
// 0-50; transcription into 80-95.
const (
	anchorCompressed    = 50
	anchorPrimaryDone   = 50
	anchorBackupDone    = 75
	anchorTranscribing  = 80
	anchorTranscribed   = 95
	transcriptionSpread = anchorTranscribed - anchorTranscribing
)

// processItem runs one recording through the full pipeline. Any returned
// error marks the item failed; the loop itself keeps running.
func (m *Manager) processItem(ctx context.Context, item *queue.Item) error {
	ctx = services.WithItemID(ctx, item.ID)
	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, m.logger)
	logger.Info("processing recording",
		logging.String("source", item.SourceName),
		logging.Int64(logging.FieldInterviewID, item.InterviewID),
		logging.String(logging.FieldEventType, "archive_started"))

	outputPath, audioOnly, err := m.compress(ctx, item)
	if err != nil {
		return err
	}

	links, err := m.upload(ctx, item, outputPath, audioOnly)
	if err != nil {
		return err
	}

	m.transcribe(ctx, item, outputPath, &links)

	// Write-back is the one non-retried remote call: a failure here fails
	// the item so the record store never lags the uploads silently.
	item.SetProgress("Updating record store", anchorTranscribed)
	m.persist(ctx, item)
	if err := m.records.WriteBack(ctx, item.InterviewID, links, item.OutputName); err != nil {
		return err
	}

	now := time.Now()
	item.SetCompleted(now)
	m.persist(ctx, item)

	retention := time.Duration(m.cfg.Deletion.RetentionDays) * 24 * time.Hour
	if err := m.store.ScheduleDeletion(ctx, item.SourcePath, now.Add(retention)); err != nil {
		logger.Warn("could not schedule source deletion", logging.Error(err))
	}

	logger.Info("recording archived",
		logging.String("output_name", item.OutputName),
		logging.String("drive_link", item.DriveLink),
		logging.String(logging.FieldEventType, "archive_completed"))

	if m.notifier != nil {
		if err := m.notifier.NotifyArchiveCompleted(ctx, item.OutputName, item.DriveLink); err != nil {
			logger.Warn("completion notification failed", logging.Error(err))
		}
	}
	return nil
}

// compress probes the source, decides a strategy, and produces the output
// file. Returns the output path and whether the source is audio-only.
func (m *Manager) compress(ctx context.Context, item *queue.Item) (string, bool, error) {
	ctx = services.WithStep(ctx, "compress")
	logger := logging.WithContext(ctx, m.logger)

	item.Status = queue.StatusCompressing
	item.SetProgress("Compressing", 0)
	m.persist(ctx, item)

	probe, err := m.probe(ctx, item.SourcePath)
	if err != nil {
		return "", false, services.Wrap(services.ErrExternalTool, "workflow", "compress", "probe source", err)
	}
	audioOnly := IsAudioOnly(item.SourcePath) || !probe.HasVideo()

	strategy := compression.Strategy{ShouldCompress: false, Reason: "audio-only source"}
	if !audioOnly {
		strategy = compression.Decide(probe.SizeMB(), probe.VideoInfo())
	}
	logger.Info("compression decided",
		logging.Bool("compress", strategy.ShouldCompress),
		logging.String("reason", strategy.Reason))

	if err := os.MkdirAll(m.cfg.Paths.OutputDir, 0o755); err != nil {
		return "", false, services.Wrap(services.ErrConfiguration, "workflow", "compress", "create output directory", err)
	}
	outputPath := filepath.Join(m.cfg.Paths.OutputDir, item.OutputName)

	lastPersisted := -1.0
	err = m.compressor.Compress(ctx, ffmpeg.Request{
		InputPath:       item.SourcePath,
		OutputPath:      outputPath,
		Strategy:        strategy,
		DurationSeconds: probe.DurationSeconds(),
	}, func(update ffmpeg.ProgressUpdate) {
		percent := update.Percent * anchorCompressed / 100
		if percent-lastPersisted < 1 {
			return
		}
		lastPersisted = percent
		item.SetProgress("Compressing", percent)
		m.persist(ctx, item)
	})
	if err != nil {
		return "", false, services.Wrap(services.ErrExternalTool, "workflow", "compress", "encode failed", err)
	}
	return outputPath, audioOnly, nil
}

// upload pushes the output to the primary destination and, for video
// recordings, the backup host. Both uploads run under the retry policy.
func (m *Manager) upload(ctx context.Context, item *queue.Item, outputPath string, audioOnly bool) (recordstore.Links, error) {
	ctx = services.WithStep(ctx, "upload")
	logger := logging.WithContext(ctx, m.logger)

	item.Status = queue.StatusUploading
	item.SetProgress("Uploading to drive", anchorPrimaryDone)
	m.persist(ctx, item)

	driveLink, err := retry.Do(ctx, m.retryPolicy, func(ctx context.Context) (string, error) {
		return m.primary.Upload(ctx, outputPath, item.OutputName)
	})
	if err != nil {
		return recordstore.Links{}, services.Wrap(services.ErrTransient, "workflow", "upload", "primary destination", err)
	}
	item.DriveLink = driveLink
	m.persist(ctx, item)

	links := recordstore.Links{Primary: driveLink}
	if m.backup == nil || audioOnly {
		if audioOnly {
			logger.Info("skipping backup upload for audio-only recording")
		}
		return links, nil
	}

	item.SetProgress("Uploading to backup", anchorBackupDone)
	m.persist(ctx, item)

	backupLink, err := retry.Do(ctx, m.retryPolicy, func(ctx context.Context) (string, error) {
		return m.backup.Upload(ctx, outputPath, item.OutputName)
	})
	if err != nil {
		return recordstore.Links{}, services.Wrap(services.ErrTransient, "workflow", "upload", "backup destination", err)
	}
	item.BackupLink = backupLink
	links.Backup = &backupLink
	m.persist(ctx, item)
	return links, nil
}

// transcribe runs the optional transcription step. It is best-effort: any
// failure is logged and the pipeline continues without a transcript.
func (m *Manager) transcribe(ctx context.Context, item *queue.Item, outputPath string, links *recordstore.Links) {
	if m.transcrib == nil || !m.transcrib.Configured() {
		return
	}
	ctx = services.WithStep(ctx, "transcribe")
	logger := logging.WithContext(ctx, m.logger)

	item.Status = queue.StatusTranscribing
	item.SetProgress("Transcribing", anchorTranscribing)
	m.persist(ctx, item)

	lastPersisted := -1.0
	result, err := m.transcrib.Transcribe(ctx, outputPath, m.cfg.Paths.OutputDir, func(percent float64) {
		scaled := anchorTranscribing + percent*transcriptionSpread/100
		if scaled-lastPersisted < 1 {
			return
		}
		lastPersisted = scaled
		item.SetProgress("Transcribing", scaled)
		m.persist(ctx, item)
	})
	if err != nil {
		logger.Warn("transcription failed, continuing without transcript", logging.Error(err))
		return
	}

	item.SetProgress("Uploading transcript", anchorTranscribed)
	m.persist(ctx, item)

	transcriptName := strings.TrimSuffix(item.OutputName, filepath.Ext(item.OutputName)) + ".txt"
	transcriptLink, err := retry.Do(ctx, m.retryPolicy, func(ctx context.Context) (string, error) {
		return m.primary.Upload(ctx, result.TranscriptPath, transcriptName)
	})
	if err != nil {
		logger.Warn("transcript upload failed, continuing without transcript", logging.Error(err))
		return
	}

	item.TranscriptLink = transcriptLink
	m.persist(ctx, item)
	links.Transcript = &transcriptLink
	logger.Info("transcription complete", logging.String("transcript_link", transcriptLink))
}

// persist writes the item and publishes a snapshot; persistence problems are
// logged rather than failing the pipeline mid-stage.
func (m *Manager) persist(ctx context.Context, item *queue.Item) {
	if err := m.store.Update(ctx, item); err != nil {
		m.logger.Warn("could not persist item update",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.String("step", item.CurrentStep),
			logging.Error(err))
	}
	m.publishSnapshot(ctx)
}
