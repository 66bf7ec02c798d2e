package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"reelvault/internal/logging"
	"reelvault/internal/naming"
	"reelvault/internal/queue"
	"reelvault/internal/services"
	"reelvault/internal/services/recordstore"
)

// Intake validates new recordings and enqueues them for processing.
type Intake struct {
	store   *queue.Store
	records recordstore.Client
	logger  *slog.Logger

	// onEnqueue, when set, kicks the manager so the new item is picked up
	// without waiting for the next poll.
	onEnqueue func()
}

// NewIntake constructs an intake front end.
func NewIntake(store *queue.Store, records recordstore.Client, logger *slog.Logger) *Intake {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Intake{
		store:   store,
		records: records,
		logger:  logger.With(logging.String(logging.FieldComponent, "intake")),
	}
}

// SetEnqueueHook registers a callback invoked after each successful enqueue.
func (i *Intake) SetEnqueueHook(hook func()) {
	i.onEnqueue = hook
}

// AddRecording validates the source and interview record, derives the output
// name, and inserts a waiting queue item. It fails fast without enqueueing
// when the file is missing, the interview is unknown or already archived, or
// an active item for the interview already exists.
func (i *Intake) AddRecording(ctx context.Context, sourcePath string, interviewID int64) (*queue.Item, error) {
	sourcePath = strings.TrimSpace(sourcePath)
	if sourcePath == "" {
		return nil, services.Wrap(services.ErrValidation, "intake", "add recording", "empty source path", nil)
	}
	absPath, err := filepath.Abs(sourcePath)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "intake", "add recording", "resolve source path", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, services.Wrap(services.ErrValidation, "intake", "add recording", "source file not accessible", err)
	}
	if interviewID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "intake", "add recording", "interview id required", nil)
	}

	if active, err := i.store.FindActiveByInterviewID(ctx, interviewID); err != nil {
		return nil, err
	} else if active != nil {
		return nil, services.Wrap(services.ErrValidation, "intake", "add recording",
			fmt.Sprintf("interview %d already queued as item %d", interviewID, active.ID), nil)
	}

	record, err := i.records.GetDetails(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(record.RecordingLink) != "" {
		return nil, services.Wrap(services.ErrAlreadyArchived, "intake", "add recording",
			fmt.Sprintf("interview %d already has a recording link", interviewID), nil)
	}

	extension := ".mp4"
	if IsAudioOnly(absPath) {
		extension = strings.ToLower(filepath.Ext(absPath))
	}
	outputName := naming.GenerateFileName(record.CandidateName, record.Company, record.InterviewType, record.InterviewDate, extension)

	item, err := i.store.NewRecording(ctx, &queue.Item{
		SourcePath:    absPath,
		SourceName:    filepath.Base(absPath),
		InterviewID:   interviewID,
		CandidateName: record.CandidateName,
		Company:       record.Company,
		InterviewType: record.InterviewType,
		InterviewDate: record.InterviewDate,
		OutputName:    outputName,
	})
	if err != nil {
		return nil, err
	}

	i.logger.Info("recording enqueued",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.Int64(logging.FieldInterviewID, interviewID),
		logging.String("output_name", outputName))

	if i.onEnqueue != nil {
		i.onEnqueue()
	}
	return item, nil
}
