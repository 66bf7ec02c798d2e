package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// NewRecording inserts a new waiting item for a local recording. The interview
// metadata is fetched once at intake and frozen on the row.
func (s *Store) NewRecording(ctx context.Context, item *Item) (*Item, error) {
	if item == nil {
		return nil, errors.New("item is nil")
	}
	if strings.TrimSpace(item.SourcePath) == "" {
		return nil, errors.New("source path required")
	}
	if item.InterviewID <= 0 {
		return nil, errors.New("interview id required")
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	sourceName := item.SourceName
	if sourceName == "" {
		sourceName = filepath.Base(item.SourcePath)
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO queue_items (
            source_path, source_name, interview_id, candidate_name, company,
            interview_type, interview_date, output_name, status,
            progress_percent, current_step, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.SourcePath,
		sourceName,
		item.InterviewID,
		nullableString(item.CandidateName),
		nullableString(item.Company),
		nullableString(item.InterviewType),
		nullableString(item.InterviewDate),
		nullableString(item.OutputName),
		StatusWaiting,
		0.0,
		"Waiting in queue",
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert recording: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a queue item by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM queue_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// FindActiveByInterviewID returns the first non-terminal item for an interview,
// used to keep the same interview from being queued twice concurrently.
func (s *Store) FindActiveByInterviewID(ctx context.Context, interviewID int64) (*Item, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+itemColumns+` FROM queue_items
         WHERE interview_id = ? AND status NOT IN (?, ?)
         ORDER BY id LIMIT 1`,
		interviewID, StatusCompleted, StatusFailed,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by interview id: %w", err)
	}
	return item, nil
}

// Update persists changes to an existing queue item.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE queue_items
         SET status = ?, progress_percent = ?, current_step = ?, error_message = ?,
             drive_link = ?, backup_link = ?, transcript_link = ?,
             output_name = ?, updated_at = ?, completed_at = ?
         WHERE id = ?`,
		item.Status,
		item.ProgressPercent,
		nullableString(item.CurrentStep),
		nullableString(item.ErrorMessage),
		nullableString(item.DriveLink),
		nullableString(item.BackupLink),
		nullableString(item.TranscriptLink),
		nullableString(item.OutputName),
		item.UpdatedAt.Format(time.RFC3339Nano),
		nullableTime(item.CompletedAt),
		item.ID,
	); err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// List returns items ordered by insertion, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM queue_items`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// NextWaiting returns the oldest waiting item, preserving FIFO order.
func (s *Store) NextWaiting(ctx context.Context) (*Item, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+itemColumns+` FROM queue_items WHERE status = ? ORDER BY id LIMIT 1`,
		StatusWaiting,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next waiting: %w", err)
	}
	return item, nil
}

// Remove deletes a queue item by identifier.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM queue_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("remove item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ClearCompleted removes completed items only. Failed items stay visible for
// operator inspection.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM queue_items WHERE status = ?`, StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes every queue item.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM queue_items`)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return res.RowsAffected()
}

// ResetStuckProcessing rolls items abandoned mid-processing (e.g. after a
// daemon crash) back to waiting so the loop can redrive them.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE queue_items
         SET status = ?, progress_percent = 0, current_step = 'Waiting in queue', error_message = NULL
         WHERE status IN (?, ?, ?)`,
		StatusWaiting,
		StatusCompressing,
		StatusUploading,
		StatusTranscribing,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck processing: %w", err)
	}
	return res.RowsAffected()
}
