package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ScheduleDeletion records that a local file should be removed once the
// retention window has elapsed. Scheduling the same path again overwrites the
// earlier record.
func (s *Store) ScheduleDeletion(ctx context.Context, path string, deleteAfter time.Time) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO deletion_records (path, delete_after, created_at) VALUES (?, ?, ?)
         ON CONFLICT(path) DO UPDATE SET delete_after = excluded.delete_after`,
		path,
		deleteAfter.UTC().Format(time.RFC3339Nano),
		now,
	); err != nil {
		return fmt.Errorf("schedule deletion: %w", err)
	}
	return nil
}

// DueDeletions returns deletion records whose scheduled time has elapsed.
func (s *Store) DueDeletions(ctx context.Context, now time.Time) ([]DeletionRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT path, delete_after, created_at FROM deletion_records WHERE delete_after <= ? ORDER BY delete_after`,
		now.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("due deletions: %w", err)
	}
	defer rows.Close()

	var records []DeletionRecord
	for rows.Next() {
		var (
			path        string
			deleteAfter string
			createdAt   string
		)
		if err := rows.Scan(&path, &deleteAfter, &createdAt); err != nil {
			return nil, err
		}
		record := DeletionRecord{Path: path}
		if ts, err := time.Parse(time.RFC3339Nano, deleteAfter); err == nil {
			record.DeleteAfter = ts
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			record.CreatedAt = ts
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// ListDeletions returns every pending deletion record.
func (s *Store) ListDeletions(ctx context.Context) ([]DeletionRecord, error) {
	return s.DueDeletions(ctx, time.Unix(1<<62-1, 0))
}

// RemoveDeletion drops a deletion record once its file has been handled.
func (s *Store) RemoveDeletion(ctx context.Context, path string) error {
	if err := s.execWithoutResultRetry(ctx, `DELETE FROM deletion_records WHERE path = ?`, path); err != nil {
		return fmt.Errorf("remove deletion record: %w", err)
	}
	return nil
}

// FindDeletion returns the deletion record for a path, or nil.
func (s *Store) FindDeletion(ctx context.Context, path string) (*DeletionRecord, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT path, delete_after, created_at FROM deletion_records WHERE path = ?`,
		path,
	)
	var (
		p           string
		deleteAfter string
		createdAt   string
	)
	if err := row.Scan(&p, &deleteAfter, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find deletion record: %w", err)
	}
	record := &DeletionRecord{Path: p}
	if ts, err := time.Parse(time.RFC3339Nano, deleteAfter); err == nil {
		record.DeleteAfter = ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		record.CreatedAt = ts
	}
	return record, nil
}
