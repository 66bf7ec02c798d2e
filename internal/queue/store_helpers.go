package queue

import (
	"database/sql"
	"time"
)

const itemColumns = "id, source_path, source_name, interview_id, candidate_name, company, interview_type, interview_date, output_name, status, progress_percent, current_step, error_message, drive_link, backup_link, transcript_link, created_at, updated_at, completed_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id              int64
		sourcePath      string
		sourceName      string
		interviewID     int64
		candidateName   sql.NullString
		company         sql.NullString
		interviewType   sql.NullString
		interviewDate   sql.NullString
		outputName      sql.NullString
		statusStr       string
		progressPercent sql.NullFloat64
		currentStep     sql.NullString
		errorMessage    sql.NullString
		driveLink       sql.NullString
		backupLink      sql.NullString
		transcriptLink  sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
		completedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sourcePath,
		&sourceName,
		&interviewID,
		&candidateName,
		&company,
		&interviewType,
		&interviewDate,
		&outputName,
		&statusStr,
		&progressPercent,
		&currentStep,
		&errorMessage,
		&driveLink,
		&backupLink,
		&transcriptLink,
		&createdRaw,
		&updatedRaw,
		&completedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:              id,
		SourcePath:      sourcePath,
		SourceName:      sourceName,
		InterviewID:     interviewID,
		CandidateName:   candidateName.String,
		Company:         company.String,
		InterviewType:   interviewType.String,
		InterviewDate:   interviewDate.String,
		OutputName:      outputName.String,
		Status:          Status(statusStr),
		ProgressPercent: progressPercent.Float64,
		CurrentStep:     currentStep.String,
		ErrorMessage:    errorMessage.String,
		DriveLink:       driveLink.String,
		BackupLink:      backupLink.String,
		TranscriptLink:  transcriptLink.String,
	}
	item.CreatedAt = parseTimestamp(createdRaw)
	item.UpdatedAt = parseTimestamp(updatedRaw)
	if completedRaw.Valid && completedRaw.String != "" {
		ts := parseTimestamp(completedRaw)
		item.CompletedAt = &ts
	}
	return item, nil
}

func parseTimestamp(raw sql.NullString) time.Time {
	if !raw.Valid || raw.String == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, raw.String); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, raw.String); err == nil {
		return ts
	}
	return time.Time{}
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil || value.IsZero() {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}
