package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusWaiting      Status = "waiting"
	StatusCompressing  Status = "compressing"
	StatusUploading    Status = "uploading"
	StatusTranscribing Status = "transcribing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

var allStatuses = []Status{
	StatusWaiting,
	StatusCompressing,
	StatusUploading,
	StatusTranscribing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusCompressing:  {},
	StatusUploading:    {},
	StatusTranscribing: {},
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int `json:"total"`
	Waiting    int `json:"waiting"`
	Processing int `json:"processing"`
	Failed     int `json:"failed"`
	Completed  int `json:"completed"`
}

// Item represents one queued recording's journey from intake to archival,
// persisted in SQLite.
//
// Identity, source reference, and the interview metadata fetched at intake are
// write-once; only status, progress, error, links, and completion time mutate
// after creation.
type Item struct {
	ID            int64  `json:"id"`
	SourcePath    string `json:"source_path"`
	SourceName    string `json:"source_name"`
	InterviewID   int64  `json:"interview_id"`
	CandidateName string `json:"candidate_name"`
	Company       string `json:"company"`
	InterviewType string `json:"interview_type"`
	InterviewDate string `json:"interview_date"`
	OutputName    string `json:"output_name"`
	Status        Status `json:"status"`

	ProgressPercent float64 `json:"progress_percent"`
	CurrentStep     string  `json:"current_step"`
	ErrorMessage    string  `json:"error_message,omitempty"`

	DriveLink      string `json:"drive_link,omitempty"`
	BackupLink     string `json:"backup_link,omitempty"`
	TranscriptLink string `json:"transcript_link,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight operation.
func (i Item) IsProcessing() bool {
	return IsProcessingStatus(i.Status)
}

// IsProcessingStatus reports whether a status reflects an in-flight operation.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsTerminal reports whether a status is a terminal state.
func IsTerminal(status Status) bool {
	return status == StatusCompleted || status == StatusFailed
}

// SetProgress updates the progress fields together. Use this instead of
// setting CurrentStep and ProgressPercent individually.
func (i *Item) SetProgress(step string, percent float64) {
	i.CurrentStep = step
	i.ProgressPercent = percent
}

// SetFailed marks the item as failed with the given error message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.CurrentStep = "Failed"
}

// SetCompleted marks the item as terminally successful.
func (i *Item) SetCompleted(now time.Time) {
	now = now.UTC()
	i.Status = StatusCompleted
	i.ProgressPercent = 100
	i.CurrentStep = "Completed"
	i.ErrorMessage = ""
	i.CompletedAt = &now
}

// DeletionRecord maps an absolute file path to its scheduled deletion time.
type DeletionRecord struct {
	Path        string
	DeleteAfter time.Time
	CreatedAt   time.Time
}
