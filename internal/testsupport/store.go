package testsupport

import (
	"context"
	"testing"

	"reelvault/internal/config"
	"reelvault/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRecording creates a waiting queue item for tests using the provided store.
func NewRecording(t testing.TB, store *queue.Store, sourcePath string, interviewID int64) *queue.Item {
	t.Helper()

	item, err := store.NewRecording(context.Background(), &queue.Item{
		SourcePath:    sourcePath,
		InterviewID:   interviewID,
		CandidateName: "Jordan Doe",
		Company:       "Acme",
		InterviewType: "Systems",
		InterviewDate: "2026-03-14",
		OutputName:    "Jordan_Doe_Acme_Systems_2026-03-14.mp4",
	})
	if err != nil {
		t.Fatalf("store.NewRecording: %v", err)
	}
	return item
}
