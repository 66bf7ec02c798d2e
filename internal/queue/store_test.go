package queue_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"reelvault/internal/queue"
	"reelvault/internal/testsupport"
)

func TestNewRecordingRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.NewRecording(t, store, "/videos/interview.mp4", 101)
	if item.ID == 0 {
		t.Fatal("expected item ID to be assigned")
	}
	if item.Status != queue.StatusWaiting {
		t.Fatalf("status = %q, want waiting", item.Status)
	}
	if item.SourceName != "interview.mp4" {
		t.Fatalf("source name = %q", item.SourceName)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.CandidateName != "Jordan Doe" || fetched.InterviewID != 101 {
		t.Fatalf("unexpected fetched item: %#v", fetched)
	}
}

func TestNewRecordingRequiresInterviewID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	_, err := store.NewRecording(context.Background(), &queue.Item{SourcePath: "/videos/a.mp4"})
	if err == nil {
		t.Fatal("expected error when interview id missing")
	}
}

func TestNextWaitingIsFIFO(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.NewRecording(t, store, "/videos/a.mp4", 1)
	second := testsupport.NewRecording(t, store, "/videos/b.mp4", 2)

	next, err := store.NextWaiting(ctx)
	if err != nil {
		t.Fatalf("NextWaiting: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected first item, got %#v", next)
	}

	next.Status = queue.StatusCompleted
	if err := store.Update(ctx, next); err != nil {
		t.Fatalf("Update: %v", err)
	}

	next, err = store.NextWaiting(ctx)
	if err != nil {
		t.Fatalf("NextWaiting: %v", err)
	}
	if next == nil || next.ID != second.ID {
		t.Fatalf("expected second item, got %#v", next)
	}
}

func TestFindActiveByInterviewIDIgnoresTerminal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.NewRecording(t, store, "/videos/a.mp4", 55)

	found, err := store.FindActiveByInterviewID(ctx, 55)
	if err != nil {
		t.Fatalf("FindActiveByInterviewID: %v", err)
	}
	if found == nil || found.ID != item.ID {
		t.Fatalf("expected active item, got %#v", found)
	}

	item.SetFailed("upload failed")
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	found, err = store.FindActiveByInterviewID(ctx, 55)
	if err != nil {
		t.Fatalf("FindActiveByInterviewID: %v", err)
	}
	if found != nil {
		t.Fatalf("terminal item should not count as active: %#v", found)
	}
}

func TestUpdatePersistsLinksAndCompletion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.NewRecording(t, store, "/videos/a.mp4", 9)
	item.DriveLink = "https://drive.example.com/f/abc"
	item.TranscriptLink = "https://drive.example.com/f/abc-transcript"
	item.SetCompleted(time.Now())
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != queue.StatusCompleted || fetched.ProgressPercent != 100 {
		t.Fatalf("unexpected terminal state: %#v", fetched)
	}
	if fetched.DriveLink == "" || fetched.BackupLink != "" {
		t.Fatalf("unexpected links: drive=%q backup=%q", fetched.DriveLink, fetched.BackupLink)
	}
	if fetched.CompletedAt == nil {
		t.Fatal("expected completed_at to persist")
	}
}

func TestClearCompletedKeepsFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	done := testsupport.NewRecording(t, store, "/videos/done.mp4", 1)
	done.SetCompleted(time.Now())
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update: %v", err)
	}
	failed := testsupport.NewRecording(t, store, "/videos/failed.mp4", 2)
	failed.SetFailed("drive upload failed")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update: %v", err)
	}

	removed, err := store.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("ClearCompleted: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Status != queue.StatusFailed {
		t.Fatalf("unexpected remaining items: %#v", items)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for i, status := range []queue.Status{queue.StatusCompressing, queue.StatusUploading, queue.StatusTranscribing} {
		item := testsupport.NewRecording(t, store, fmt.Sprintf("/videos/%d.mp4", i), int64(i+1))
		item.Status = status
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}

	reset, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing: %v", err)
	}
	if reset != 3 {
		t.Fatalf("reset = %d, want 3", reset)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Waiting != 3 || health.Processing != 0 {
		t.Fatalf("unexpected health: %#v", health)
	}
}

func TestDeletionRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	now := time.Now().UTC()
	if err := store.ScheduleDeletion(ctx, "/videos/old.mp4", now.Add(-time.Hour)); err != nil {
		t.Fatalf("ScheduleDeletion: %v", err)
	}
	if err := store.ScheduleDeletion(ctx, "/videos/new.mp4", now.Add(50*24*time.Hour)); err != nil {
		t.Fatalf("ScheduleDeletion: %v", err)
	}

	due, err := store.DueDeletions(ctx, now)
	if err != nil {
		t.Fatalf("DueDeletions: %v", err)
	}
	if len(due) != 1 || due[0].Path != "/videos/old.mp4" {
		t.Fatalf("unexpected due records: %#v", due)
	}

	if err := store.RemoveDeletion(ctx, "/videos/old.mp4"); err != nil {
		t.Fatalf("RemoveDeletion: %v", err)
	}
	record, err := store.FindDeletion(ctx, "/videos/old.mp4")
	if err != nil {
		t.Fatalf("FindDeletion: %v", err)
	}
	if record != nil {
		t.Fatalf("expected record removed, got %#v", record)
	}
}

func TestScheduleDeletionOverwrites(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := time.Now().UTC().Add(time.Hour)
	second := first.Add(24 * time.Hour)
	if err := store.ScheduleDeletion(ctx, "/videos/a.mp4", first); err != nil {
		t.Fatalf("ScheduleDeletion: %v", err)
	}
	if err := store.ScheduleDeletion(ctx, "/videos/a.mp4", second); err != nil {
		t.Fatalf("ScheduleDeletion: %v", err)
	}

	record, err := store.FindDeletion(ctx, "/videos/a.mp4")
	if err != nil {
		t.Fatalf("FindDeletion: %v", err)
	}
	if record == nil || !record.DeleteAfter.Equal(second) {
		t.Fatalf("expected overwritten schedule, got %#v", record)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := queue.ParseStatus(" Waiting "); !ok || status != queue.StatusWaiting {
		t.Fatalf("ParseStatus waiting = %q, %v", status, ok)
	}
	if _, ok := queue.ParseStatus("ripping"); ok {
		t.Fatal("unknown status should not parse")
	}
}
