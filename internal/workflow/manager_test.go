package workflow

import (
	"context"
	"strings"
	"testing"
	"time"

	"reelvault/internal/queue"
)

func TestProcessItemHappyPath(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	item := h.enqueue(t, "interview.mov", 101)

	if err := h.manager.processItem(ctx, item); err != nil {
		t.Fatalf("processItem returned error: %v", err)
	}

	stored, err := h.store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != queue.StatusCompleted {
		t.Fatalf("status = %s, want completed", stored.Status)
	}
	if stored.ProgressPercent != 100 {
		t.Fatalf("progress = %v, want 100", stored.ProgressPercent)
	}
	if stored.CompletedAt == nil {
		t.Fatal("completedAt not set")
	}
	if stored.DriveLink != "https://drive.example/f/1" || stored.BackupLink != "https://backup.example/v/1" {
		t.Fatalf("links not persisted: %#v", stored)
	}

	wb := h.records.lastWriteBack(t)
	if wb.interviewID != 101 {
		t.Fatalf("write-back interview = %d", wb.interviewID)
	}
	if wb.links.Primary != "https://drive.example/f/1" {
		t.Fatalf("write-back primary link = %q", wb.links.Primary)
	}
	if wb.links.Backup == nil || *wb.links.Backup != "https://backup.example/v/1" {
		t.Fatalf("write-back backup link = %v", wb.links.Backup)
	}
	if wb.filename != "Jordan_Doe_Acme_Systems_2026-03-14.mp4" {
		t.Fatalf("write-back filename = %q", wb.filename)
	}

	record, err := h.store.FindDeletion(ctx, item.SourcePath)
	if err != nil {
		t.Fatalf("FindDeletion: %v", err)
	}
	if record == nil {
		t.Fatal("deletion not scheduled")
	}
	wantAfter := time.Now().Add(time.Duration(h.cfg.Deletion.RetentionDays)*24*time.Hour - time.Minute)
	if record.DeleteAfter.Before(wantAfter) {
		t.Fatalf("deletion scheduled too early: %v", record.DeleteAfter)
	}

	if len(h.notifier.completed) != 1 {
		t.Fatalf("expected 1 completion notification, got %d", len(h.notifier.completed))
	}
}

func TestAudioOnlySkipsBackupUpload(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	item := h.enqueue(t, "interview.mp3", 101)

	if err := h.manager.processItem(ctx, item); err != nil {
		t.Fatalf("processItem returned error: %v", err)
	}

	if h.backup.callCount() != 0 {
		t.Fatalf("backup uploader called %d times, want 0", h.backup.callCount())
	}
	wb := h.records.lastWriteBack(t)
	if wb.links.Backup != nil {
		t.Fatalf("expected nil backup link, got %v", *wb.links.Backup)
	}
	if !strings.HasSuffix(wb.filename, ".mp3") {
		t.Fatalf("audio-only output should keep source extension, got %q", wb.filename)
	}
}

func TestTranscriptionIsBestEffort(t *testing.T) {
	h := newHarness(t, func(h *harness) {
		h.transcriber.configured = true
		h.transcriber.fail = errUploadDown
	})
	ctx := context.Background()
	item := h.enqueue(t, "interview.mov", 101)

	if err := h.manager.processItem(ctx, item); err != nil {
		t.Fatalf("transcription failure should not fail the item: %v", err)
	}

	stored, err := h.store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != queue.StatusCompleted {
		t.Fatalf("status = %s, want completed", stored.Status)
	}
	if stored.TranscriptLink != "" {
		t.Fatalf("transcript link should be empty, got %q", stored.TranscriptLink)
	}
	wb := h.records.lastWriteBack(t)
	if wb.links.Transcript != nil {
		t.Fatalf("write-back transcript should be nil, got %v", *wb.links.Transcript)
	}
}

func TestTranscriptionSuccessRecordsLink(t *testing.T) {
	h := newHarness(t, func(h *harness) {
		h.transcriber.configured = true
	})
	ctx := context.Background()
	item := h.enqueue(t, "interview.mov", 101)

	if err := h.manager.processItem(ctx, item); err != nil {
		t.Fatalf("processItem returned error: %v", err)
	}

	stored, err := h.store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.TranscriptLink != h.primary.link {
		t.Fatalf("transcript link = %q, want %q", stored.TranscriptLink, h.primary.link)
	}
	names := h.primary.uploadedNames()
	if len(names) != 2 || names[1] != "Jordan_Doe_Acme_Systems_2026-03-14.txt" {
		t.Fatalf("uploaded names = %v, want transcript upload second", names)
	}
	wb := h.records.lastWriteBack(t)
	if wb.links.Transcript == nil {
		t.Fatal("write-back transcript missing")
	}
}

func TestPrimaryUploadRetriesThenSucceeds(t *testing.T) {
	h := newHarness(t, func(h *harness) {
		h.primary.failErr = errUploadDown
		h.primary.failFirst = 2
	})
	ctx := context.Background()
	item := h.enqueue(t, "interview.mov", 101)

	if err := h.manager.processItem(ctx, item); err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if got := h.primary.callCount(); got != 3 {
		t.Fatalf("primary upload attempts = %d, want 3", got)
	}
}

func TestRetryExhaustionFailsItem(t *testing.T) {
	h := newHarness(t, func(h *harness) {
		h.primary.failErr = errUploadDown
	})
	ctx := context.Background()
	item := h.enqueue(t, "interview.mov", 101)

	err := h.manager.processItem(ctx, item)
	if err == nil {
		t.Fatal("expected failure after retry exhaustion")
	}
	if got := h.primary.callCount(); got != h.cfg.Workflow.RetryAttempts {
		t.Fatalf("primary upload attempts = %d, want %d", got, h.cfg.Workflow.RetryAttempts)
	}
}

func TestWriteBackFailureFailsItem(t *testing.T) {
	h := newHarness(t, func(h *harness) {
		h.records.writeErr = errUploadDown
	})
	ctx := context.Background()
	item := h.enqueue(t, "interview.mov", 101)

	if err := h.manager.processItem(ctx, item); err == nil {
		t.Fatal("expected write-back failure to fail the item")
	}
}

func TestManagerDrainsQueueInOrder(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	h.enqueue(t, "first.mov", 101)
	h.enqueue(t, "second.mov", 102)
	h.enqueue(t, "third.mov", 103)

	if err := h.manager.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer h.manager.Stop()
	h.manager.Kick()

	waitFor(t, 10*time.Second, func() bool {
		items, err := h.store.List(context.Background(), queue.StatusCompleted)
		return err == nil && len(items) == 3
	})

	h.compressor.mu.Lock()
	order := append([]string(nil), h.compressor.order...)
	maxSeen := h.compressor.maxSeen
	h.compressor.mu.Unlock()

	if len(order) != 3 || order[0] != "first.mov" || order[1] != "second.mov" || order[2] != "third.mov" {
		t.Fatalf("unexpected processing order: %v", order)
	}
	if maxSeen != 1 {
		t.Fatalf("expected single-flight processing, saw %d concurrent", maxSeen)
	}
}

func TestFailureDoesNotStopTheLoop(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	first := h.enqueue(t, "bad.mov", 101)
	second := h.enqueue(t, "good.mov", 102)

	// Fail only the first item's compression.
	h.compressor.failFor = map[string]error{"bad.mov": errUploadDown}

	if err := h.manager.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer h.manager.Stop()
	h.manager.Kick()

	waitFor(t, 10*time.Second, func() bool {
		item, err := h.store.GetByID(context.Background(), second.ID)
		return err == nil && item.Status == queue.StatusCompleted
	})

	failedItem, err := h.store.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if failedItem.Status != queue.StatusFailed {
		t.Fatalf("first item status = %s, want failed", failedItem.Status)
	}
	if failedItem.ErrorMessage == "" {
		t.Fatal("failed item should carry an error message")
	}

	h.notifier.mu.Lock()
	failedNotifications := len(h.notifier.failed)
	h.notifier.mu.Unlock()
	if failedNotifications != 1 {
		t.Fatalf("expected 1 failure notification, got %d", failedNotifications)
	}
}

func TestStopMidEncodeLeavesItemRedrivable(t *testing.T) {
	h := newHarness(t, func(h *harness) {
		h.compressor.holdUntilCancel = make(chan struct{})
	})
	ctx := context.Background()
	item := h.enqueue(t, "interview.mov", 101)

	if err := h.manager.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-h.compressor.holdUntilCancel
	h.manager.Stop()

	stored, err := h.store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status == queue.StatusFailed {
		t.Fatalf("shutdown should not fail the in-flight item, got %q: %s", stored.Status, stored.ErrorMessage)
	}

	h.notifier.mu.Lock()
	failedNotifications := len(h.notifier.failed)
	h.notifier.mu.Unlock()
	if failedNotifications != 0 {
		t.Fatalf("failure notification sent during shutdown, got %d", failedNotifications)
	}

	// The next start resets the stranded item so it runs again.
	reset, err := h.store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if reset != 1 {
		t.Fatalf("reset %d items, want 1", reset)
	}
}

func TestSnapshotListenerSeesStateChanges(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	item := h.enqueue(t, "interview.mov", 101)

	var snapshots [][]*queue.Item
	h.manager.SetSnapshotListener(func(items []*queue.Item) {
		snapshots = append(snapshots, items)
	})

	if err := h.manager.processItem(ctx, item); err != nil {
		t.Fatalf("processItem: %v", err)
	}
	if len(snapshots) == 0 {
		t.Fatal("expected snapshot callbacks")
	}
	last := snapshots[len(snapshots)-1]
	if len(last) != 1 || last[0].Status != queue.StatusCompleted {
		t.Fatalf("unexpected final snapshot: %#v", last)
	}
}

func TestStartTwiceFails(t *testing.T) {
	h := newHarness(t, nil)
	if err := h.manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer h.manager.Stop()
	if err := h.manager.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}
}
