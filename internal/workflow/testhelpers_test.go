package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"reelvault/internal/config"
	"reelvault/internal/media/ffprobe"
	"reelvault/internal/queue"
	"reelvault/internal/services"
	"reelvault/internal/services/ffmpeg"
	"reelvault/internal/services/recordstore"
	"reelvault/internal/services/whisper"
	"reelvault/internal/testsupport"
)

type fakeRecordStore struct {
	mu         sync.Mutex
	records    map[int64]recordstore.Interview
	writeBacks []writeBack
	writeErr   error
}

type writeBack struct {
	interviewID int64
	links       recordstore.Links
	filename    string
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: map[int64]recordstore.Interview{
		101: {InterviewID: 101, CandidateName: "Jordan Doe", Company: "Acme", InterviewType: "Systems", InterviewDate: "2026-03-14"},
		102: {InterviewID: 102, CandidateName: "Sam Reyes", Company: "Globex", InterviewType: "Behavioral", InterviewDate: "2026-03-15"},
		103: {InterviewID: 103, CandidateName: "Kit Alvarez", Company: "Initech", InterviewType: "Coding", InterviewDate: "2026-03-16"},
	}}
}

func (f *fakeRecordStore) GetDetails(ctx context.Context, interviewID int64) (recordstore.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[interviewID]
	if !ok {
		return recordstore.Interview{}, services.Wrap(services.ErrNotFound, "recordstore", "get details", fmt.Sprintf("interview %d", interviewID), nil)
	}
	if record.Archived {
		return recordstore.Interview{}, services.Wrap(services.ErrAlreadyArchived, "recordstore", "get details", fmt.Sprintf("interview %d", interviewID), nil)
	}
	return record, nil
}

func (f *fakeRecordStore) WriteBack(ctx context.Context, interviewID int64, links recordstore.Links, filename string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writeBacks = append(f.writeBacks, writeBack{interviewID: interviewID, links: links, filename: filename})
	return nil
}

func (f *fakeRecordStore) lastWriteBack(t *testing.T) writeBack {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writeBacks) == 0 {
		t.Fatal("no write-backs recorded")
	}
	return f.writeBacks[len(f.writeBacks)-1]
}

type fakeUploader struct {
	mu        sync.Mutex
	link      string
	calls     int
	failFirst int
	failErr   error
	uploaded  []string
}

func (f *fakeUploader) Upload(ctx context.Context, path, filename string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failErr != nil && (f.failFirst == 0 || f.calls <= f.failFirst) {
		return "", f.failErr
	}
	f.uploaded = append(f.uploaded, filename)
	return f.link, nil
}

func (f *fakeUploader) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeUploader) uploadedNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploaded...)
}

type fakeCompressor struct {
	mu       sync.Mutex
	fail     error
	failFor  map[string]error
	inFlight int
	maxSeen  int
	order    []string

	// holdUntilCancel, when set, is closed once the encode starts; the
	// encode then blocks until the context is cancelled and returns the
	// error a killed child process produces.
	holdUntilCancel chan struct{}
}

func (f *fakeCompressor) Compress(ctx context.Context, req ffmpeg.Request, progress func(ffmpeg.ProgressUpdate)) error {
	base := filepath.Base(req.InputPath)
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	f.order = append(f.order, base)
	fail := f.fail
	if fail == nil {
		fail = f.failFor[base]
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.holdUntilCancel != nil {
		close(f.holdUntilCancel)
		<-ctx.Done()
		return errors.New("ffmpeg encode failed: signal: killed")
	}
	if fail != nil {
		return fail
	}
	if progress != nil {
		progress(ffmpeg.ProgressUpdate{Percent: 40})
		progress(ffmpeg.ProgressUpdate{Percent: 100})
	}
	return os.WriteFile(req.OutputPath, []byte("encoded"), 0o644)
}

type fakeTranscriber struct {
	configured bool
	fail       error
	transcript string
}

func (f *fakeTranscriber) Configured() bool { return f.configured }

func (f *fakeTranscriber) Transcribe(ctx context.Context, mediaPath, outputDir string, progress func(float64)) (whisper.Result, error) {
	if f.fail != nil {
		return whisper.Result{}, f.fail
	}
	if progress != nil {
		progress(50)
		progress(100)
	}
	path := filepath.Join(outputDir, "transcript.txt")
	if f.transcript != "" {
		path = f.transcript
	}
	return whisper.Result{TranscriptPath: path, Text: "transcript"}, nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	completed []string
	failed    []string
	queue     int
}

func (f *fakeNotifier) NotifyArchiveCompleted(ctx context.Context, title, driveLink string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, title)
	return nil
}

func (f *fakeNotifier) NotifyArchiveFailed(ctx context.Context, title string, cause error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = append(f.failed, title)
	return nil
}

func (f *fakeNotifier) NotifyQueueCompleted(ctx context.Context, processed, failed int, duration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue++
	return nil
}

func (f *fakeNotifier) TestNotification(ctx context.Context) error { return nil }

func videoProbe(ctx context.Context, path string) (ffprobe.Result, error) {
	return ffprobe.Result{
		Streams: []ffprobe.Stream{
			{CodecType: "video", CodecName: "h264", Width: 1920, Height: 1080, FrameRate: "30/1"},
			{CodecType: "audio", CodecName: "aac", Channels: 2, BitRate: "160000"},
		},
		Format: ffprobe.Format{Duration: "600", Size: "629145600", BitRate: "12000000"},
	}, nil
}

type harness struct {
	cfg         *config.Config
	store       *queue.Store
	manager     *Manager
	records     *fakeRecordStore
	primary     *fakeUploader
	backup      *fakeUploader
	compressor  *fakeCompressor
	transcriber *fakeTranscriber
	notifier    *fakeNotifier
}

func newHarness(t *testing.T, mutate func(*harness)) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	h := &harness{
		cfg:         cfg,
		store:       store,
		records:     newFakeRecordStore(),
		primary:     &fakeUploader{link: "https://drive.example/f/1"},
		backup:      &fakeUploader{link: "https://backup.example/v/1"},
		compressor:  &fakeCompressor{},
		transcriber: &fakeTranscriber{},
		notifier:    &fakeNotifier{},
	}
	if mutate != nil {
		mutate(h)
	}

	h.manager = NewManager(cfg, Deps{
		Store:       store,
		Notifier:    h.notifier,
		RecordStore: h.records,
		Primary:     h.primary,
		Backup:      h.backup,
		Compressor:  h.compressor,
		Transcriber: h.transcriber,
		Probe:       videoProbe,
	}, nil)
	return h
}

func (h *harness) enqueue(t *testing.T, name string, interviewID int64) *queue.Item {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("source"), 0o644); err != nil {
		t.Fatal(err)
	}
	intake := NewIntake(h.store, h.records, nil)
	item, err := intake.AddRecording(context.Background(), path, interviewID)
	if err != nil {
		t.Fatalf("AddRecording: %v", err)
	}
	return item
}

func waitFor(t *testing.T, timeout time.Duration, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

var errUploadDown = errors.New("upload endpoint unavailable")
