package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"reelvault/internal/services/recordstore"
	"reelvault/internal/testsupport"
)

func newRecordStoreStub(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/interviews/101" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
			return
		}
		json.NewEncoder(w).Encode(recordstore.Interview{
			InterviewID:   101,
			CandidateName: "Jordan Doe",
			Company:       "Acme Systems",
			InterviewType: "Systems",
			InterviewDate: "2026-03-14",
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestAddCommandQueuesRecording(t *testing.T) {
	env := setupCLITestEnv(t)
	env.daemon.Stop()

	records := newRecordStoreStub(t)
	env.cfg.RecordStore.BaseURL = records.URL
	writeTestConfig(t, env.configPath, env.cfg)

	source := filepath.Join(testsupport.BaseDir(env.cfg), "interview.mov")
	if err := os.WriteFile(source, []byte("video"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	out, _, err := runCLI(t, []string{"add", source, "--interview", "101"}, "127.0.0.1:1", env.configPath)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	requireContains(t, out, "Jordan Doe")
	requireContains(t, out, "Jordan_Doe_Acme_Systems_2026-03-14.mp4")
}

func TestAddCommandRejectsMissingFile(t *testing.T) {
	env := setupCLITestEnv(t)
	env.daemon.Stop()

	records := newRecordStoreStub(t)
	env.cfg.RecordStore.BaseURL = records.URL
	writeTestConfig(t, env.configPath, env.cfg)

	missing := filepath.Join(testsupport.BaseDir(env.cfg), "nope.mov")
	_, _, err := runCLI(t, []string{"add", missing, "--interview", "101"}, "127.0.0.1:1", env.configPath)
	if err == nil {
		t.Fatal("expected error for missing source file")
	}
}

func TestAddCommandRequiresInterviewFlag(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"add", "/media/a.mov"}, env.daemon.APIAddr(), env.configPath)
	if err == nil {
		t.Fatal("expected error when --interview is absent")
	}
}

func TestAddCommandViaDaemonAPI(t *testing.T) {
	env := setupCLITestEnv(t)

	source := filepath.Join(testsupport.BaseDir(env.cfg), "interview.mov")
	if err := os.WriteFile(source, []byte("video"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	// The test daemon has no intake wired, so the API surfaces a clean error
	// instead of silently falling back.
	_, _, err := runCLI(t, []string{"add", source, "--interview", "101"}, env.daemon.APIAddr(), env.configPath)
	if err == nil {
		t.Fatal("expected daemon error when intake is unavailable")
	}
}
