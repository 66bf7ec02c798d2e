package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelvault/internal/config"
	"reelvault/internal/daemon"
	"reelvault/internal/logging"
	"reelvault/internal/queue"
	"reelvault/internal/testsupport"
	"reelvault/internal/workflow"
)

type cliTestEnv struct {
	cfg        *config.Config
	store      *queue.Store
	daemon     *daemon.Daemon
	configPath string
}

// setupCLITestEnv starts a daemon backed by temp directories and writes a
// config file the CLI can load with --config.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	store := testsupport.MustOpenStore(t, cfg)
	manager := workflow.NewManager(cfg, workflow.Deps{Store: store}, logging.NewNop())

	d, err := daemon.New(cfg, store, logging.NewNop(), manager, nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(d.Stop)

	return &cliTestEnv{
		cfg:        cfg,
		store:      store,
		daemon:     d,
		configPath: configPath,
	}
}

func runCLI(t *testing.T, args []string, addr, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--addr", addr}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
output_dir = %q
log_dir = %q
api_bind = %q

[record_store]
base_url = %q

[drive]
upload_url = %q
folder_id = %q

[backup]
enabled = %t
upload_url = %q

[workflow]
queue_poll_interval = %d
retry_delay_seconds = %d
`,
		cfg.Paths.OutputDir,
		cfg.Paths.LogDir,
		cfg.Paths.APIBind,
		cfg.RecordStore.BaseURL,
		cfg.Drive.UploadURL,
		cfg.Drive.FolderID,
		cfg.Backup.Enabled,
		cfg.Backup.UploadURL,
		cfg.Workflow.QueuePollInterval,
		cfg.Workflow.RetryDelaySeconds,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
