package whisper

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"reelvault/internal/config"
)

var commandContext = exec.CommandContext

// progressLine matches whisper.cpp progress callbacks ("progress = 25%").
var progressLine = regexp.MustCompile(`progress\s*=\s*(\d+)%`)

// Result holds the transcription output.
type Result struct {
	TranscriptPath string
	Text           string
}

// Service defines transcription behaviour.
type Service interface {
	Configured() bool
	Transcribe(ctx context.Context, mediaPath, outputDir string, progress func(percent float64)) (Result, error)
}

// CLI wraps the whisper command-line transcriber.
type CLI struct {
	binary    string
	modelPath string
}

// NewCLI constructs a transcriber from configuration. The service is inert
// until both the binary and model path are set.
func NewCLI(cfg *config.Config) *CLI {
	return &CLI{
		binary:    strings.TrimSpace(cfg.Transcription.Binary),
		modelPath: strings.TrimSpace(cfg.Transcription.ModelPath),
	}
}

// Configured reports whether transcription can run.
func (c *CLI) Configured() bool {
	return c != nil && c.binary != "" && c.modelPath != ""
}

// Transcribe runs the whisper binary against the media file and returns the
// transcript path plus its text. Progress callbacks are scaled 0-100.
func (c *CLI) Transcribe(ctx context.Context, mediaPath, outputDir string, progress func(float64)) (Result, error) {
	if !c.Configured() {
		return Result{}, errors.New("transcription not configured")
	}
	if strings.TrimSpace(mediaPath) == "" {
		return Result{}, errors.New("media path required")
	}
	if strings.TrimSpace(outputDir) == "" {
		return Result{}, errors.New("output directory required")
	}

	base := filepath.Base(mediaPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	outPrefix := filepath.Join(outputDir, stem)

	args := []string{
		"-m", c.modelPath,
		"-f", mediaPath,
		"-otxt",
		"-of", outPrefix,
		"--print-progress",
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("start whisper: %w", err)
	}

	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		match := progressLine.FindStringSubmatch(scanner.Text())
		if match == nil || progress == nil {
			continue
		}
		if percent, err := strconv.ParseFloat(match[1], 64); err == nil {
			progress(percent)
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("read whisper output: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		return Result{}, fmt.Errorf("whisper transcribe failed: %w", err)
	}

	transcriptPath := outPrefix + ".txt"
	text, err := os.ReadFile(transcriptPath)
	if err != nil {
		return Result{}, fmt.Errorf("read transcript: %w", err)
	}
	return Result{TranscriptPath: transcriptPath, Text: string(text)}, nil
}

var _ Service = (*CLI)(nil)
