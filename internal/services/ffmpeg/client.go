package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"reelvault/internal/compression"
)

var commandContext = exec.CommandContext

// ProgressUpdate captures encode progress parsed from ffmpeg's -progress stream.
type ProgressUpdate struct {
	Percent float64
	Speed   float64
	FPS     float64
}

// Request describes a single compression job.
type Request struct {
	InputPath       string
	OutputPath      string
	Strategy        compression.Strategy
	DurationSeconds float64
}

// Client defines compression behaviour.
type Client interface {
	Compress(ctx context.Context, req Request, progress func(ProgressUpdate)) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ffmpeg command-line encoder.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Compress re-encodes the input according to the request's strategy. When the
// strategy skips compression the source bytes are copied verbatim. Two-pass
// strategies run ffmpeg twice; progress spans both passes so callers see a
// single 0-100 ramp.
func (c *CLI) Compress(ctx context.Context, req Request, progress func(ProgressUpdate)) error {
	if strings.TrimSpace(req.InputPath) == "" {
		return errors.New("input path required")
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return errors.New("output path required")
	}
	if !req.Strategy.ShouldCompress {
		if err := copyFile(req.InputPath, req.OutputPath); err != nil {
			return err
		}
		if progress != nil {
			progress(ProgressUpdate{Percent: 100})
		}
		return nil
	}

	if !req.Strategy.TwoPass {
		return c.runPass(ctx, req, 0, progress)
	}
	defer removePassLogs(req.OutputPath)
	if err := c.runPass(ctx, req, 1, progress); err != nil {
		return err
	}
	return c.runPass(ctx, req, 2, progress)
}

// runPass executes one ffmpeg invocation. pass is 0 for single-pass encodes.
func (c *CLI) runPass(ctx context.Context, req Request, pass int, progress func(ProgressUpdate)) error {
	args := buildArgs(req, pass)
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	update := ProgressUpdate{}
	for scanner.Scan() {
		key, value, found := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !found {
			continue
		}
		switch key {
		case "out_time_us", "out_time_ms":
			us, err := strconv.ParseFloat(value, 64)
			if err != nil || req.DurationSeconds <= 0 {
				continue
			}
			update.Percent = clampPercent(us / 1e6 / req.DurationSeconds * 100)
		case "speed":
			if parsed, err := strconv.ParseFloat(strings.TrimSuffix(value, "x"), 64); err == nil {
				update.Speed = parsed
			}
		case "fps":
			if parsed, err := strconv.ParseFloat(value, 64); err == nil {
				update.FPS = parsed
			}
		case "progress":
			if value == "end" {
				update.Percent = 100
			}
			if progress != nil {
				progress(scaleForPass(update, pass))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read ffmpeg output: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		if detail := stderrTail(stderr.String()); detail != "" {
			return fmt.Errorf("ffmpeg encode failed: %w: %s", err, detail)
		}
		return fmt.Errorf("ffmpeg encode failed: %w", err)
	}
	return nil
}

// stderrTail keeps the last few diagnostic lines. ffmpeg runs with -v error
// so stderr is usually short, but libx264 can still emit a page.
func stderrTail(out string) string {
	out = strings.TrimSpace(out)
	if out == "" {
		return ""
	}
	lines := strings.Split(out, "\n")
	if len(lines) > 4 {
		lines = lines[len(lines)-4:]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "; ")
}

// removePassLogs clears the ffmpeg2pass-*.log* statistics files a two-pass
// encode leaves next to the output.
func removePassLogs(outputPath string) {
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(outputPath), "ffmpeg2pass-*.log*"))
	if err != nil {
		return
	}
	for _, match := range matches {
		os.Remove(match)
	}
}

// scaleForPass folds two-pass progress into a single ramp: pass 1 covers
// 0-50, pass 2 covers 50-100.
func scaleForPass(update ProgressUpdate, pass int) ProgressUpdate {
	switch pass {
	case 1:
		update.Percent = update.Percent / 2
	case 2:
		update.Percent = 50 + update.Percent/2
	}
	return update
}

func buildArgs(req Request, pass int) []string {
	strategy := req.Strategy
	args := []string{"-y", "-hide_banner", "-v", "error", "-progress", "pipe:1", "-nostats", "-i", req.InputPath}
	args = append(args, "-c:v", "libx264", "-crf", strconv.Itoa(strategy.CRF), "-preset", strategy.Preset)
	if strategy.MaxrateKbps > 0 {
		args = append(args, "-maxrate", fmt.Sprintf("%dk", strategy.MaxrateKbps))
	}
	if strategy.BufsizeKbps > 0 {
		args = append(args, "-bufsize", fmt.Sprintf("%dk", strategy.BufsizeKbps))
	}

	if pass > 0 {
		passlog := filepath.Join(filepath.Dir(req.OutputPath), "ffmpeg2pass")
		args = append(args, "-pass", strconv.Itoa(pass), "-passlogfile", passlog)
	}
	if pass == 1 {
		// First pass only gathers statistics.
		return append(args, "-an", "-f", "null", "/dev/null")
	}

	if strategy.AudioBitrate == "copy" {
		args = append(args, "-c:a", "copy")
	} else {
		args = append(args, "-c:a", "aac", "-b:a", strategy.AudioBitrate)
	}
	args = append(args, "-movflags", "+faststart")
	return append(args, req.OutputPath)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy source: %w", err)
	}
	return out.Close()
}

func clampPercent(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

var _ Client = (*CLI)(nil)
