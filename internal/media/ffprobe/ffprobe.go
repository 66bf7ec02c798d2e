package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"reelvault/internal/compression"
)

// commandContext is swapped in tests to avoid invoking a real ffprobe binary.
var commandContext = exec.CommandContext

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
	raw     []byte
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	FrameRate  string `json:"r_frame_rate"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := commandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	result.raw = append([]byte(nil), output...)
	return result, nil
}

// RawJSON returns the raw ffprobe JSON payload.
func (r Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// PrimaryVideo returns the first video stream, or false when the container
// carries none (audio-only recordings).
func (r Result) PrimaryVideo() (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			return stream, true
		}
	}
	return Stream{}, false
}

// PrimaryAudio returns the first audio stream, or false when absent.
func (r Result) PrimaryAudio() (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			return stream, true
		}
	}
	return Stream{}, false
}

// HasVideo reports whether the container carries at least one video stream.
func (r Result) HasVideo() bool {
	_, ok := r.PrimaryVideo()
	return ok
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	duration := parseFloat(r.Format.Duration)
	if math.IsNaN(duration) || duration < 0 {
		return 0
	}
	return duration
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if math.IsNaN(size) || size < 0 {
		return 0
	}
	return int64(size)
}

// SizeMB returns the container size in megabytes.
func (r Result) SizeMB() float64 {
	return float64(r.SizeBytes()) / (1024 * 1024)
}

// BitRateKbps returns the container bitrate in kilobits per second, or 0 when
// ffprobe did not report one.
func (r Result) BitRateKbps() int {
	rate := parseFloat(r.Format.BitRate)
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return int(rate / 1000)
}

// VideoInfo flattens the probe result into the shape the compression policy
// consumes. Fields missing from the probe stay zero; the policy treats zeros
// conservatively.
func (r Result) VideoInfo() compression.VideoInfo {
	info := compression.VideoInfo{
		BitrateKbps:     r.BitRateKbps(),
		DurationSeconds: r.DurationSeconds(),
	}
	if video, ok := r.PrimaryVideo(); ok {
		info.Width = video.Width
		info.Height = video.Height
		info.Codec = video.CodecName
		info.FPS = parseFrameRate(video.FrameRate)
		if kbps := streamKbps(video.BitRate); kbps > 0 {
			info.BitrateKbps = kbps
		}
	}
	if audio, ok := r.PrimaryAudio(); ok {
		info.AudioChannels = audio.Channels
		info.AudioBitrateKbps = streamKbps(audio.BitRate)
	}
	return info
}

// parseFrameRate decodes ffprobe's rational frame rate ("30000/1001").
func parseFrameRate(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	num, den, found := strings.Cut(value, "/")
	if !found {
		parsed := parseFloat(num)
		if math.IsNaN(parsed) || parsed < 0 {
			return 0
		}
		return parsed
	}
	n := parseFloat(num)
	d := parseFloat(den)
	if math.IsNaN(n) || math.IsNaN(d) || d == 0 {
		return 0
	}
	return n / d
}

func streamKbps(value string) int {
	rate := parseFloat(value)
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return int(rate / 1000)
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
