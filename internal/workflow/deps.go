package workflow

import (
	"context"
	"path/filepath"
	"strings"

	"reelvault/internal/media/ffprobe"
	"reelvault/internal/services/ffmpeg"
	"reelvault/internal/services/whisper"
)

// Compressor re-encodes or copies a source file.
type Compressor interface {
	Compress(ctx context.Context, req ffmpeg.Request, progress func(ffmpeg.ProgressUpdate)) error
}

// Uploader pushes a file to a destination and returns its shareable link.
type Uploader interface {
	Upload(ctx context.Context, path, filename string) (string, error)
}

// Transcriber produces a transcript for an archived recording.
type Transcriber interface {
	Configured() bool
	Transcribe(ctx context.Context, mediaPath, outputDir string, progress func(float64)) (whisper.Result, error)
}

// ProbeFunc inspects a media file. Defaults to ffprobe.Inspect.
type ProbeFunc func(ctx context.Context, path string) (ffprobe.Result, error)

// Extensions that identify audio-only recordings. These skip the backup
// video host entirely.
var audioOnlyExtensions = map[string]struct{}{
	".mp3":  {},
	".m4a":  {},
	".wav":  {},
	".aac":  {},
	".flac": {},
	".ogg":  {},
}

// IsAudioOnly reports whether a source path names an audio-only recording.
func IsAudioOnly(path string) bool {
	_, ok := audioOnlyExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
