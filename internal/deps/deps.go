// Package deps reports the availability of the external tools the archive
// pipeline shells out to.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"reelvault/internal/config"
)

// Requirement defines an external dependency reelvault relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements builds the dependency list for the given configuration. The
// whisper binary and model are only listed when transcription is configured.
func Requirements(cfg *config.Config) []Requirement {
	requirements := []Requirement{
		{Name: "FFmpeg", Command: cfg.FFmpegBinary(), Description: "Video compression"},
		{Name: "FFprobe", Command: cfg.FFprobeBinary(), Description: "Media inspection"},
	}
	if cfg.TranscriptionConfigured() {
		requirements = append(requirements, Requirement{
			Name:        "Whisper",
			Command:     cfg.Transcription.Binary,
			Description: "Transcription",
			Optional:    true,
		})
	}
	return requirements
}

// Check evaluates the configuration's requirements plus the transcription
// model file when one is configured.
func Check(cfg *config.Config) []Status {
	results := CheckBinaries(Requirements(cfg))
	if cfg.TranscriptionConfigured() {
		results = append(results, checkModelFile(cfg.Transcription.ModelPath))
	}
	return results
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

func checkModelFile(path string) Status {
	status := Status{
		Name:        "Whisper model",
		Command:     path,
		Description: "Transcription model weights",
		Optional:    true,
	}
	info, err := os.Stat(path)
	switch {
	case err != nil:
		status.Detail = fmt.Sprintf("model file %q not found", path)
	case info.IsDir():
		status.Detail = fmt.Sprintf("model path %q is a directory", path)
	default:
		status.Available = true
	}
	return status
}
