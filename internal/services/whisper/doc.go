// Package whisper wraps the whisper command-line transcriber. Transcription
// is optional; the service stays inert until a binary and model path are
// configured, and the pipeline treats failures as best-effort.
package whisper
