// Package ffmpeg wraps the ffmpeg command line for compression jobs.
//
// The client translates a compression.Strategy into encoder arguments,
// runs two-pass encodes as a single 0-100 progress ramp, and parses
// ffmpeg's machine-readable -progress stream into typed updates.
package ffmpeg
