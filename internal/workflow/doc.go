// Package workflow drives the archive pipeline.
//
// Intake validates and enqueues recordings; Manager runs a single background
// goroutine that drains the queue in FIFO order, moving each item through
// compression, uploads, optional transcription, and record-store write-back.
// One failure boundary wraps the whole pipeline: a failed item is marked and
// the loop moves on to the next recording.
package workflow
