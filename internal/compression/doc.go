// Package compression decides whether and how a source video is re-encoded
// before upload. The decision table is size-tiered with overrides for
// low-bitrate audio and already-efficient modern codecs; it is deliberately a
// pure function so the same inputs always produce the same strategy.
package compression
