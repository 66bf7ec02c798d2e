// Package hosting uploads archived recordings to the backup video host.
// Audio-only recordings skip this destination entirely.
package hosting
