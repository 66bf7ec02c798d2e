// Package drive uploads archived recordings to the primary storage endpoint
// and returns the shareable link the record store keeps.
package drive
