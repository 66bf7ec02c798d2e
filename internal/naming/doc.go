// Package naming derives canonical, filesystem-safe output names from
// interview metadata.
package naming
