// Package daemon hosts the long-running archive service: the workflow
// manager, the deletion sweeper, and a small JSON status API. A file lock
// guarantees only one daemon runs per machine.
package daemon
