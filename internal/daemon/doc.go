// Package daemon coordinates the long-running radioscribe process.
//
// It wires configuration, catalog storage, and the workflow manager into a
// single lifecycle with flock-based locking to prevent multiple instances.
// Keep orchestration logic here: individual pipeline stages live in their
// own packages while the daemon focuses on startup and shutdown.
package daemon
