// Package ingest discovers broadcast programmes and records them in the
// catalog. Ingestion is idempotent on the programme PID, so overlapping
// channel and category sweeps never duplicate shows.
package ingest
