// Package catalog persists broadcast shows in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, show and
// transcription-artifact queries, settings, and the conditional status
// transitions the pipeline workers coordinate through. The status column is
// the job queue: workers claim a show by moving it into a claimed status with
// TransitionStatus and never cache show state across polling cycles.
//
// Treat this package as the single source of truth for lifecycle semantics;
// when you add new statuses or columns, update schema.sql and bump
// schemaVersion.
package catalog
