// Package queue persists archive jobs and deletion records in SQLite.
//
// A queue item carries the recording's frozen intake metadata (candidate,
// company, interview type and date, derived output name) plus its mutable
// lifecycle state: waiting, compressing, uploading, transcribing, completed,
// failed. FIFO order is the rowid order; the workflow manager drains items
// with NextWaiting.
//
// Deletion records schedule original files for removal after the retention
// window. To add new statuses or columns, update schema.sql and bump
// schemaVersion.
package queue
