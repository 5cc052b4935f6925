package domain

import "time"

// FileStatus is the per-file outcome of an ingestion batch.
type FileStatus string

// File statuses.
const (
	// FileStatusOK means the file was parsed, chunked and stored.
	FileStatusOK FileStatus = "ok"

	// FileStatusFailed means parsing, chunking or embedding failed.
	// The failure is recorded and the batch continues.
	FileStatusFailed FileStatus = "failed"

	// FileStatusSkipped means every chunk was a duplicate of already
	// ingested content.
	FileStatusSkipped FileStatus = "skipped"
)

// FileReport is the per-file entry of an IngestReport. The report
// preserves input enumeration order.
type FileReport struct {
	// Path is the file path relative to the ingest root.
	Path string

	// Status is the outcome for this file.
	Status FileStatus

	// Chunks is the number of new chunks stored from this file.
	Chunks int

	// SkippedDuplicates is the number of chunks dropped as duplicates.
	SkippedDuplicates int

	// Error is the failure reason when Status is failed.
	Error string
}

// IngestReport summarises one ingestion batch. A batch with some failed
// files is a degraded success, not a failure: the report always reflects
// the files that succeeded.
type IngestReport struct {
	// ProcessedFiles is the number of files enumerated and attempted.
	ProcessedFiles int

	// GeneratedChunks is the number of new chunks embedded and stored.
	GeneratedChunks int

	// UniqueHashes is the number of distinct content hashes seen.
	UniqueHashes int

	// SkippedDuplicates is the number of chunks dropped by dedup.
	SkippedDuplicates int

	// ProcessingTime is the wall-clock duration of the batch.
	ProcessingTime time.Duration

	// Errors aggregates per-file failure messages.
	Errors []string

	// PerFile holds one report per enumerated file, in enumeration order.
	PerFile []FileReport
}

// Degraded returns true if the batch succeeded with some per-file errors.
func (r *IngestReport) Degraded() bool {
	return len(r.Errors) > 0 && r.GeneratedChunks+r.SkippedDuplicates > 0
}

// Failed returns true if no file produced any usable output.
func (r *IngestReport) Failed() bool {
	return len(r.Errors) > 0 && r.GeneratedChunks == 0 && r.SkippedDuplicates == 0
}
