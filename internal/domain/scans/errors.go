package scans

import "errors"

var (
	// ErrInvalidInput rejects empty, oversized, or non-image uploads before
	// any remote call is made.
	ErrInvalidInput = errors.New("invalid scan input")

	// ErrNotFound indicates a referenced user or patient does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable indicates the artifact store rejected the upload.
	ErrStorageUnavailable = errors.New("artifact storage unavailable")

	// ErrPersistence indicates the scan record could not be committed. When it
	// happens after a successful artifact upload, the artifact is orphaned;
	// cleanup is a housekeeping sweep, not part of ingestion.
	ErrPersistence = errors.New("scan persistence failed")
)
