package domain

import "errors"

var (
	ErrSnapshotNotFound      = errors.New("snapshot not found")
	ErrInsufficientSnapshots = errors.New("comparison needs two snapshots")
	ErrUnknownSortKey        = errors.New("unknown sort key")
	ErrUnsupportedFile       = errors.New("unsupported file")
	ErrInvalidSortState      = errors.New("invalid sort state")
	ErrNoSnapshotData        = errors.New("no inventory snapshot among the files")
	ErrRunNotFound           = errors.New("ingest run not found")
)

// ErrInvalidRequest marks caller input that failed validation.
var ErrInvalidRequest = errors.New("invalid request")
