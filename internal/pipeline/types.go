package pipeline

import (
	"io"
	"time"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
)

// Source is one named report to ingest. Name carries the file extension used
// to pick a parser and, for snapshot reports, the snapshot name.
type Source struct {
	Name string
	Body io.Reader
}

// Config holds settings for an ingest run.
type Config struct {
	WorkerCount   int           // concurrent downloads in FetchAll
	RetryAttempts int           // attempts per download
	RetryBackoff  time.Duration // wait between attempts
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		WorkerCount:   4,
		RetryAttempts: 3,
		RetryBackoff:  2 * time.Second,
	}
}

// RunStatus represents the current state of an ingest run
type RunStatus string

const (
	StatusPending    RunStatus = "pending"
	StatusProcessing RunStatus = "processing"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// Run tracks a single ingest of a batch of files
type Run struct {
	ID             string     `json:"id" db:"id"`
	Origin         string     `json:"origin" db:"origin"`
	Status         RunStatus  `json:"status" db:"status"`
	TotalFiles     int        `json:"totalFiles" db:"total_files"`
	ProcessedFiles int        `json:"processedFiles" db:"processed_files"`
	TotalRows      int        `json:"totalRows" db:"total_rows"`
	Snapshots      int        `json:"snapshots" db:"snapshots"`
	StartedAt      time.Time  `json:"startedAt" db:"started_at"`
	CompletedAt    *time.Time `json:"completedAt,omitempty" db:"completed_at"`
	ErrorMessage   string     `json:"errorMessage,omitempty" db:"error_message"`
}

// Complete marks the run completed at t.
func (r *Run) Complete(t time.Time) {
	r.Status = StatusCompleted
	r.CompletedAt = &t
	r.ErrorMessage = ""
}

// Fail marks the run failed at t with err's message.
func (r *Run) Fail(t time.Time, err error) {
	r.Status = StatusFailed
	r.CompletedAt = &t
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// FileReport describes what happened to one source during ingest.
type FileReport struct {
	Name       string          `json:"name"`
	Kind       domain.FileKind `json:"kind,omitempty"`
	Rows       int             `json:"rows"`
	Dropped    int             `json:"dropped"`
	Duplicates int             `json:"duplicates"`
	Skipped    bool            `json:"skipped,omitempty"`
	Reason     string          `json:"reason,omitempty"`
}

// Result is the outcome of an ingest: one snapshot per snapshot report, in
// input order.
type Result struct {
	Run       Run               `json:"run"`
	Snapshots []domain.Snapshot `json:"snapshots"`
	Files     []FileReport      `json:"files"`
}
