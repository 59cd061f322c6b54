package models

import "time"

// Import job statuses. A job starts out pending and is moved to a terminal
// state by the import service once the commit finishes.
const (
	ImportJobPending   = "pending"
	ImportJobCommitted = "committed"
	ImportJobFailed    = "failed"
)

// ImportJob represents one import of a statement file
type ImportJob struct {
	ID            string    `json:"id"`
	UserID        int64     `json:"user_id"`
	SourceName    string    `json:"source_name"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// RowError describes a single input row dropped during import mapping
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportSummary is returned to the caller after an import commit
type ImportSummary struct {
	JobID    string     `json:"job_id"`
	Imported int        `json:"imported"`
	Dropped  []RowError `json:"dropped,omitempty"`
}
