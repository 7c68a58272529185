package domain

import "time"

// ImportBatch summarises one call to the import pipeline.
type ImportBatch struct {
	ID          string
	Source      string
	Received    int
	Persisted   int
	Eligible    int
	Rejected    int
	ImportedAt  time.Time
	RowProblems []string
}
