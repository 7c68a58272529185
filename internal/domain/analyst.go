package domain

import "time"

// AnalystRole enumerates access levels to the metrics API.
type AnalystRole string

const (
	AnalystRoleViewer   AnalystRole = "VIEWER"
	AnalystRoleImporter AnalystRole = "IMPORTER"
	AnalystRoleAdmin    AnalystRole = "ADMIN"
)

// Analyst is an operator allowed to import orders or read metrics.
type Analyst struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         AnalystRole
	Active       bool
	CreatedAt    time.Time
}
