package dto

import "time"

// OrderRequest is one order in a JSON import.
type OrderRequest struct {
	OrderCode    string     `json:"order_code"`
	ItemCode     string     `json:"item_code"`
	ClientCode   string     `json:"client_code"`
	Technician   string     `json:"technician"`
	ServiceType  string     `json:"service_type"`
	SubType      string     `json:"sub_type"`
	Reason       string     `json:"reason"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	City         string     `json:"city"`
	Neighborhood string     `json:"neighborhood"`
	ActionTaken  string     `json:"action_taken"`
}

// ImportOrdersRequest payload.
type ImportOrdersRequest struct {
	Orders []OrderRequest `json:"orders"`
}

// OrderResponse representation, including the fields derived at import time.
type OrderResponse struct {
	OrderCode        string     `json:"order_code"`
	ItemCode         string     `json:"item_code,omitempty"`
	ClientCode       string     `json:"client_code"`
	Technician       string     `json:"technician"`
	ServiceType      string     `json:"service_type"`
	SubType          string     `json:"sub_type"`
	Reason           string     `json:"reason"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	City             string     `json:"city"`
	Neighborhood     string     `json:"neighborhood"`
	ActionTaken      string     `json:"action_taken,omitempty"`
	Category         string     `json:"category"`
	AdjustedHours    *float64   `json:"adjusted_hours,omitempty"`
	SLAMet           bool       `json:"sla_met"`
	IncludeInMetrics bool       `json:"include_in_metrics"`
	ImportBatchID    string     `json:"import_batch_id,omitempty"`
}

// ImportBatchResponse summarises an import.
type ImportBatchResponse struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Received    int       `json:"received"`
	Persisted   int       `json:"persisted"`
	Eligible    int       `json:"eligible"`
	Rejected    int       `json:"rejected"`
	ImportedAt  time.Time `json:"imported_at"`
	RowProblems []string  `json:"row_problems,omitempty"`
}
