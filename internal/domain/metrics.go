package domain

// CategoryTimeStats is the per-category slice of TimeMetrics.
type CategoryTimeStats struct {
	Category          Category
	Count             int
	WithinGoal        int
	PercentWithinGoal float64
	AverageHours      float64
}

// TimeMetrics summarises SLA compliance over adjusted elapsed hours.
type TimeMetrics struct {
	Total             int
	WithinGoal        int
	OutsideGoal       int
	PercentWithinGoal float64
	AverageHours      float64
	ByCategory        []CategoryTimeStats
}

// CountEntry is a generic key/count breakdown row.
type CountEntry struct {
	Key   string
	Count int
}

// TechnicianSegmentEntry splits a technician's reopenings by product line.
type TechnicianSegmentEntry struct {
	Technician string
	TV         int
	Fiber      int
	Total      int
}

// OriginalTypeEntry reports reopenings against the originals of one sub-type.
type OriginalTypeEntry struct {
	SubType       string
	Reopenings    int
	Originals     int
	ReopeningRate float64
}

// ReasonEntry nests original sub-type counts under a follow-up reason.
type ReasonEntry struct {
	Reason        string
	Total         int
	OriginalTypes []CountEntry
}

// ReopeningMetrics summarises detected reopenings.
type ReopeningMetrics struct {
	TotalReopenings     int
	EligibleOriginals   int
	ReopeningRate       float64
	ByTechnician        []CountEntry
	ByTechnicianSegment []TechnicianSegmentEntry
	ByFollowUpSubType   []CountEntry
	ByCity              []CountEntry
	ByNeighborhood      []CountEntry
	ByOriginalType      []OriginalTypeEntry
	ByReason            []ReasonEntry
}
