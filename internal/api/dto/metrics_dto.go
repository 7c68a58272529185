package dto

import "time"

// PeriodResponse echoes the analysed window.
type PeriodResponse struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// CategoryTimeStatsResponse representation.
type CategoryTimeStatsResponse struct {
	Category          string  `json:"category"`
	GoalHours         float64 `json:"goal_hours"`
	Count             int     `json:"count"`
	WithinGoal        int     `json:"within_goal"`
	PercentWithinGoal float64 `json:"percent_within_goal"`
	AverageHours      float64 `json:"average_hours"`
}

// TimeMetricsResponse representation.
type TimeMetricsResponse struct {
	Period            PeriodResponse              `json:"period"`
	Total             int                         `json:"total"`
	WithinGoal        int                         `json:"within_goal"`
	OutsideGoal       int                         `json:"outside_goal"`
	PercentWithinGoal float64                     `json:"percent_within_goal"`
	AverageHours      float64                     `json:"average_hours"`
	ByCategory        []CategoryTimeStatsResponse `json:"by_category"`
}

// CountResponse is a key/count breakdown row.
type CountResponse struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// TechnicianSegmentResponse representation.
type TechnicianSegmentResponse struct {
	Technician string `json:"technician"`
	TV         int    `json:"tv"`
	Fiber      int    `json:"fiber"`
	Total      int    `json:"total"`
}

// OriginalTypeResponse representation.
type OriginalTypeResponse struct {
	SubType       string  `json:"sub_type"`
	Reopenings    int     `json:"reopenings"`
	Originals     int     `json:"originals"`
	ReopeningRate float64 `json:"reopening_rate"`
}

// ReasonResponse representation.
type ReasonResponse struct {
	Reason        string          `json:"reason"`
	Total         int             `json:"total"`
	OriginalTypes []CountResponse `json:"original_types"`
}

// ReopeningMetricsResponse representation.
type ReopeningMetricsResponse struct {
	Period              PeriodResponse              `json:"period"`
	TotalReopenings     int                         `json:"total_reopenings"`
	EligibleOriginals   int                         `json:"eligible_originals"`
	ReopeningRate       float64                     `json:"reopening_rate"`
	ByTechnician        []CountResponse             `json:"by_technician"`
	ByTechnicianSegment []TechnicianSegmentResponse `json:"by_technician_segment"`
	ByFollowUpSubType   []CountResponse             `json:"by_follow_up_sub_type"`
	ByCity              []CountResponse             `json:"by_city"`
	ByNeighborhood      []CountResponse             `json:"by_neighborhood"`
	ByOriginalType      []OriginalTypeResponse      `json:"by_original_type"`
	ByReason            []ReasonResponse            `json:"by_reason"`
}

// ReopeningPairResponse representation.
type ReopeningPairResponse struct {
	ClientCode       string        `json:"client_code"`
	Anchor           OrderResponse `json:"anchor"`
	FollowUp         OrderResponse `json:"follow_up"`
	AnchorFinalized  time.Time     `json:"anchor_finalized_at"`
	ElapsedHours     float64       `json:"elapsed_hours"`
	ElapsedDays      int           `json:"elapsed_days"`
	AnchorCategory   string        `json:"anchor_category"`
	FollowUpCategory string        `json:"follow_up_category"`
}
