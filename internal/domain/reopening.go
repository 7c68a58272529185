package domain

import "time"

// ReopeningPair links a finalized visit to the later assistance visit that reopened it.
type ReopeningPair struct {
	Anchor           ServiceOrder
	FollowUp         ServiceOrder
	AnchorFinalized  time.Time
	ElapsedHours     float64
	ElapsedDays      int
	AnchorCategory   Category
	FollowUpCategory Category
}
