package analytics

import (
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/service-order-metrics/internal/domain"
)

// SLAGoals holds the maximum adjusted hours per category family.
type SLAGoals struct {
	PrincipalPoint float64
	TechAssistance float64
	Default        float64
}

// DefaultSLAGoals are 62h59m for installations, 38h59m for repairs and 48h otherwise.
var DefaultSLAGoals = SLAGoals{
	PrincipalPoint: 62 + 59.0/60,
	TechAssistance: 38 + 59.0/60,
	Default:        48,
}

// For returns the goal for the category.
func (g SLAGoals) For(category domain.Category) float64 {
	switch {
	case category.IsPrincipalPoint():
		return g.PrincipalPoint
	case category.IsTechAssistance():
		return g.TechAssistance
	default:
		return g.Default
	}
}

// SLAGoalHours returns the default goal for the category.
func SLAGoalHours(category domain.Category) float64 {
	return DefaultSLAGoals.For(category)
}

// SLAGoalHours returns the engine's goal for the category.
func (e *Engine) SLAGoalHours(category domain.Category) float64 {
	return e.goals.For(category)
}

// MeetsSLA compares adjusted hours against the category goal.
func (e *Engine) MeetsSLA(adjustedHours float64, category domain.Category) bool {
	return adjustedHours <= e.goals.For(category)
}

// AdjustedHours removes non-business time between creation and completion from
// rawHours. Fiber repairs run on a continuous clock and are returned unchanged. Inverted
// or zero timestamps return rawHours untouched; the result is never negative.
func (e *Engine) AdjustedHours(rawHours float64, creation, completion time.Time, category domain.Category) float64 {
	if category == domain.CategoryTechAssistanceFiber {
		return rawHours
	}
	if creation.IsZero() || completion.IsZero() {
		e.logger.Warn("adjusted hours: missing timestamp, keeping raw value",
			zap.Time("created_at", creation), zap.Time("completed_at", completion))
		return rawHours
	}
	if completion.Before(creation) {
		e.logger.Warn("adjusted hours: completion precedes creation, keeping raw value",
			zap.Time("created_at", creation), zap.Time("completed_at", completion))
		return rawHours
	}

	completion = completion.In(creation.Location())
	startDay := startOfDay(creation)
	endDay := startOfDay(completion)

	var excluded time.Duration
	if !startDay.Equal(endDay) {
		for day := startDay.AddDate(0, 0, 1); day.Before(endDay); day = day.AddDate(0, 0, 1) {
			if e.calendar.IsNonBusinessDay(day) {
				excluded += 24 * time.Hour
			}
		}
		if e.calendar.IsNonBusinessDay(creation) {
			excluded += startDay.AddDate(0, 0, 1).Sub(creation)
		}
		if e.calendar.IsNonBusinessDay(completion) {
			excluded += completion.Sub(endDay)
		}
	}

	adjusted := rawHours - excluded.Hours()
	if adjusted < 0 {
		return 0
	}
	return adjusted
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
