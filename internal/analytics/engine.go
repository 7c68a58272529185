// Package analytics computes SLA compliance and reopening statistics over a snapshot
// of service orders. Every exported operation is a pure function of its inputs; the
// logger only receives diagnostics about records that were skipped or left unchanged.
package analytics

import (
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/service-order-metrics/internal/calendar"
)

// DefaultDuplicateWindow is the creation-time gap under which two orders for the same
// client and reason are treated as one operational re-entry.
const DefaultDuplicateWindow = 2 * time.Minute

// BusinessCalendar decides which days do not count toward SLA time.
type BusinessCalendar interface {
	IsNonBusinessDay(t time.Time) bool
}

// Options configures an Engine. Zero fields fall back to defaults.
type Options struct {
	Calendar        BusinessCalendar
	Goals           SLAGoals
	DuplicateWindow time.Duration
	Logger          *zap.Logger
}

// Engine bundles the policy knobs shared by the enrichment and reopening stages.
type Engine struct {
	calendar        BusinessCalendar
	goals           SLAGoals
	duplicateWindow time.Duration
	logger          *zap.Logger
}

// NewEngine builds an engine.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		calendar:        opts.Calendar,
		goals:           opts.Goals,
		duplicateWindow: opts.DuplicateWindow,
		logger:          opts.Logger,
	}
	if e.calendar == nil {
		e.calendar = calendar.National
	}
	if e.goals == (SLAGoals{}) {
		e.goals = DefaultSLAGoals
	}
	if e.duplicateWindow <= 0 {
		e.duplicateWindow = DefaultDuplicateWindow
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Goals returns the SLA goals in use.
func (e *Engine) Goals() SLAGoals {
	return e.goals
}
