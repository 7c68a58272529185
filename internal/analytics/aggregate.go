package analytics

import (
	"sort"
	"strings"

	"github.com/spec-kit/service-order-metrics/internal/domain"
)

var categoryOrder = []domain.Category{
	domain.CategoryPrincipalPointTV,
	domain.CategoryPrincipalPointFiber,
	domain.CategoryTechAssistanceTV,
	domain.CategoryTechAssistanceFiber,
}

// CalculateTimeMetrics summarises SLA compliance over orders included in metrics.
func (e *Engine) CalculateTimeMetrics(orders []domain.ServiceOrder) domain.TimeMetrics {
	var result domain.TimeMetrics
	var sum float64
	byCategory := make(map[domain.Category]*domain.CategoryTimeStats)

	for i := range orders {
		o := &orders[i]
		if !o.IncludeInMetrics || o.AdjustedHours == nil {
			continue
		}
		hours := *o.AdjustedHours
		result.Total++
		sum += hours
		if o.SLAMet {
			result.WithinGoal++
		}

		if o.Category == domain.CategoryUnclassified {
			continue
		}
		stats, ok := byCategory[o.Category]
		if !ok {
			stats = &domain.CategoryTimeStats{Category: o.Category}
			byCategory[o.Category] = stats
		}
		stats.Count++
		if o.SLAMet {
			stats.WithinGoal++
		}
		n := float64(stats.Count)
		stats.AverageHours = (stats.AverageHours*(n-1) + hours) / n
	}

	result.OutsideGoal = result.Total - result.WithinGoal
	result.PercentWithinGoal = percent(result.WithinGoal, result.Total)
	if result.Total > 0 {
		result.AverageHours = sum / float64(result.Total)
	}

	for _, c := range categoryOrder {
		stats, ok := byCategory[c]
		if !ok {
			continue
		}
		stats.PercentWithinGoal = percent(stats.WithinGoal, stats.Count)
		result.ByCategory = append(result.ByCategory, *stats)
	}
	return result
}

// IsEligibleOriginal reports orders counted in the reopening-rate denominator.
func IsEligibleOriginal(o *domain.ServiceOrder) bool {
	return o.IncludeInMetrics && !o.IsCancelled() && o.HasSubType(anchorSubTypes...)
}

// CalculateReopeningMetrics runs the matcher over the snapshot and breaks the pairs down.
// Technician attribution uses the anchor's technician.
func (e *Engine) CalculateReopeningMetrics(orders []domain.ServiceOrder) domain.ReopeningMetrics {
	pairs := e.FindAllPairs(orders)
	return e.SummarizeReopenings(orders, pairs)
}

// SummarizeReopenings builds the breakdowns from already matched pairs.
func (e *Engine) SummarizeReopenings(orders []domain.ServiceOrder, pairs []domain.ReopeningPair) domain.ReopeningMetrics {
	originalsByType := newCounter()
	eligible := 0
	for i := range orders {
		if IsEligibleOriginal(&orders[i]) {
			eligible++
			originalsByType.add(canonicalSubType(orders[i].SubType))
		}
	}

	technicians := newCounter()
	followUpTypes := newCounter()
	cities := newCounter()
	neighborhoods := newCounter()
	reopenedByType := newCounter()
	segments := make(map[string]*domain.TechnicianSegmentEntry)
	var segmentOrder []string
	reasons := make(map[string]*counter)
	var reasonOrder []string

	for _, p := range pairs {
		tech := displayOrUnknown(p.Anchor.Technician)
		technicians.add(tech)
		followUpTypes.add(displayOrUnknown(p.FollowUp.SubType))
		cities.add(NormalizeLocation(p.FollowUp.City))
		neighborhoods.add(NormalizeLocation(p.FollowUp.Neighborhood))

		originalType := canonicalSubType(p.Anchor.SubType)
		reopenedByType.add(originalType)

		seg, ok := segments[tech]
		if !ok {
			seg = &domain.TechnicianSegmentEntry{Technician: tech}
			segments[tech] = seg
			segmentOrder = append(segmentOrder, tech)
		}
		if p.AnchorCategory.Segment() == domain.SegmentFiber {
			seg.Fiber++
		} else {
			seg.TV++
		}
		seg.Total++

		reason := displayOrUnknown(p.FollowUp.Reason)
		rc, ok := reasons[reason]
		if !ok {
			rc = newCounter()
			reasons[reason] = rc
			reasonOrder = append(reasonOrder, reason)
		}
		rc.add(originalType)
	}

	result := domain.ReopeningMetrics{
		TotalReopenings:   len(pairs),
		EligibleOriginals: eligible,
		ReopeningRate:     percent(len(pairs), eligible),
		ByTechnician:      technicians.entries(),
		ByFollowUpSubType: followUpTypes.entries(),
		ByCity:            cities.entries(),
		ByNeighborhood:    neighborhoods.entries(),
	}

	for _, tech := range segmentOrder {
		result.ByTechnicianSegment = append(result.ByTechnicianSegment, *segments[tech])
	}
	sort.SliceStable(result.ByTechnicianSegment, func(i, j int) bool {
		a, b := result.ByTechnicianSegment[i], result.ByTechnicianSegment[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Technician < b.Technician
	})

	result.ByOriginalType = originalTypeEntries(originalsByType, reopenedByType)

	for _, reason := range reasonOrder {
		rc := reasons[reason]
		result.ByReason = append(result.ByReason, domain.ReasonEntry{
			Reason:        reason,
			Total:         rc.total,
			OriginalTypes: rc.entries(),
		})
	}
	sort.SliceStable(result.ByReason, func(i, j int) bool {
		a, b := result.ByReason[i], result.ByReason[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Reason < b.Reason
	})

	return result
}

// originalTypeEntries lists every sub-type that had originals or reopenings, so types
// without reopenings show up with a zero rate.
func originalTypeEntries(originals, reopened *counter) []domain.OriginalTypeEntry {
	keys := make(map[string]struct{}, len(originals.counts)+len(reopened.counts))
	for k := range originals.counts {
		keys[k] = struct{}{}
	}
	for k := range reopened.counts {
		keys[k] = struct{}{}
	}

	out := make([]domain.OriginalTypeEntry, 0, len(keys))
	for k := range keys {
		n, total := reopened.counts[k], originals.counts[k]
		out = append(out, domain.OriginalTypeEntry{
			SubType:       k,
			Reopenings:    n,
			Originals:     total,
			ReopeningRate: percent(n, total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Reopenings != out[j].Reopenings {
			return out[i].Reopenings > out[j].Reopenings
		}
		return out[i].SubType < out[j].SubType
	})
	return out
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// canonicalSubType folds case variants of the known sub-types onto their display form.
func canonicalSubType(subType string) string {
	trimmed := strings.TrimSpace(subType)
	for _, known := range anchorSubTypes {
		if strings.EqualFold(trimmed, known) {
			return known
		}
	}
	return displayOrUnknown(trimmed)
}

func displayOrUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return NotInformed
	}
	return s
}

type counter struct {
	counts map[string]int
	total  int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	c.counts[key]++
	c.total++
}

func (c *counter) entries() []domain.CountEntry {
	out := make([]domain.CountEntry, 0, len(c.counts))
	for k, v := range c.counts {
		out = append(out, domain.CountEntry{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}
