package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/service-order-metrics/internal/domain"
)

const followUpServiceType = "assistencia tecnica"

var anchorSubTypes = []string{
	domain.SubTypePrincipalPoint,
	domain.SubTypePrincipalPointFiber,
	domain.SubTypeCorrective,
	domain.SubTypeCorrectiveFiber,
}

// InReopeningPool reports whether an order takes part in reopening analysis.
func InReopeningPool(o *domain.ServiceOrder) bool {
	return o.IncludeInMetrics || o.IsCancelledCorrective()
}

// IsFollowUpCandidate is true for technical-assistance visits.
func IsFollowUpCandidate(o *domain.ServiceOrder) bool {
	return strings.Contains(foldKey(o.ServiceType), followUpServiceType)
}

// WithinReopeningWindow accepts an anchor finalization and a follow-up creation in the
// same calendar month, or on the last day of a month and the first day of the next.
func WithinReopeningWindow(anchorFinalized, followUpCreated time.Time) bool {
	ay, am, ad := anchorFinalized.Date()
	fy, fm, fd := followUpCreated.Date()
	if ay == fy && am == fm {
		return true
	}
	if ad != daysIn(ay, am) || fd != 1 {
		return false
	}
	if am == time.December {
		return fm == time.January && fy == ay+1
	}
	return fy == ay && fm == am+1
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FindPairs matches the orders of a single client, already passed through Suppress.
// Each technical-assistance visit is paired with the eligible prior visit that was
// finalized most recently. Pairs are returned most recent follow-up first.
func (e *Engine) FindPairs(orders []domain.ServiceOrder) []domain.ReopeningPair {
	pool := make([]domain.ServiceOrder, 0, len(orders))
	for i := range orders {
		if InReopeningPool(&orders[i]) {
			pool = append(pool, orders[i])
		}
	}
	sortByCreation(pool)

	var pairs []domain.ReopeningPair
	for i := range pool {
		followUp := &pool[i]
		if !IsFollowUpCandidate(followUp) {
			continue
		}

		anchorIdx := -1
		var anchorFinalized time.Time
		for j := 0; j < i; j++ {
			finalized, ok := e.anchorFinalization(&pool[j], followUp)
			if !ok {
				continue
			}
			if anchorIdx == -1 || !finalized.Before(anchorFinalized) {
				anchorIdx = j
				anchorFinalized = finalized
			}
		}
		if anchorIdx == -1 {
			continue
		}

		anchor := pool[anchorIdx]
		elapsed := followUp.CreatedAt.Sub(anchorFinalized)
		if elapsed < 0 {
			e.logger.Warn("discarding reopening pair with negative elapsed time",
				zap.String("anchor", anchor.Key()),
				zap.String("follow_up", followUp.Key()),
				zap.Duration("elapsed", elapsed))
			continue
		}
		hours := elapsed.Hours()
		pairs = append(pairs, domain.ReopeningPair{
			Anchor:           anchor,
			FollowUp:         *followUp,
			AnchorFinalized:  anchorFinalized,
			ElapsedHours:     hours,
			ElapsedDays:      int(math.Floor(hours / 24)),
			AnchorCategory:   Classify(anchor.SubType, anchor.Reason),
			FollowUpCategory: Classify(followUp.SubType, followUp.Reason),
		})
	}

	sortPairsDesc(pairs)
	return pairs
}

// anchorFinalization returns the anchor's finalization instant when candidate may
// anchor followUp.
func (e *Engine) anchorFinalization(candidate, followUp *domain.ServiceOrder) (time.Time, bool) {
	if candidate.Key() == followUp.Key() {
		return time.Time{}, false
	}
	if lowerTrim(candidate.ClientCode) != lowerTrim(followUp.ClientCode) {
		return time.Time{}, false
	}
	if !candidate.IsFinalized() || !candidate.HasSubType(anchorSubTypes...) {
		return time.Time{}, false
	}
	finalized, ok := candidate.FinalizedAt()
	if !ok || !finalized.Before(followUp.CreatedAt) {
		return time.Time{}, false
	}
	if !WithinReopeningWindow(finalized, followUp.CreatedAt.In(finalized.Location())) {
		return time.Time{}, false
	}
	return finalized, true
}

// FindAllPairs runs the matcher for every client in the snapshot. Suppression sees every
// order of the client; the reopening pool is applied afterwards by FindPairs.
func (e *Engine) FindAllPairs(orders []domain.ServiceOrder) []domain.ReopeningPair {
	byClient := make(map[string][]domain.ServiceOrder)
	var clients []string
	for i := range orders {
		o := &orders[i]
		client := lowerTrim(o.ClientCode)
		if client == "" {
			e.logger.Debug("skipping order without client code", zap.String("order_code", o.Key()))
			continue
		}
		if _, ok := byClient[client]; !ok {
			clients = append(clients, client)
		}
		byClient[client] = append(byClient[client], *o)
	}

	var pairs []domain.ReopeningPair
	for _, client := range clients {
		pairs = append(pairs, e.FindPairs(e.Suppress(byClient[client]))...)
	}
	sortPairsDesc(pairs)
	return pairs
}

func sortPairsDesc(pairs []domain.ReopeningPair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].FollowUp.CreatedAt.After(pairs[j].FollowUp.CreatedAt)
	})
}
