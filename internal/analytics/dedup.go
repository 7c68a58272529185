package analytics

import (
	"sort"

	"go.uber.org/zap"

	"github.com/spec-kit/service-order-metrics/internal/domain"
)

// Suppress collapses near-simultaneous re-entries of the same client and reason. Within
// each (client, reason) group sorted by creation, when two adjacent orders are at most the
// duplicate window apart the earlier one is dropped and scanning resumes after the pair.
// The result is sorted by creation time.
func (e *Engine) Suppress(orders []domain.ServiceOrder) []domain.ServiceOrder {
	type groupKey struct{ client, reason string }

	groups := make(map[groupKey][]domain.ServiceOrder)
	var keys []groupKey
	for _, o := range orders {
		k := groupKey{client: lowerTrim(o.ClientCode), reason: lowerTrim(o.Reason)}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], o)
	}

	out := make([]domain.ServiceOrder, 0, len(orders))
	for _, k := range keys {
		group := groups[k]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		sortByCreation(group)

		i := 0
		for i < len(group) {
			if i+1 < len(group) && group[i+1].CreatedAt.Sub(group[i].CreatedAt) <= e.duplicateWindow {
				e.logger.Debug("suppressed duplicate order",
					zap.String("discarded", group[i].Key()),
					zap.String("kept", group[i+1].Key()),
					zap.String("client_code", group[i].ClientCode))
				out = append(out, group[i+1])
				i += 2
				continue
			}
			out = append(out, group[i])
			i++
		}
	}

	sortByCreation(out)
	return out
}

func sortByCreation(orders []domain.ServiceOrder) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
}
