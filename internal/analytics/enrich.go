package analytics

import (
	"go.uber.org/zap"

	"github.com/spec-kit/service-order-metrics/internal/domain"
)

// Enrich derives category, adjusted hours, SLA flag and metrics eligibility for one
// order. The input is not modified.
func (e *Engine) Enrich(order domain.ServiceOrder) domain.ServiceOrder {
	out := order
	out.Category = Classify(order.SubType, order.Reason)
	out.AdjustedHours = nil
	out.SLAMet = false
	out.IncludeInMetrics = false

	log := e.logger.With(zap.String("order_code", order.Key()), zap.String("client_code", order.ClientCode))

	if order.CreatedAt.IsZero() {
		log.Warn("enrich: missing creation timestamp, order excluded from metrics")
		return out
	}

	if order.CompletedAt == nil {
		if order.IsCancelledCorrective() {
			completed := order.CreatedAt
			zero := 0.0
			out.CompletedAt = &completed
			out.AdjustedHours = &zero
			out.SLAMet = true
			return out
		}
		log.Debug("enrich: no completion timestamp, order excluded from metrics")
		return out
	}

	completed := *order.CompletedAt
	if completed.Before(order.CreatedAt) {
		log.Warn("enrich: completion precedes creation, order excluded from metrics",
			zap.Time("created_at", order.CreatedAt), zap.Time("completed_at", completed))
		return out
	}

	raw := completed.Sub(order.CreatedAt).Hours()
	adjusted := e.AdjustedHours(raw, order.CreatedAt, completed, out.Category)
	out.AdjustedHours = &adjusted
	out.SLAMet = e.MeetsSLA(adjusted, out.Category)
	out.IncludeInMetrics = out.Category != domain.CategoryUnclassified
	return out
}

// EnrichAll enriches a batch, returning a new slice.
func (e *Engine) EnrichAll(orders []domain.ServiceOrder) []domain.ServiceOrder {
	out := make([]domain.ServiceOrder, len(orders))
	for i := range orders {
		out[i] = e.Enrich(orders[i])
	}
	return out
}
