package analytics

import (
	"time"

	"github.com/spec-kit/service-order-metrics/internal/domain"
)

var brt = time.FixedZone("BRT", -3*60*60)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, brt)
}

func ptr(t time.Time) *time.Time { return &t }

func newTestEngine() *Engine {
	return NewEngine(Options{})
}

type orderOpt func(*domain.ServiceOrder)

func withCompleted(t time.Time) orderOpt {
	return func(o *domain.ServiceOrder) { o.CompletedAt = ptr(t) }
}

func withStatus(s domain.OrderStatus) orderOpt {
	return func(o *domain.ServiceOrder) { o.Status = s }
}

func withServiceType(s string) orderOpt {
	return func(o *domain.ServiceOrder) { o.ServiceType = s }
}

func withReason(r string) orderOpt {
	return func(o *domain.ServiceOrder) { o.Reason = r }
}

func withTechnician(name string) orderOpt {
	return func(o *domain.ServiceOrder) { o.Technician = name }
}

func withLocation(city, neighborhood string) orderOpt {
	return func(o *domain.ServiceOrder) {
		o.City = city
		o.Neighborhood = neighborhood
	}
}

func withClient(c string) orderOpt {
	return func(o *domain.ServiceOrder) { o.ClientCode = c }
}

// order builds an enriched order for client C1.
func order(e *Engine, code, subType string, created time.Time, opts ...orderOpt) domain.ServiceOrder {
	o := domain.ServiceOrder{
		OrderCode:   code,
		ClientCode:  "C1",
		Technician:  "Ana",
		ServiceType: "Instalação",
		SubType:     subType,
		Reason:      "Padrão",
		Status:      domain.StatusFinalizada,
		CreatedAt:   created,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return e.Enrich(o)
}
