package domain

import (
	"strings"
	"time"
)

// OrderStatus is the free-text status column as exported by the field-service system.
type OrderStatus string

const (
	StatusFinalizada OrderStatus = "Finalizada"
	StatusFinalizado OrderStatus = "Finalizado"
	StatusExecutada  OrderStatus = "Executada"
	StatusExecutado  OrderStatus = "Executado"
	StatusCancelada  OrderStatus = "Cancelada"
)

var completionStatuses = map[string]struct{}{
	"finalizada": {},
	"finalizado": {},
	"executada":  {},
	"executado":  {},
}

// Sub-types recognised by the SLA and reopening rules.
const (
	SubTypePrincipalPoint      = "Ponto Principal"
	SubTypePrincipalPointFiber = "Ponto Principal BL"
	SubTypeCorrective          = "Corretiva"
	SubTypeCorrectiveFiber     = "Corretiva BL"
)

// ServiceOrder is one field-visit record plus the attributes derived at import time.
type ServiceOrder struct {
	OrderCode    string
	ItemCode     string
	ClientCode   string
	Technician   string
	ServiceType  string
	SubType      string
	Reason       string
	Status       OrderStatus
	CreatedAt    time.Time
	CompletedAt  *time.Time
	City         string
	Neighborhood string
	ActionTaken  string

	Category         Category
	AdjustedHours    *float64
	SLAMet           bool
	IncludeInMetrics bool

	ImportBatchID string
	ImportedAt    time.Time
}

// Key identifies an order within one import; multi-item orders share the order code.
func (o *ServiceOrder) Key() string {
	if o.ItemCode == "" {
		return o.OrderCode
	}
	return o.OrderCode + "/" + o.ItemCode
}

// IsCancelled reports whether the order was cancelled.
func (o *ServiceOrder) IsCancelled() bool {
	return strings.EqualFold(strings.TrimSpace(string(o.Status)), string(StatusCancelada))
}

// IsCompleted reports whether the status is one of the completion statuses.
func (o *ServiceOrder) IsCompleted() bool {
	_, ok := completionStatuses[strings.ToLower(strings.TrimSpace(string(o.Status)))]
	return ok
}

// IsFinalized is true for completed or cancelled orders.
func (o *ServiceOrder) IsFinalized() bool {
	return o.IsCancelled() || o.IsCompleted()
}

// FinalizedAt returns the completion instant, falling back to creation for cancelled
// orders that never received one.
func (o *ServiceOrder) FinalizedAt() (time.Time, bool) {
	if o.CompletedAt != nil {
		return *o.CompletedAt, true
	}
	if o.IsCancelled() {
		return o.CreatedAt, true
	}
	return time.Time{}, false
}

// HasSubType compares the sub-type ignoring case and surrounding whitespace.
func (o *ServiceOrder) HasSubType(subTypes ...string) bool {
	current := strings.TrimSpace(o.SubType)
	for _, st := range subTypes {
		if strings.EqualFold(current, st) {
			return true
		}
	}
	return false
}

// IsCancelledCorrective marks cancelled corrective visits, which count for reopening
// analysis even though they never enter SLA statistics.
func (o *ServiceOrder) IsCancelledCorrective() bool {
	return o.IsCancelled() && o.HasSubType(SubTypeCorrective, SubTypeCorrectiveFiber)
}
