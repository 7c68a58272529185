package handlers

import (
	"github.com/spec-kit/service-order-metrics/internal/analytics"
	"github.com/spec-kit/service-order-metrics/internal/api/dto"
	"github.com/spec-kit/service-order-metrics/internal/domain"
	"github.com/spec-kit/service-order-metrics/internal/service"
)

func analystResponse(a *domain.Analyst) dto.AnalystResponse {
	return dto.AnalystResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      string(a.Role),
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
	}
}

func orderFromRequest(o dto.OrderRequest) domain.ServiceOrder {
	return domain.ServiceOrder{
		OrderCode:    o.OrderCode,
		ItemCode:     o.ItemCode,
		ClientCode:   o.ClientCode,
		Technician:   o.Technician,
		ServiceType:  o.ServiceType,
		SubType:      o.SubType,
		Reason:       o.Reason,
		Status:       domain.OrderStatus(o.Status),
		CreatedAt:    o.CreatedAt,
		CompletedAt:  o.CompletedAt,
		City:         o.City,
		Neighborhood: o.Neighborhood,
		ActionTaken:  o.ActionTaken,
	}
}

func orderResponse(o *domain.ServiceOrder) dto.OrderResponse {
	return dto.OrderResponse{
		OrderCode:        o.OrderCode,
		ItemCode:         o.ItemCode,
		ClientCode:       o.ClientCode,
		Technician:       o.Technician,
		ServiceType:      o.ServiceType,
		SubType:          o.SubType,
		Reason:           o.Reason,
		Status:           string(o.Status),
		CreatedAt:        o.CreatedAt,
		CompletedAt:      o.CompletedAt,
		City:             o.City,
		Neighborhood:     o.Neighborhood,
		ActionTaken:      o.ActionTaken,
		Category:         string(o.Category),
		AdjustedHours:    o.AdjustedHours,
		SLAMet:           o.SLAMet,
		IncludeInMetrics: o.IncludeInMetrics,
		ImportBatchID:    o.ImportBatchID,
	}
}

func importBatchResponse(b *domain.ImportBatch) dto.ImportBatchResponse {
	return dto.ImportBatchResponse{
		ID:          b.ID,
		Source:      b.Source,
		Received:    b.Received,
		Persisted:   b.Persisted,
		Eligible:    b.Eligible,
		Rejected:    b.Rejected,
		ImportedAt:  b.ImportedAt,
		RowProblems: b.RowProblems,
	}
}

func periodResponse(p service.Period) dto.PeriodResponse {
	return dto.PeriodResponse{From: p.From, To: p.To}
}

func timeMetricsResponse(p service.Period, m domain.TimeMetrics, goals analytics.SLAGoals) dto.TimeMetricsResponse {
	resp := dto.TimeMetricsResponse{
		Period:            periodResponse(p),
		Total:             m.Total,
		WithinGoal:        m.WithinGoal,
		OutsideGoal:       m.OutsideGoal,
		PercentWithinGoal: m.PercentWithinGoal,
		AverageHours:      m.AverageHours,
		ByCategory:        make([]dto.CategoryTimeStatsResponse, 0, len(m.ByCategory)),
	}
	for _, c := range m.ByCategory {
		resp.ByCategory = append(resp.ByCategory, dto.CategoryTimeStatsResponse{
			Category:          string(c.Category),
			GoalHours:         goals.For(c.Category),
			Count:             c.Count,
			WithinGoal:        c.WithinGoal,
			PercentWithinGoal: c.PercentWithinGoal,
			AverageHours:      c.AverageHours,
		})
	}
	return resp
}

func countResponses(entries []domain.CountEntry) []dto.CountResponse {
	out := make([]dto.CountResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.CountResponse{Key: e.Key, Count: e.Count})
	}
	return out
}

func reopeningMetricsResponse(p service.Period, m domain.ReopeningMetrics) dto.ReopeningMetricsResponse {
	resp := dto.ReopeningMetricsResponse{
		Period:              periodResponse(p),
		TotalReopenings:     m.TotalReopenings,
		EligibleOriginals:   m.EligibleOriginals,
		ReopeningRate:       m.ReopeningRate,
		ByTechnician:        countResponses(m.ByTechnician),
		ByTechnicianSegment: make([]dto.TechnicianSegmentResponse, 0, len(m.ByTechnicianSegment)),
		ByFollowUpSubType:   countResponses(m.ByFollowUpSubType),
		ByCity:              countResponses(m.ByCity),
		ByNeighborhood:      countResponses(m.ByNeighborhood),
		ByOriginalType:      make([]dto.OriginalTypeResponse, 0, len(m.ByOriginalType)),
		ByReason:            make([]dto.ReasonResponse, 0, len(m.ByReason)),
	}
	for _, s := range m.ByTechnicianSegment {
		resp.ByTechnicianSegment = append(resp.ByTechnicianSegment, dto.TechnicianSegmentResponse{
			Technician: s.Technician, TV: s.TV, Fiber: s.Fiber, Total: s.Total,
		})
	}
	for _, o := range m.ByOriginalType {
		resp.ByOriginalType = append(resp.ByOriginalType, dto.OriginalTypeResponse{
			SubType: o.SubType, Reopenings: o.Reopenings, Originals: o.Originals, ReopeningRate: o.ReopeningRate,
		})
	}
	for _, r := range m.ByReason {
		resp.ByReason = append(resp.ByReason, dto.ReasonResponse{
			Reason: r.Reason, Total: r.Total, OriginalTypes: countResponses(r.OriginalTypes),
		})
	}
	return resp
}

func pairResponse(p *domain.ReopeningPair) dto.ReopeningPairResponse {
	return dto.ReopeningPairResponse{
		ClientCode:       p.FollowUp.ClientCode,
		Anchor:           orderResponse(&p.Anchor),
		FollowUp:         orderResponse(&p.FollowUp),
		AnchorFinalized:  p.AnchorFinalized,
		ElapsedHours:     p.ElapsedHours,
		ElapsedDays:      p.ElapsedDays,
		AnchorCategory:   string(p.AnchorCategory),
		FollowUpCategory: string(p.FollowUpCategory),
	}
}
