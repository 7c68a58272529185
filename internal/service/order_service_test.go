package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/service-order-metrics/internal/analytics"
	"github.com/spec-kit/service-order-metrics/internal/domain"
	"github.com/spec-kit/service-order-metrics/internal/events"
	"github.com/spec-kit/service-order-metrics/internal/importer"
	"github.com/spec-kit/service-order-metrics/internal/observability"
	"github.com/spec-kit/service-order-metrics/internal/repository"
	apperrors "github.com/spec-kit/service-order-metrics/pkg/util"
)

func principalOrder(code string) domain.ServiceOrder {
	return domain.ServiceOrder{
		OrderCode:   code,
		ClientCode:  "C1",
		Technician:  "Ana",
		ServiceType: "Instalação",
		SubType:     domain.SubTypePrincipalPoint,
		Status:      domain.StatusFinalizada,
		CreatedAt:   at(2024, 3, 1, 8, 0),
		CompletedAt: ptr(at(2024, 3, 1, 10, 0)),
	}
}

func newOrderService(repo *fakeOrderRepo, dispatcher events.Dispatcher, metrics *observability.Metrics) *OrderService {
	return NewOrderService(OrderDependencies{
		OrderRepo:  repo,
		Engine:     analytics.NewEngine(analytics.Options{}),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Workbook:   importer.Options{Location: brt},
		Logger:     zap.NewNop(),
	})
}

func TestOrderServiceImport(t *testing.T) {
	repo := newFakeOrderRepo()
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	var published []events.OrdersImportedPayload
	dispatcher.Subscribe(events.EventOrdersImported, func(_ context.Context, e events.Event) error {
		published = append(published, e.Payload.(events.OrdersImportedPayload))
		return nil
	})
	metrics := observability.NewMetrics()
	svc := newOrderService(repo, dispatcher, metrics)

	first := principalOrder("A")
	again := principalOrder("A")
	again.Technician = "Bruno"
	missing := principalOrder("")
	unclassified := principalOrder("U")
	unclassified.SubType = "Retirada"

	batch, err := svc.Import(context.Background(), []domain.ServiceOrder{first, missing, again, unclassified}, SourceAPI, "analyst-1")
	require.NoError(t, err)

	assert.NotEmpty(t, batch.ID)
	assert.Equal(t, 4, batch.Received)
	assert.Equal(t, 2, batch.Persisted)
	assert.Equal(t, 1, batch.Eligible)
	assert.Equal(t, 1, batch.Rejected)
	require.Len(t, batch.RowProblems, 1)
	assert.Contains(t, batch.RowProblems[0], "missing order code")

	stored := repo.orders["A"]
	assert.Equal(t, "Bruno", stored.Technician)
	assert.Equal(t, domain.CategoryPrincipalPointTV, stored.Category)
	assert.True(t, stored.IncludeInMetrics)
	require.NotNil(t, stored.AdjustedHours)
	assert.InDelta(t, 2.0, *stored.AdjustedHours, 1e-9)
	assert.Equal(t, batch.ID, stored.ImportBatchID)
	assert.False(t, repo.orders["U"].IncludeInMetrics)

	require.Len(t, published, 1)
	assert.Equal(t, batch.ID, published[0].BatchID)
	assert.Equal(t, int64(2), metrics.Snapshot().ImportedTotal)
}

func TestOrderServiceImportEmpty(t *testing.T) {
	svc := newOrderService(newFakeOrderRepo(), nil, nil)
	_, err := svc.Import(context.Background(), nil, SourceAPI, "")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestOrderServiceImportStorageFailure(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.err = errStorage
	svc := newOrderService(repo, nil, nil)
	_, err := svc.Import(context.Background(), []domain.ServiceOrder{principalOrder("A")}, SourceAPI, "")
	assert.ErrorIs(t, err, errStorage)
}

func TestOrderServiceImportWorkbook(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]any{
		{"Código OS", "Cliente", "Técnico", "Tipo", "Subtipo", "Motivo", "Status", "Data Criação", "Data Finalização"},
		{"A", "C1", "Ana", "Instalação", "Ponto Principal", "Individual", "Finalizada", "01/03/2024 08:00", "01/03/2024 10:00"},
		{"B", "", "Ana", "Instalação", "Ponto Principal", "Individual", "Finalizada", "01/03/2024 08:00", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	repo := newFakeOrderRepo()
	batch, err := newOrderService(repo, nil, nil).ImportWorkbook(context.Background(), bytes.NewReader(buf.Bytes()), "analyst-1")
	require.NoError(t, err)

	assert.Equal(t, SourceWorkbook, batch.Source)
	assert.Equal(t, 2, batch.Received)
	assert.Equal(t, 1, batch.Persisted)
	assert.Equal(t, 1, batch.Rejected)
	assert.Equal(t, at(2024, 3, 1, 8, 0).Unix(), repo.orders["A"].CreatedAt.Unix())
}

func TestOrderServiceImportWorkbookWithoutHeader(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "nada"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = newOrderService(newFakeOrderRepo(), nil, nil).ImportWorkbook(context.Background(), buf, "")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestOrderServiceList(t *testing.T) {
	repo := newFakeOrderRepo(principalOrder("A"))
	svc := newOrderService(repo, nil, nil)

	orders, err := svc.List(context.Background(), repository.OrderFilter{ClientCode: ptr("C1")})
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	from, to := at(2024, 3, 2, 0, 0), at(2024, 3, 1, 0, 0)
	_, err = svc.List(context.Background(), repository.OrderFilter{CreatedFrom: &from, CreatedTo: &to})
	assert.Error(t, err)
}
