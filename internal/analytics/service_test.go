package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/ParzivalXIII/inventory-management-system/pkg/errors"
)

type stubAnalyticsRepo struct {
	sales     []DailySales
	inventory []InventoryLevel
	average   float64
	err       error
}

func (s *stubAnalyticsRepo) SalesTrend(ctx context.Context, orgID uuid.UUID, start, end time.Time) ([]DailySales, error) {
	return s.sales, s.err
}

func (s *stubAnalyticsRepo) InventoryLevels(ctx context.Context, orgID uuid.UUID) ([]InventoryLevel, error) {
	return s.inventory, s.err
}

func (s *stubAnalyticsRepo) AverageOrderTotal(ctx context.Context, orgID uuid.UUID, start, end time.Time) (float64, error) {
	return s.average, s.err
}

func newAnalyticsTestService(t *testing.T, repo *stubAnalyticsRepo) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestSalesTrendZeroFillsMissingDays(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	repo := &stubAnalyticsRepo{sales: []DailySales{
		{Day: "2026-03-01", Total: 10},
		{Day: "2026-03-03", Total: 25.5},
	}}
	svc := newAnalyticsTestService(t, repo)

	chart, err := svc.SalesTrend(context.Background(), uuid.New(), start, end)
	if err != nil {
		t.Fatalf("sales trend: %v", err)
	}

	wantLabels := []string{"2026-03-01", "2026-03-02", "2026-03-03", "2026-03-04"}
	if len(chart.Labels) != len(wantLabels) {
		t.Fatalf("expected %d labels got %d", len(wantLabels), len(chart.Labels))
	}
	for i, label := range wantLabels {
		if chart.Labels[i] != label {
			t.Fatalf("label %d: expected %s got %s", i, label, chart.Labels[i])
		}
	}

	if len(chart.Datasets) != 1 {
		t.Fatalf("expected one dataset got %d", len(chart.Datasets))
	}
	wantData := []float64{10, 0, 25.5, 0}
	for i, want := range wantData {
		if chart.Datasets[0].Data[i] != want {
			t.Fatalf("bucket %d: expected %v got %v", i, want, chart.Datasets[0].Data[i])
		}
	}
}

func TestSalesTrendNormalizesDriverDayFormats(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := &stubAnalyticsRepo{sales: []DailySales{
		{Day: "2026-03-01T00:00:00Z", Total: 7},
	}}
	svc := newAnalyticsTestService(t, repo)

	chart, err := svc.SalesTrend(context.Background(), uuid.New(), day, day)
	if err != nil {
		t.Fatalf("sales trend: %v", err)
	}
	if chart.Datasets[0].Data[0] != 7 {
		t.Fatalf("expected datetime-suffixed day to land in its bucket, got %v", chart.Datasets[0].Data[0])
	}
}

func TestSalesTrendRejectsInvertedRange(t *testing.T) {
	svc := newAnalyticsTestService(t, &stubAnalyticsRepo{})

	start := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	_, err := svc.SalesTrend(context.Background(), uuid.New(), start, start.AddDate(0, 0, -1))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if typed.Message() != "End date must be after start date" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestInventoryMapsProductsToSeries(t *testing.T) {
	repo := &stubAnalyticsRepo{inventory: []InventoryLevel{
		{Name: "widget", Quantity: 4},
		{Name: "gadget", Quantity: 9},
	}}
	svc := newAnalyticsTestService(t, repo)

	chart, err := svc.Inventory(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	if len(chart.Labels) != 2 || chart.Labels[0] != "widget" || chart.Labels[1] != "gadget" {
		t.Fatalf("unexpected labels %v", chart.Labels)
	}
	if chart.Datasets[0].Data[1] != 9 {
		t.Fatalf("expected quantity series, got %v", chart.Datasets[0].Data)
	}
}

func TestAverageSalesWrapsSingleValue(t *testing.T) {
	svc := newAnalyticsTestService(t, &stubAnalyticsRepo{average: 42.5})

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	avg, err := svc.AverageSales(context.Background(), uuid.New(), start, start.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("average sales: %v", err)
	}
	if avg.Label != "avg_sales" || len(avg.Data) != 1 || avg.Data[0] != 42.5 {
		t.Fatalf("unexpected result %+v", avg)
	}
}

func TestAverageSalesRejectsInvertedRange(t *testing.T) {
	svc := newAnalyticsTestService(t, &stubAnalyticsRepo{})

	start := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	_, err := svc.AverageSales(context.Background(), uuid.New(), start, start.AddDate(0, 0, -2))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
