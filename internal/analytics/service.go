package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/ParzivalXIII/inventory-management-system/pkg/errors"
)

const dayFormat = "2006-01-02"

type repository interface {
	SalesTrend(ctx context.Context, orgID uuid.UUID, start, end time.Time) ([]DailySales, error)
	InventoryLevels(ctx context.Context, orgID uuid.UUID) ([]InventoryLevel, error)
	AverageOrderTotal(ctx context.Context, orgID uuid.UUID, start, end time.Time) (float64, error)
}

// Service exposes the dashboard chart queries.
type Service interface {
	SalesTrend(ctx context.Context, orgID uuid.UUID, start, end time.Time) (*ChartData, error)
	Inventory(ctx context.Context, orgID uuid.UUID) (*ChartData, error)
	AverageSales(ctx context.Context, orgID uuid.UUID, start, end time.Time) (*AverageSales, error)
}

type service struct {
	repo repository
}

// NewService builds an analytics service over the provided repository.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	return &service{repo: repo}, nil
}

// SalesTrend returns one bucket per calendar day from start to end inclusive,
// zero-filled where no orders landed.
func (s *service) SalesTrend(ctx context.Context, orgID uuid.UUID, start, end time.Time) (*ChartData, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	rows, err := s.repo.SalesTrend(ctx, orgID, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sales trend query")
	}

	totals := make(map[string]float64, len(rows))
	for _, row := range rows {
		totals[normalizeDay(row.Day)] = row.Total
	}

	startDay := start.UTC().Truncate(24 * time.Hour)
	endDay := end.UTC().Truncate(24 * time.Hour)

	var labels []string
	var data []float64
	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		label := day.Format(dayFormat)
		labels = append(labels, label)
		data = append(data, totals[label])
	}

	return &ChartData{
		Labels:   labels,
		Datasets: []Dataset{{Label: "sales", Data: data}},
	}, nil
}

// Inventory returns product names and quantities as one chart series.
func (s *service) Inventory(ctx context.Context, orgID uuid.UUID) (*ChartData, error) {
	rows, err := s.repo.InventoryLevels(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "inventory query")
	}

	labels := make([]string, 0, len(rows))
	data := make([]float64, 0, len(rows))
	for _, row := range rows {
		labels = append(labels, row.Name)
		data = append(data, float64(row.Quantity))
	}

	return &ChartData{
		Labels:   labels,
		Datasets: []Dataset{{Label: "inventory", Data: data}},
	}, nil
}

func (s *service) AverageSales(ctx context.Context, orgID uuid.UUID, start, end time.Time) (*AverageSales, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	avg, err := s.repo.AverageOrderTotal(ctx, orgID, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "average sales query")
	}

	return &AverageSales{Label: "avg_sales", Data: []float64{avg}}, nil
}

func validateRange(start, end time.Time) error {
	if end.Before(start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "End date must be after start date")
	}
	return nil
}

// normalizeDay trims driver-dependent suffixes so both Postgres dates and
// SQLite datetime strings key the same bucket.
func normalizeDay(day string) string {
	if len(day) >= len(dayFormat) {
		return day[:len(dayFormat)]
	}
	return day
}
