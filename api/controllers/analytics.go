package controllers

import (
	"net/http"
	"time"

	"github.com/ParzivalXIII/inventory-management-system/api/responses"
	"github.com/ParzivalXIII/inventory-management-system/api/validators"
	analyticssvc "github.com/ParzivalXIII/inventory-management-system/internal/analytics"
	pkgerrors "github.com/ParzivalXIII/inventory-management-system/pkg/errors"
	"github.com/ParzivalXIII/inventory-management-system/pkg/logger"
)

func dateRange(r *http.Request) (time.Time, time.Time, error) {
	start, err := validators.ParseQueryDate(r, "start")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := validators.ParseQueryDate(r, "end")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if start == nil || end == nil {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "start and end are required")
	}
	return *start, *end, nil
}

// SalesTrend returns the zero-filled daily sales chart for the range.
func SalesTrend(svc analyticssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		_, orgID, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start, end, err := dateRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		chart, err := svc.SalesTrend(r.Context(), orgID, start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, chart)
	}
}

// Inventory returns product quantities as a chart series.
func Inventory(svc analyticssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		_, orgID, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		chart, err := svc.Inventory(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, chart)
	}
}

// AverageSales returns the average order total for the range.
func AverageSales(svc analyticssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		_, orgID, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start, end, err := dateRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AverageSales(r.Context(), orgID, start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
