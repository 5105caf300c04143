package controllers

import (
	"context"
	"net/http"

	"github.com/ParzivalXIII/inventory-management-system/api/responses"
	pkgerrors "github.com/ParzivalXIII/inventory-management-system/pkg/errors"
	"github.com/ParzivalXIII/inventory-management-system/pkg/logger"
)

// Pinger is the readiness surface backing dependencies expose.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// HealthReady pings every backing dependency and fails loudly when one is down.
func HealthReady(logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
