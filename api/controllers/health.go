package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/dealerhubhq/dealerhub-backend/api/responses"
	"github.com/dealerhubhq/dealerhub-backend/pkg/logger"
)

// Pinger is anything readiness can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Live reports process liveness only; it must not touch dependencies.
func Live() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// Ready probes every registered dependency and reports per-check status.
// Any failing check turns the response 503 so load balancers stop routing.
func Ready(checks map[string]Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if check == nil {
				results[name] = "not configured"
				continue
			}
			if err := check.Ping(ctx); err != nil {
				logg.Error(logg.WithField(ctx, "check", name), "readiness check failed", err)
				results[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		responses.WriteSuccessStatus(w, status, results)
	}
}
