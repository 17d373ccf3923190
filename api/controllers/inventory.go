package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dealerhubhq/dealerhub-backend/api/responses"
	"github.com/dealerhubhq/dealerhub-backend/internal/deals"
	"github.com/dealerhubhq/dealerhub-backend/internal/vehicles"
	"github.com/dealerhubhq/dealerhub-backend/pkg/enums"
	pkgerrors "github.com/dealerhubhq/dealerhub-backend/pkg/errors"
	"github.com/dealerhubhq/dealerhub-backend/pkg/logger"
)

// GetVehicle returns a single inventory record by id.
func GetVehicle(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id must be a valid id"))
			return
		}
		vehicle, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vehicle)
	}
}

// ListVehicles returns inventory newest-first, optionally filtered by status.
func ListVehicles(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := pagination(r)
		out, err := svc.List(r.Context(), enums.VehicleStatus(r.URL.Query().Get("status")), limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"vehicles": out})
	}
}

// GetDeal returns a single deal by id.
func GetDeal(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "deal id must be a valid id"))
			return
		}
		deal, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deal)
	}
}

// ListDeals returns deals newest-first, optionally filtered by status.
func ListDeals(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := pagination(r)
		out, err := svc.List(r.Context(), enums.DealStatus(r.URL.Query().Get("status")), limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deals": out})
	}
}

func pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
