package controllers

import (
	"net/http"

	"github.com/dealerhubhq/dealerhub-backend/api/responses"
	"github.com/dealerhubhq/dealerhub-backend/api/validators"
	"github.com/dealerhubhq/dealerhub-backend/internal/finance"
	"github.com/dealerhubhq/dealerhub-backend/internal/wizard"
	"github.com/dealerhubhq/dealerhub-backend/pkg/logger"
)

// DealQuote recomputes totals and loan figures for the posted draft. Pure
// calculation; nothing is persisted, so the pricing panel can call it on
// every keystroke.
func DealQuote(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft wizard.DealFormData
		if err := validators.DecodeJSONBody(r, &draft); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, finance.ComputeQuote(draft))
	}
}
