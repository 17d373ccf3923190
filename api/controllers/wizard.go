package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/dealerhubhq/dealerhub-backend/api/middleware"
	"github.com/dealerhubhq/dealerhub-backend/api/responses"
	"github.com/dealerhubhq/dealerhub-backend/api/validators"
	"github.com/dealerhubhq/dealerhub-backend/internal/wizard"
	pkgerrors "github.com/dealerhubhq/dealerhub-backend/pkg/errors"
	"github.com/dealerhubhq/dealerhub-backend/pkg/logger"
)

// maxWizardBodyBytes bounds field patches; drafts are small.
const maxWizardBodyBytes = 1 << 20

// WizardState returns the caller's current draft, step and field errors,
// restoring a persisted draft when the session is cold.
func WizardState[D any](mgr *wizard.Manager[D], logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := mgr.State(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// WizardApplyField merges a single-field patch into the draft and clears the
// field's validation error. The body is the raw patch object.
func WizardApplyField[D any](mgr *wizard.Manager[D], logg *logger.Logger) http.HandlerFunc {
	return patchHandler(mgr.ApplyField, logg)
}

// WizardApplyBatch merges a multi-field patch without touching field errors;
// VIN prefill and draft import use it.
func WizardApplyBatch[D any](mgr *wizard.Manager[D], logg *logger.Logger) http.HandlerFunc {
	return patchHandler(mgr.ApplyBatch, logg)
}

func patchHandler[D any](apply func(context.Context, string, json.RawMessage) (wizard.State[D], error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxWizardBodyBytes))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
			return
		}
		state, err := apply(r.Context(), middleware.UserIDFromContext(r.Context()), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// WizardAdvance validates the current step and moves forward when it is
// clean. The response always carries the resulting step and field errors.
func WizardAdvance[D any](mgr *wizard.Manager[D], logg *logger.Logger) http.HandlerFunc {
	return stepHandler(mgr.Advance, logg)
}

// WizardBack moves one step back without validating.
func WizardBack[D any](mgr *wizard.Manager[D], logg *logger.Logger) http.HandlerFunc {
	return stepHandler(mgr.Back, logg)
}

func stepHandler[D any](move func(context.Context, string) (wizard.State[D], error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := move(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// WizardGoTo jumps to the requested step, clamped to the wizard's range.
func WizardGoTo[D any](mgr *wizard.Manager[D], logg *logger.Logger) http.HandlerFunc {
	type request struct {
		Step int `json:"step" validate:"required,min=1"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state, err := mgr.GoTo(r.Context(), middleware.UserIDFromContext(r.Context()), req.Step)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// WizardSubmit finalizes the draft through the provided submit function. On
// success the draft is cleared and a fresh seeded state returned alongside
// the created record.
func WizardSubmit[D, R any](mgr *wizard.Manager[D], submit func(context.Context, D) (R, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var created R
		state, err := mgr.Submit(r.Context(), middleware.UserIDFromContext(r.Context()), func(ctx context.Context, draft D) error {
			record, submitErr := submit(ctx, draft)
			if submitErr != nil {
				return submitErr
			}
			created = record
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"created": created,
			"wizard":  state,
		})
	}
}

// WizardReset discards the draft and reseeds the wizard.
func WizardReset[D any](mgr *wizard.Manager[D], logg *logger.Logger) http.HandlerFunc {
	return stepHandler(mgr.Reset, logg)
}
