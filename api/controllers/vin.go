package controllers

import (
	"context"
	"net/http"

	"github.com/dealerhubhq/dealerhub-backend/api/responses"
	"github.com/dealerhubhq/dealerhub-backend/api/validators"
	"github.com/dealerhubhq/dealerhub-backend/internal/vindecode"
	"github.com/dealerhubhq/dealerhub-backend/pkg/logger"
)

// VINDecoder is satisfied by the vPIC client.
type VINDecoder interface {
	Decode(ctx context.Context, vin string) (*vindecode.Decoded, error)
}

// DecodeVIN looks the posted VIN up and returns the decoded fields together
// with the ready-to-apply wizard patch.
func DecodeVIN(decoder VINDecoder, logg *logger.Logger) http.HandlerFunc {
	type request struct {
		VIN string `json:"vin" validate:"required"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		decoded, err := decoder.Decode(r.Context(), req.VIN)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"decoded": decoded,
			"patch":   decoded.Patch(),
		})
	}
}
