package controllers

import (
	"context"
	"net/http"

	"github.com/dealerhubhq/dealerhub-backend/api/middleware"
	"github.com/dealerhubhq/dealerhub-backend/api/responses"
	"github.com/dealerhubhq/dealerhub-backend/api/validators"
	"github.com/dealerhubhq/dealerhub-backend/internal/media"
	"github.com/dealerhubhq/dealerhub-backend/pkg/logger"
)

// DraftImageCounter reports how many images the owner's vehicle draft
// already holds, so presign grants cannot push a draft past the cap.
type DraftImageCounter func(ctx context.Context, ownerID string) (int, error)

// PresignMedia hands out signed upload URLs for draft images. The route sits
// behind the idempotency middleware so a retried batch returns the original
// grants instead of minting new object names.
func PresignMedia(svc *media.Service, countImages DraftImageCounter, logg *logger.Logger) http.HandlerFunc {
	type request struct {
		Files []media.FileSpec `json:"files" validate:"required,dive"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ownerID := middleware.UserIDFromContext(r.Context())
		used, err := countImages(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		results, err := svc.Presign(ownerID, used, req.Files)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"uploads": results})
	}
}
