package middleware

import (
	"net/http"
	"strings"

	"github.com/dealerhubhq/dealerhub-backend/api/responses"
	pkgerrors "github.com/dealerhubhq/dealerhub-backend/pkg/errors"
	"github.com/dealerhubhq/dealerhub-backend/pkg/logger"
)

const userIDHeader = "X-User-Id"

// RequireUser resolves the caller identity from the X-User-Id header. The
// gateway in front of this service authenticates the session and forwards the
// resolved user id; requests without one are rejected.
func RequireUser(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(userIDHeader))
			if userID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user identity"))
				return
			}

			ctx := WithUserID(r.Context(), userID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, userID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
