// Package routes assembles the HTTP surface: middleware chain, wizard and
// inventory endpoints, health probes and the metrics scrape handler.
package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dealerhubhq/dealerhub-backend/api/controllers"
	"github.com/dealerhubhq/dealerhub-backend/api/middleware"
	"github.com/dealerhubhq/dealerhub-backend/internal/deals"
	"github.com/dealerhubhq/dealerhub-backend/internal/media"
	"github.com/dealerhubhq/dealerhub-backend/internal/vehicles"
	"github.com/dealerhubhq/dealerhub-backend/internal/wizard"
	"github.com/dealerhubhq/dealerhub-backend/pkg/logger"
	"github.com/dealerhubhq/dealerhub-backend/pkg/metrics"
	pkgredis "github.com/dealerhubhq/dealerhub-backend/pkg/redis"
)

// Dependencies carries everything the router mounts. Optional entries (nil
// media service, nil VIN decoder) leave their routes unmounted rather than
// serving errors.
type Dependencies struct {
	Logger      *logger.Logger
	HTTPMetrics *metrics.HTTPMetrics
	Registry    *prometheus.Registry
	Idempotency pkgredis.IdempotencyStore

	VehicleWizard *wizard.Manager[wizard.VehicleFormData]
	DealWizard    *wizard.Manager[wizard.DealFormData]

	Vehicles vehicles.Service
	Deals    deals.Service
	Media    *media.Service
	VIN      controllers.VINDecoder

	ReadyChecks map[string]controllers.Pinger
}

func New(deps Dependencies) *chi.Mux {
	router := chi.NewRouter()
	logg := deps.Logger

	router.Use(middleware.RequestID(logg))
	router.Use(middleware.Recoverer(logg))
	router.Use(middleware.CORS())
	router.Use(middleware.Logging(logg))
	if deps.HTTPMetrics != nil {
		router.Use(middleware.Metrics(deps.HTTPMetrics))
	}

	router.Get("/health/live", controllers.Live())
	router.Get("/health/ready", controllers.Ready(deps.ReadyChecks, logg))
	if deps.Registry != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.RequireUser(logg))
		if deps.Idempotency != nil {
			api.Use(middleware.Idempotency(deps.Idempotency, logg))
		}

		api.Route("/wizards/vehicle", wizardRoutes(deps.VehicleWizard, func(r chi.Router) {
			r.Post("/submit", controllers.WizardSubmit(deps.VehicleWizard, deps.Vehicles.CreateFromDraft, logg))
		}, logg))

		api.Route("/wizards/deal", wizardRoutes(deps.DealWizard, func(r chi.Router) {
			r.Post("/submit", controllers.WizardSubmit(deps.DealWizard, deps.Deals.CreateFromDraft, logg))
		}, logg))

		api.Post("/deals/quote", controllers.DealQuote(logg))
		api.Get("/deals", controllers.ListDeals(deps.Deals, logg))
		api.Get("/deals/{id}", controllers.GetDeal(deps.Deals, logg))

		api.Get("/vehicles", controllers.ListVehicles(deps.Vehicles, logg))
		api.Get("/vehicles/{id}", controllers.GetVehicle(deps.Vehicles, logg))

		if deps.VIN != nil {
			api.Post("/vin/decode", controllers.DecodeVIN(deps.VIN, logg))
		}
		if deps.Media != nil {
			// uploads attach to the vehicle draft, so the presign gate counts
			// the images already on it
			countImages := func(ctx context.Context, ownerID string) (int, error) {
				state, err := deps.VehicleWizard.State(ctx, ownerID)
				if err != nil {
					return 0, err
				}
				return len(state.Draft.ImageURLs), nil
			}
			api.Post("/media/presign", controllers.PresignMedia(deps.Media, countImages, logg))
		}
	})

	return router
}

// wizardRoutes mounts the endpoints both wizard kinds share; submit differs
// per kind and is added by the caller.
func wizardRoutes[D any](mgr *wizard.Manager[D], extra func(chi.Router), logg *logger.Logger) func(chi.Router) {
	return func(r chi.Router) {
		// POST and GET both fetch-or-create the session.
		r.Get("/", controllers.WizardState(mgr, logg))
		r.Post("/", controllers.WizardState(mgr, logg))
		r.Patch("/fields", controllers.WizardApplyField(mgr, logg))
		r.Patch("/fields:batch", controllers.WizardApplyBatch(mgr, logg))
		r.Post("/advance", controllers.WizardAdvance(mgr, logg))
		r.Post("/back", controllers.WizardBack(mgr, logg))
		r.Post("/goto", controllers.WizardGoTo(mgr, logg))
		r.Post("/reset", controllers.WizardReset(mgr, logg))
		extra(r)
	}
}
