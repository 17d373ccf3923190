package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/dealerhubhq/dealerhub-backend/api/controllers"
	"github.com/dealerhubhq/dealerhub-backend/api/routes"
	"github.com/dealerhubhq/dealerhub-backend/internal/customers"
	"github.com/dealerhubhq/dealerhub-backend/internal/deals"
	"github.com/dealerhubhq/dealerhub-backend/internal/drafts"
	"github.com/dealerhubhq/dealerhub-backend/internal/media"
	"github.com/dealerhubhq/dealerhub-backend/internal/vehicles"
	"github.com/dealerhubhq/dealerhub-backend/internal/vindecode"
	"github.com/dealerhubhq/dealerhub-backend/internal/wizard"
	"github.com/dealerhubhq/dealerhub-backend/pkg/config"
	"github.com/dealerhubhq/dealerhub-backend/pkg/db"
	"github.com/dealerhubhq/dealerhub-backend/pkg/logger"
	"github.com/dealerhubhq/dealerhub-backend/pkg/metrics"
	"github.com/dealerhubhq/dealerhub-backend/pkg/migrate"
	pkgredis "github.com/dealerhubhq/dealerhub-backend/pkg/redis"
	"github.com/dealerhubhq/dealerhub-backend/pkg/storage/gcs"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dealerhub-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logg := logger.New(logger.Options{
		ServiceName: "dealerhub-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = dbClient.Close() }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	redisClient, err := pkgredis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)
	wizardMetrics := metrics.NewWizardMetrics(registry)

	vehicleRepo, err := vehicles.NewRepository(dbClient.DB())
	if err != nil {
		return err
	}
	vehicleSvc, err := vehicles.NewService(vehicleRepo, dbClient)
	if err != nil {
		return err
	}

	customerRepo, err := customers.NewRepository(dbClient.DB())
	if err != nil {
		return err
	}
	dealRepo, err := deals.NewRepository(dbClient.DB())
	if err != nil {
		return err
	}
	dealSvc, err := deals.NewService(dealRepo, dbClient, customerRepo, vehicleRepo)
	if err != nil {
		return err
	}

	vehicleWizard, err := newWizard(cfg, redisClient, logg, wizardMetrics, "vehicle",
		wizard.VehicleDraftFactory(redisClient), wizard.ValidateVehicleStep, wizard.VehicleReviewErrors)
	if err != nil {
		return err
	}
	dealWizard, err := newWizard(cfg, redisClient, logg, wizardMetrics, "deal",
		wizard.DealDraftFactory(redisClient), wizard.ValidateDealStep, wizard.DealReviewErrors)
	if err != nil {
		return err
	}
	go vehicleWizard.Run(ctx)
	go dealWizard.Run(ctx)

	readyChecks := map[string]controllers.Pinger{
		"postgres": dbClient,
		"redis":    redisClient,
	}

	var mediaSvc *media.Service
	if cfg.GCS.BucketName != "" {
		gcsClient, gcsErr := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		if gcsErr != nil {
			return fmt.Errorf("init gcs: %w", gcsErr)
		}
		mediaSvc, err = media.NewService(gcsClient, cfg.Media)
		if err != nil {
			return err
		}
		readyChecks["gcs"] = gcsClient
	} else {
		logg.Warn(ctx, "gcs bucket not configured, media presign disabled")
	}

	router := routes.New(routes.Dependencies{
		Logger:        logg,
		HTTPMetrics:   httpMetrics,
		Registry:      registry,
		Idempotency:   redisClient,
		VehicleWizard: vehicleWizard,
		DealWizard:    dealWizard,
		Vehicles:      vehicleSvc,
		Deals:         dealSvc,
		Media:         mediaSvc,
		VIN:           vindecode.NewClient(cfg.VINDecode),
		ReadyChecks:   readyChecks,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "port", cfg.App.Port), "http server listening")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	var shutdownErrs error
	if err := server.Shutdown(shutdownCtx); err != nil {
		shutdownErrs = multierr.Append(shutdownErrs, fmt.Errorf("http shutdown: %w", err))
	}
	vehicleWizard.Flush(shutdownCtx)
	dealWizard.Flush(shutdownCtx)
	if err := redisClient.Close(); err != nil {
		shutdownErrs = multierr.Append(shutdownErrs, fmt.Errorf("redis close: %w", err))
	}
	if err := dbClient.Close(); err != nil {
		shutdownErrs = multierr.Append(shutdownErrs, fmt.Errorf("db close: %w", err))
	}
	return shutdownErrs
}

func newWizard[D any](
	cfg *config.Config,
	redisClient *pkgredis.Client,
	logg *logger.Logger,
	wizardMetrics *metrics.WizardMetrics,
	kind string,
	fresh func(context.Context) (D, error),
	validate wizard.StepValidator[D],
	review wizard.ReviewValidator[D],
) (*wizard.Manager[D], error) {
	store, err := drafts.NewStore[D](redisClient, kind, cfg.Wizard.DraftTTL, logg)
	if err != nil {
		return nil, err
	}
	mgr, err := wizard.NewManager(wizard.ManagerConfig[D]{
		Kind:             kind,
		Store:            store,
		Locker:           redisClient,
		Fresh:            fresh,
		Validate:         validate,
		Review:           review,
		SubmitLockTTL:    cfg.Wizard.SubmitLockTTL,
		AutosaveInterval: cfg.Wizard.AutosaveInterval,
		SessionIdleTTL:   cfg.Wizard.SessionIdleTTL,
		Logger:           logg,
		Metrics:          wizardMetrics,
	})
	if err != nil {
		return nil, err
	}
	return mgr, nil
}
