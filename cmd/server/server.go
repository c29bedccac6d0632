// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/jeffreydtz/canchaya-slots/internal/api"
	"github.com/jeffreydtz/canchaya-slots/internal/api/bookings"
	"github.com/jeffreydtz/canchaya-slots/internal/api/slots"
	"github.com/jeffreydtz/canchaya-slots/internal/api/templates"
	"github.com/jeffreydtz/canchaya-slots/internal/booking"
	"github.com/jeffreydtz/canchaya-slots/internal/canchaya"
	"github.com/jeffreydtz/canchaya-slots/internal/config"
	"github.com/jeffreydtz/canchaya-slots/internal/ratelimit"
	"github.com/jeffreydtz/canchaya-slots/internal/schedule"
	"github.com/jeffreydtz/canchaya-slots/internal/scheduler"
	"github.com/jeffreydtz/canchaya-slots/internal/store"
)

// app wires the backend client, the optional local store and the core
// services together.
type app struct {
	Client     *canchaya.Client
	Store      *store.Store
	Reconciler *schedule.Reconciler
	Submitter  *booking.Submitter
	Monitor    *booking.Monitor
	Limiter    *ratelimit.Limiter
	Scheduler  *scheduler.Service
}

func newApp(cfg *config.Config) (*app, error) {
	region, err := cfg.Region()
	if err != nil {
		return nil, err
	}

	clientOpts := []canchaya.Option{
		canchaya.WithHTTPClient(&http.Client{Timeout: cfg.BackendTimeout()}),
	}
	if cfg.Backend.APIKey != "" {
		clientOpts = append(clientOpts, canchaya.WithAPIKey(cfg.Backend.APIKey))
	}
	client := canchaya.NewClient(cfg.Backend.BaseURL, clientOpts...)

	a := &app{
		Client:    client,
		Submitter: booking.NewSubmitter(client, region),
		Monitor:   booking.NewMonitor(client, nil),
		Limiter:   ratelimit.New(nil),
	}

	// The reconciler's fallback reads either the local admin-written
	// store or the backend's template API, per configuration.
	var templateSource schedule.TemplateStore = client
	if cfg.TemplateSource == "local" {
		st, err := store.NewFromConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("opening template store: %w", err)
		}
		a.Store = st
		templateSource = st
	}
	a.Reconciler = schedule.NewReconciler(client, templateSource)

	if cfg.Sync.Enabled {
		svc, err := scheduler.New()
		if err != nil {
			return nil, fmt.Errorf("creating scheduler: %w", err)
		}
		if err := scheduler.RegisterTemplateSyncJob(svc, a.Store, a.Client, cfg.Sync.CronExpr); err != nil {
			return nil, fmt.Errorf("registering template sync job: %w", err)
		}
		a.Scheduler = svc
	}

	return a, nil
}

func (a *app) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close template store")
		}
	}
}

func newServer(cfg *config.Config, a *app) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithMetrics,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	registerRoutes(router, a)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, a *app) {
	slots.InitHandlers(a.Reconciler)
	bookings.InitHandlers(a.Submitter, a.Monitor, a.Limiter)
	templates.InitHandlers(a.Store)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Availability
	mux.HandleFunc("GET /api/v1/courts/{id}/slots", slots.HandleSlotList)

	// Booking flow
	mux.HandleFunc("POST /api/v1/bookings", bookings.HandleBookingCreate)
	mux.HandleFunc("POST /api/v1/bookings/{id}/confirm", bookings.HandleBookingConfirm)
	mux.HandleFunc("GET /api/v1/bookings/{id}/deadline", bookings.HandleBookingDeadline)

	// Admin template management (local store only)
	if a.Store != nil {
		mux.HandleFunc("PUT /api/v1/courts/{id}", templates.HandleCourtUpsert)
		mux.HandleFunc("PUT /api/v1/courts/{id}/template/{dow}", templates.HandleDayTemplateUpdate)
	}
}
