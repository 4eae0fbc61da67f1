package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/julienschmidt/httprouter"

	"groupstay/pkg/config"
	"groupstay/pkg/contracts"
	"groupstay/pkg/metrics"
	"groupstay/pkg/middleware"
	"groupstay/pkg/telemetry"
)

type Application struct {
	cfg              *config.Config
	metrics          *metrics.Metrics
	server           *http.Server
	idempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter      *middleware.ClientRateLimiter
	healthHandler    http.Handler
	mux              *http.ServeMux
	shutdownHooks    []func(context.Context) error
}

func NewApplication(cfg *config.Config, m *metrics.Metrics) *Application {
	return &Application{cfg: cfg, metrics: m}
}

// SetApp builds the server. Handlers implementing contracts.MountedHandler
// get a router of their own under their mount points; the rest share the
// main router.
func (a *Application) SetApp(store Pinger, handlers ...contracts.Handler) {
	a.setHealthHandler(store)
	a.setMiddleware()

	a.mux = http.NewServeMux()
	a.mux.Handle("/health", a.healthHandler)
	a.mux.Handle("/ready", a.healthHandler)
	a.mux.Handle("/metrics", a.metrics.Handler())

	appRouter := httprouter.New()
	for _, h := range handlers {
		mounted, ok := h.(contracts.MountedHandler)
		if !ok {
			h.RegisterRoutes(appRouter)
			continue
		}
		sub := httprouter.New()
		mounted.RegisterRoutes(sub)
		for _, prefix := range mounted.MountPoints() {
			a.mux.Handle(prefix, a.wrap(sub))
			a.cfg.Log.Info("Mounted sub-router", "prefix", prefix)
		}
	}
	a.mux.Handle("/", a.wrap(appRouter))
	a.setAppServer()
}

// OnShutdown registers fn to run after the HTTP server stops, in
// registration order.
func (a *Application) OnShutdown(fn func(context.Context) error) {
	a.shutdownHooks = append(a.shutdownHooks, fn)
}

// Handler exposes the assembled mux, mostly for tests.
func (a *Application) Handler() http.Handler {
	return a.mux
}

func (a *Application) setHealthHandler(store Pinger) {
	healthRouter := httprouter.New()
	NewHealthHandler(store, a.cfg.Log).RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.RequestLogging(a.cfg.Log)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(a.cfg.Log)(healthHTTPHandler)
	a.healthHandler = healthHTTPHandler
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setMiddleware() {
	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
	a.rateLimiter = middleware.NewClientRateLimiter(a.cfg.RateLimitRequests, a.cfg.RateLimitWindow, a.cfg.Log)
}

// wrap applies the full stack. The outermost middleware is added last.
func (a *Application) wrap(h http.Handler) http.Handler {
	h = middleware.Idempotency(a.idempotencyStore, "Idempotency-Key")(h)
	h = middleware.RequestTimeout(a.cfg.RequestTimeout)(h)
	h = middleware.ClientRateLimit(a.rateLimiter)(h)
	h = middleware.ContentTypeValidation(a.cfg.Log, "text/csv", "text/plain")(h)
	h = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(h)
	h = middleware.Metrics(a.metrics)(h)
	h = middleware.Tracing(telemetry.Tracer())(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	return h
}

func (a *Application) setAppServer() {
	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      a.mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			a.cfg.Log.Fatal("HTTP server failed", "error", err)
		}

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	a.cfg.Log.Info("Stopping background workers...")
	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	a.cfg.Log.Info("Background workers stopped")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	for _, hook := range a.shutdownHooks {
		if err := hook(ctx); err != nil {
			a.cfg.Log.Error("Shutdown hook failed", "error", err)
		}
	}
	a.cfg.GracefulShutdown()

	a.cfg.Log.Info("Server stopped gracefully")
}
