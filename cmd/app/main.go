package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"estate-booking/internal/config"
	appointmentCancel "estate-booking/internal/http-server/handlers/appointments/cancel"
	appointmentComplete "estate-booking/internal/http-server/handlers/appointments/complete"
	appointmentCreate "estate-booking/internal/http-server/handlers/appointments/create"
	appointmentGet "estate-booking/internal/http-server/handlers/appointments/get"
	appointmentList "estate-booking/internal/http-server/handlers/appointments/list"
	appointmentReschedule "estate-booking/internal/http-server/handlers/appointments/reschedule"
	availabilityGet "estate-booking/internal/http-server/handlers/availability/get"
	openingsAdd "estate-booking/internal/http-server/handlers/openings/add"
	openingsGet "estate-booking/internal/http-server/handlers/openings/get"
	openingsRemove "estate-booking/internal/http-server/handlers/openings/remove"
	openingsToggle "estate-booking/internal/http-server/handlers/openings/toggle"
	openingsUpdate "estate-booking/internal/http-server/handlers/openings/update"
	"estate-booking/internal/lock"
	svc "estate-booking/internal/service"
	"estate-booking/internal/storage/postgres"
	"estate-booking/pkg/handlers/slogpretty"
	"estate-booking/pkg/middleware/mwLogger"
	"estate-booking/pkg/middleware/mwOwner"
	"estate-booking/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Cache-Tag, "+mwOwner.HeaderOwner)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	location, err := cfg.Scheduling.Location()
	if err != nil {
		log.Error("Invalid scheduling timezone", sl.Err(err))
		os.Exit(1)
	}

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	err = storage.Migrate(migrateCtx)
	cancelMigrate()
	if err != nil {
		log.Error("Failed to migrate storage", sl.Err(err))
		os.Exit(1)
	}

	locker, err := lock.NewRedisLock(cfg.RedisAddr)
	if err != nil {
		log.Error("Failed to init redis lock", sl.Err(err))
		os.Exit(1)
	}

	service := svc.NewService(storage, locker, svc.Settings{
		Location:     location,
		WindowDays:   cfg.WindowDays,
		DefaultAgent: cfg.DefaultAgent,
		PageSize:     cfg.PageSize,
		LockTTL:      cfg.LockTTL,
	})

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	// Public
	router.Get("/availability", availabilityGet.New(log, service))
	router.Post("/appointments", appointmentCreate.New(log, service))

	router.Route("/admin", func(r chi.Router) {
		r.Use(mwOwner.New(log))

		// Opening hours
		r.Get("/openings", openingsGet.New(log, service))
		r.Post("/openings/ranges", openingsAdd.New(log, service))
		r.Patch("/openings/ranges", openingsUpdate.New(log, service))
		r.Delete("/openings/ranges", openingsRemove.New(log, service))
		r.Patch("/openings/availability", openingsToggle.New(log, service))

		// Appointments
		r.Post("/appointments", appointmentCreate.New(log, service))
		r.Get("/appointment", appointmentList.New(log, service))
		r.Get("/appointments/{id}", appointmentGet.New(log, service))
		r.Post("/appointments/{id}/complete", appointmentComplete.New(log, service))
		r.Post("/appointments/{id}/cancel", appointmentCancel.New(log, service))
		r.Post("/appointments/{id}/reschedule", appointmentReschedule.New(log, service))
	})

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if err := storage.Close(); err != nil {
		log.Error("Failed to close storage", sl.Err(err))
	} else {
		log.Info("Storage closed")
	}

	if err := locker.Close(); err != nil {
		log.Error("Failed to close locker", sl.Err(err))
	} else {
		log.Info("Locker closed")
	}

	log.Info("Shutdown finished, server stopped")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
