package rest

import (
	"database/sql"
	"log/slog"

	"github.com/frahmantamala/access-bridge/internal/status"
	"github.com/frahmantamala/access-bridge/internal/syncengine"
	"github.com/frahmantamala/access-bridge/internal/synclog"
	"github.com/frahmantamala/access-bridge/internal/terminal"
	"github.com/frahmantamala/access-bridge/internal/transport/middleware"
	"github.com/go-chi/chi"
)

// RegisterAllRoutes wires the admin API: flow triggers, the device list,
// sync statistics and health.
func RegisterAllRoutes(
	router *chi.Mux,
	terminalDB, directoryDB *sql.DB,
	syncHandler *syncengine.Handler,
	deviceHandler *terminal.Handler,
	statsHandler *synclog.Handler,
	statusHandler *status.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(terminalDB, directoryDB)

	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if syncHandler != nil {
			r.Route("/sync", func(sr chi.Router) {
				sr.Post("/users", syncHandler.TriggerPush)
				sr.Post("/logs", syncHandler.TriggerPull)
				if statsHandler != nil {
					sr.Get("/stats", statsHandler.GetStats)
				}
			})
		}

		if deviceHandler != nil {
			r.Get("/devices", deviceHandler.ListDevices)
		}

		if statusHandler != nil {
			r.Get("/status", statusHandler.GetStatus)
		}
	})
}
