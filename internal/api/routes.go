package api

import (
	"net/http"

	"github.com/shaiso/syncron/internal/telemetry"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	logger := h.logger
	if h.instance != "" {
		logger = telemetry.WithInstance(logger, h.instance)
	}
	chain := Chain(
		Recovery(logger),
		Logging(logger),
	)

	mux.HandleFunc("GET /healthz", h.Health)

	// Jobs этого инстанса
	mux.Handle("GET /api/v1/jobs", chain(http.HandlerFunc(h.ListJobs)))
	mux.Handle("DELETE /api/v1/jobs/{name}", chain(http.HandlerFunc(h.CancelJob)))

	// Watermarks (общие для всех инстансов)
	mux.Handle("GET /api/v1/watermarks", chain(http.HandlerFunc(h.ListWatermarks)))
	mux.Handle("GET /api/v1/watermarks/{name}", chain(http.HandlerFunc(h.GetWatermark)))
}
