package api

import (
	"context"
	"net/http"
	"time"

	"github.com/shaiso/syncron/internal/watermark"
)

// Health — GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.pinger.Ping(ctx); err != nil {
			h.logger.Warn("health check failed", "error", err)
			Unavailable(w, err.Error())
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// ListJobs — GET /api/v1/jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := h.registry.Jobs()
	List(w, jobs, len(jobs))
}

// CancelJob — DELETE /api/v1/jobs/{name}.
// Снимает job только с таймера этого инстанса.
func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	if !h.registry.Cancel(name) {
		NotFound(w, "job not found")
		return
	}

	h.logger.Info("job cancelled via api", "job", name, "instance", h.instance)
	NoContent(w)
}

// ListWatermarks — GET /api/v1/watermarks.
func (h *Handler) ListWatermarks(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.List(r.Context())
	if HandleStoreError(w, h.logger, err, "") {
		return
	}
	List(w, entries, len(entries))
}

// GetWatermark — GET /api/v1/watermarks/{name}.
func (h *Handler) GetWatermark(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	v, ok, err := h.store.Get(r.Context(), name)
	if HandleStoreError(w, h.logger, err, "") {
		return
	}
	if !ok {
		NotFound(w, "watermark not found")
		return
	}

	Success(w, watermark.Entry{Name: name, Value: v})
}
