package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	baseHandler
	db Pinger
}

// NewHealthHandler returns the liveness handler. db may be nil when no database is used.
func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{baseHandler: baseHandler{logger: logger}, db: db}
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Error("health check: database unreachable", slog.Any("error", err))
			h.errorResponse(w, r, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	h.writeOrFail(w, r, http.StatusOK, jsonResponse{"status": "ok"})
}
