package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/tuanvm/geminichat/internal/config"
)

type statusResp struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Database bool   `json:"database"`
}

// Status handles GET /api/status: liveness plus a database ping.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.PingTimeout)
	defer cancel()

	resp := statusResp{
		Status:   "ok",
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
		Database: true,
	}
	if err := h.db.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = false
	}
	writeJSON(w, http.StatusOK, resp)
}
