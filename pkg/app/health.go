package app

import (
	"net/http"

	"pitstop/pkg/config"
	httputil "pitstop/pkg/http"

	"github.com/julienschmidt/httprouter"
)

type healthHandler struct {
	cfg *config.Config
}

func newHealthHandler(cfg *config.Config) *healthHandler {
	return &healthHandler{cfg: cfg}
}

func (h *healthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.health)
	router.GET("/ready", h.ready)
}

func (h *healthHandler) health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ready also checks the database connection.
func (h *healthHandler) ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h.cfg.Client.Mongo == nil {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "mongo not connected"})
		return
	}
	if err := h.cfg.Client.Mongo.Ping(r.Context(), nil); err != nil {
		h.cfg.Log.Error("Readiness check failed", "error", err)
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "mongo unreachable"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
