package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"pitstop/internal/mechanics/service"
	"pitstop/pkg/config"
	apperrors "pitstop/pkg/errors"
	httputil "pitstop/pkg/http"
	"pitstop/pkg/middleware"
	"pitstop/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type MechanicHandler struct {
	service service.MechanicService
	auth    func(http.Handler) http.Handler
	cfg     *config.Config
}

func NewMechanicHandler(svc service.MechanicService, cfg *config.Config) *MechanicHandler {
	return &MechanicHandler{
		service: svc,
		auth:    middleware.StaffAuth(cfg.StaffJWTSecret, cfg.Log),
		cfg:     cfg,
	}
}

func (h *MechanicHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/mechanics", middleware.WrapHandle(h.auth, h.Create))
	router.GET("/api/v1/mechanics", middleware.WrapHandle(h.auth, h.GetAll))
	router.GET("/api/v1/mechanics/available", middleware.WrapHandle(h.auth, h.GetAvailable))
	router.GET("/api/v1/mechanics/id/:id", middleware.WrapHandle(h.auth, h.GetByID))
	router.PUT("/api/v1/mechanics/id/:id", middleware.WrapHandle(h.auth, h.Update))
}

func (h *MechanicHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var mechanic model.Mechanic
	if err := json.NewDecoder(r.Body).Decode(&mechanic); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}

	if err := h.service.Create(r.Context(), &mechanic); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, mechanic)
}

func (h *MechanicHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset := parsePagination(r)

	mechanics, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, mechanics, total, config.NormalizePaginationLimit(limit), offset)
}

func (h *MechanicHandler) GetAvailable(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	mechanics, err := h.service.GetAvailable(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, mechanics)
}

func (h *MechanicHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	mechanic, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, mechanic)
}

func (h *MechanicHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.MechanicUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}

	mechanic, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, mechanic)
}

func parsePagination(r *http.Request) (int, int64) {
	limit := 0
	offset := int64(0)

	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			offset = parsed
		}
	}

	return limit, offset
}
