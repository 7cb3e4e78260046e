package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"pitstop/internal/parts/service"
	"pitstop/pkg/config"
	apperrors "pitstop/pkg/errors"
	httputil "pitstop/pkg/http"
	"pitstop/pkg/middleware"
	"pitstop/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PartHandler struct {
	service service.PartService
	auth    func(http.Handler) http.Handler
	cfg     *config.Config
}

func NewPartHandler(svc service.PartService, cfg *config.Config) *PartHandler {
	return &PartHandler{
		service: svc,
		auth:    middleware.StaffAuth(cfg.StaffJWTSecret, cfg.Log),
		cfg:     cfg,
	}
}

// RegisterRoutes mounts catalog administration under /parts and the
// per-jobcard consumption ledger under /jobcards/id/:id/parts.
func (h *PartHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/parts", middleware.WrapHandle(h.auth, h.CreatePart))
	router.GET("/api/v1/parts", middleware.WrapHandle(h.auth, h.GetAllParts))
	router.GET("/api/v1/parts/id/:id", middleware.WrapHandle(h.auth, h.GetPart))
	router.PUT("/api/v1/parts/id/:id", middleware.WrapHandle(h.auth, h.UpdatePart))

	router.POST("/api/v1/jobcards/id/:id/parts", middleware.WrapHandle(h.auth, h.Issue))
	router.GET("/api/v1/jobcards/id/:id/parts", middleware.WrapHandle(h.auth, h.GetLedger))
	router.PUT("/api/v1/parts/lines/:line_id", middleware.WrapHandle(h.auth, h.AdjustQuantity))
	router.POST("/api/v1/parts/lines/:line_id/used", middleware.WrapHandle(h.auth, h.MarkUsed))
	router.DELETE("/api/v1/parts/lines/:line_id", middleware.WrapHandle(h.auth, h.Remove))
}

func (h *PartHandler) CreatePart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var part model.Part
	if err := json.NewDecoder(r.Body).Decode(&part); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}

	if err := h.service.CreatePart(r.Context(), &part); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, part)
}

func (h *PartHandler) GetAllParts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset := parsePagination(r)

	parts, total, err := h.service.GetAllParts(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, parts, total, config.NormalizePaginationLimit(limit), offset)
}

func (h *PartHandler) GetPart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	part, err := h.service.GetPart(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, part)
}

func (h *PartHandler) UpdatePart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.PartUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}

	part, err := h.service.UpdatePart(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, part)
}

type issueRequest struct {
	PartID   string `json:"part_id"`
	Quantity int    `json:"quantity"`
}

func (h *PartHandler) Issue(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}
	if req.PartID == "" {
		httputil.WriteError(w, apperrors.InvalidInput("Part ID cannot be empty"))
		return
	}

	line, err := h.service.Issue(r.Context(), ps.ByName("id"), req.PartID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, line)
}

func (h *PartHandler) GetLedger(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	lines, err := h.service.GetLedger(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, lines)
}

type adjustRequest struct {
	Quantity int `json:"quantity"`
}

func (h *PartHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}

	line, err := h.service.AdjustQuantity(r.Context(), ps.ByName("line_id"), req.Quantity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, line)
}

func (h *PartHandler) MarkUsed(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	line, err := h.service.MarkUsed(r.Context(), ps.ByName("line_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, line)
}

func (h *PartHandler) Remove(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Remove(r.Context(), ps.ByName("line_id")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
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
