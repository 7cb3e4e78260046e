package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"pitstop/internal/jobcards/service"
	"pitstop/pkg/config"
	apperrors "pitstop/pkg/errors"
	httputil "pitstop/pkg/http"
	"pitstop/pkg/middleware"
	"pitstop/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type JobcardHandler struct {
	service service.JobcardService
	auth    func(http.Handler) http.Handler
	cfg     *config.Config
}

func NewJobcardHandler(svc service.JobcardService, cfg *config.Config) *JobcardHandler {
	return &JobcardHandler{
		service: svc,
		auth:    middleware.StaffAuth(cfg.StaffJWTSecret, cfg.Log),
		cfg:     cfg,
	}
}

// RegisterRoutes mounts the jobcard API. All routes are staff-only.
func (h *JobcardHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/jobcards", middleware.WrapHandle(h.auth, h.Create))
	router.GET("/api/v1/jobcards", middleware.WrapHandle(h.auth, h.GetAll))
	router.GET("/api/v1/jobcards/id/:id", middleware.WrapHandle(h.auth, h.GetByID))
	router.GET("/api/v1/jobcards/booking/:booking_id", middleware.WrapHandle(h.auth, h.GetByBookingID))
	router.PUT("/api/v1/jobcards/id/:id/details", middleware.WrapHandle(h.auth, h.UpdateServiceDetails))
	router.POST("/api/v1/jobcards/id/:id/mechanics", middleware.WrapHandle(h.auth, h.AssignMechanic))
	router.DELETE("/api/v1/jobcards/id/:id/mechanics/:mechanic_id", middleware.WrapHandle(h.auth, h.UnassignMechanic))
	router.POST("/api/v1/jobcards/id/:id/close", middleware.WrapHandle(h.auth, h.Close))
}

type createJobcardRequest struct {
	BookingID string `json:"booking_id"`
}

func (h *JobcardHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createJobcardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}

	jobcard, err := h.service.CreateForArrival(r.Context(), req.BookingID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, jobcard)
}

func (h *JobcardHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset := parsePagination(r)

	jobcards, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, jobcards, total, config.NormalizePaginationLimit(limit), offset)
}

func (h *JobcardHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	jobcard, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, jobcard)
}

func (h *JobcardHandler) GetByBookingID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	jobcard, err := h.service.GetByBookingID(r.Context(), ps.ByName("booking_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, jobcard)
}

type serviceDetailsRequest struct {
	ServiceDetails []model.ServiceDetail `json:"service_details"`
}

func (h *JobcardHandler) UpdateServiceDetails(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req serviceDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}

	jobcard, err := h.service.UpdateServiceDetails(r.Context(), ps.ByName("id"), req.ServiceDetails)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, jobcard)
}

type assignMechanicRequest struct {
	MechanicID string `json:"mechanic_id"`
}

func (h *JobcardHandler) AssignMechanic(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req assignMechanicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}

	jobcard, err := h.service.AssignMechanic(r.Context(), ps.ByName("id"), req.MechanicID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, jobcard)
}

func (h *JobcardHandler) UnassignMechanic(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	jobcard, err := h.service.UnassignMechanic(r.Context(), ps.ByName("id"), ps.ByName("mechanic_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, jobcard)
}

func (h *JobcardHandler) Close(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	jobcard, err := h.service.Close(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, jobcard)
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
