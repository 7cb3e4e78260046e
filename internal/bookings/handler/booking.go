package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"pitstop/internal/bookings/service"
	"pitstop/pkg/config"
	apperrors "pitstop/pkg/errors"
	httputil "pitstop/pkg/http"
	"pitstop/pkg/middleware"
	"pitstop/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	auth    func(http.Handler) http.Handler
	cfg     *config.Config
}

func NewBookingHandler(svc service.BookingService, cfg *config.Config) *BookingHandler {
	return &BookingHandler{
		service: svc,
		auth:    middleware.StaffAuth(cfg.StaffJWTSecret, cfg.Log),
		cfg:     cfg,
	}
}

// RegisterRoutes mounts the booking API. Creation is public; everything
// else requires a staff token.
func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", middleware.WrapHandle(h.auth, h.GetAll))
	router.GET("/api/v1/bookings/id/:id", middleware.WrapHandle(h.auth, h.GetByID))
	router.GET("/api/v1/bookings/date/:date", middleware.WrapHandle(h.auth, h.GetByDate))
	router.PUT("/api/v1/bookings/id/:id", middleware.WrapHandle(h.auth, h.Update))
	router.POST("/api/v1/bookings/id/:id/status", middleware.WrapHandle(h.auth, h.TransitionStatus))
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var booking model.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}

	if err := h.service.Create(r.Context(), &booking); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, booking)
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset := parsePagination(r)

	bookings, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, bookings, total, config.NormalizePaginationLimit(limit), offset)
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) GetByDate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookings, err := h.service.GetByDate(r.Context(), ps.ByName("date"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, bookings)
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.BookingUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}

	id := ps.ByName("id")
	if err := h.service.Update(r.Context(), id, &updates); err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (h *BookingHandler) TransitionStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}

	target, err := model.ParseBookingStatus(req.Status)
	if err != nil {
		httputil.WriteError(w, apperrors.InvalidInput(err.Error()))
		return
	}

	booking, err := h.service.Transition(r.Context(), ps.ByName("id"), target)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
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
