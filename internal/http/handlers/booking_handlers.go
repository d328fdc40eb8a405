package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/http/response"
	"github.com/krishisetu/krishisetu/internal/service"
	"github.com/krishisetu/krishisetu/internal/session"
)

type BookingHandler struct {
	svc      service.BookingService
	sessions *session.Manager
}

func NewBookingHandler(svc service.BookingService, sessions *session.Manager) *BookingHandler {
	return &BookingHandler{svc: svc, sessions: sessions}
}

func (h *BookingHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/experts", h.listExperts)

	r.Group(func(r chi.Router) {
		r.Use(SessionAuth(h.sessions, ""))
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Patch("/{id}/status", h.updateStatus)
		r.Delete("/{id}", h.cancel)
	})

	return r
}

func (h *BookingHandler) listExperts(w http.ResponseWriter, r *http.Request) {
	experts, err := h.svc.ListExperts(r.Context(), r.URL.Query().Get("category"), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"experts": experts})
}

func (h *BookingHandler) create(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if sess.Role != domain.RoleFarmer {
		response.Forbidden(w, "only farmers can book consultations")
		return
	}

	var req domain.CreateBookingRequest
	if !decode(w, r, &req) {
		return
	}

	booking, clientSecret, err := h.svc.Create(r.Context(), sess.AccountID, &req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	out := map[string]any{"booking": booking}
	if clientSecret != "" {
		out["payment_client_secret"] = clientSecret
	}
	response.JSON(w, http.StatusCreated, out)
}

// list scopes to the caller's role: farmers see their own bookings, experts
// their queue, admins everything.
func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	limit, offset := queryInt(r, "limit"), queryInt(r, "offset")

	var (
		bookings []domain.Booking
		err      error
	)
	switch sess.Role {
	case domain.RoleFarmer:
		bookings, err = h.svc.ListForFarmer(r.Context(), sess.AccountID, limit, offset)
	case domain.RoleExpert:
		var status *domain.BookingStatus
		if s := r.URL.Query().Get("status"); s != "" {
			st := domain.BookingStatus(s)
			status = &st
		}
		bookings, err = h.svc.ListForExpert(r.Context(), sess.AccountID, status, limit, offset)
	case domain.RoleAdmin:
		bookings, err = h.svc.ListAll(r.Context(), limit, offset)
	}
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (h *BookingHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid booking id")
		return
	}

	booking, err := h.svc.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	sess := sessionFrom(r)
	if sess.Role == domain.RoleFarmer && booking.FarmerID != sess.AccountID ||
		sess.Role == domain.RoleExpert && booking.ExpertID != sess.AccountID {
		response.FromError(w, r, domain.ErrNotFound)
		return
	}
	response.JSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid booking id")
		return
	}

	var req domain.UpdateBookingStatusRequest
	if !decode(w, r, &req) {
		return
	}

	sess := sessionFrom(r)
	booking, err := h.svc.UpdateStatus(r.Context(), service.Actor{Role: sess.Role, AccountID: sess.AccountID}, id, &req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, booking)
}

// cancel is sugar for PATCH status=canceled.
func (h *BookingHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid booking id")
		return
	}

	sess := sessionFrom(r)
	req := domain.UpdateBookingStatusRequest{Status: domain.BookingCanceled}
	booking, err := h.svc.UpdateStatus(r.Context(), service.Actor{Role: sess.Role, AccountID: sess.AccountID}, id, &req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, booking)
}
