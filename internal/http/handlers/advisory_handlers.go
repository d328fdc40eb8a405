package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/http/response"
	"github.com/krishisetu/krishisetu/internal/service"
	"github.com/krishisetu/krishisetu/internal/session"
)

type AdvisoryHandler struct {
	svc      service.AdvisoryService
	sessions *session.Manager
}

func NewAdvisoryHandler(svc service.AdvisoryService, sessions *session.Manager) *AdvisoryHandler {
	return &AdvisoryHandler{svc: svc, sessions: sessions}
}

func (h *AdvisoryHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(SessionAuth(h.sessions, domain.RoleFarmer))
	r.Post("/chat", h.chat)
	r.Post("/vision", h.vision)
	r.Get("/history", h.history)
	return r
}

func (h *AdvisoryHandler) chat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if !decode(w, r, &req) {
		return
	}

	q, err := h.svc.Chat(r.Context(), sessionFrom(r).AccountID, &req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, q)
}

func (h *AdvisoryHandler) vision(w http.ResponseWriter, r *http.Request) {
	var req domain.VisionRequest
	if !decode(w, r, &req) {
		return
	}

	q, err := h.svc.Vision(r.Context(), sessionFrom(r).AccountID, &req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, q)
}

func (h *AdvisoryHandler) history(w http.ResponseWriter, r *http.Request) {
	queries, err := h.svc.History(r.Context(), sessionFrom(r).AccountID, queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"queries": queries})
}
