package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/http/response"
	"github.com/krishisetu/krishisetu/internal/service"
	"github.com/krishisetu/krishisetu/internal/session"
)

type LedgerHandler struct {
	svc      service.LedgerService
	sessions *session.Manager
}

func NewLedgerHandler(svc service.LedgerService, sessions *session.Manager) *LedgerHandler {
	return &LedgerHandler{svc: svc, sessions: sessions}
}

func (h *LedgerHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(SessionAuth(h.sessions, domain.RoleFarmer))

	r.Post("/entries", h.addEntry)
	r.Get("/entries", h.listEntries)
	r.Delete("/entries/{id}", h.deleteEntry)
	r.Get("/summary", h.summary)

	r.Post("/crops", h.addCrop)
	r.Get("/crops", h.listCrops)
	r.Patch("/crops/{id}", h.updateCrop)

	return r
}

func (h *LedgerHandler) addEntry(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateEntryRequest
	if !decode(w, r, &req) {
		return
	}

	entry, err := h.svc.AddEntry(r.Context(), sessionFrom(r).AccountID, &req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, entry)
}

func (h *LedgerHandler) listEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.EntryFilter{
		Type:     q.Get("type"),
		Category: q.Get("category"),
		Crop:     q.Get("crop"),
		From:     queryDate(r, "from"),
		To:       queryDate(r, "to"),
		Limit:    queryInt(r, "limit"),
		Offset:   queryInt(r, "offset"),
	}

	entries, err := h.svc.ListEntries(r.Context(), sessionFrom(r).AccountID, filter)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *LedgerHandler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid entry id")
		return
	}

	if err := h.svc.DeleteEntry(r.Context(), sessionFrom(r).AccountID, id); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "entry deleted"})
}

func (h *LedgerHandler) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Summary(r.Context(), sessionFrom(r).AccountID, queryDate(r, "from"), queryDate(r, "to"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, sum)
}

func (h *LedgerHandler) addCrop(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCropRequest
	if !decode(w, r, &req) {
		return
	}

	crop, err := h.svc.AddCrop(r.Context(), sessionFrom(r).AccountID, &req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, crop)
}

func (h *LedgerHandler) listCrops(w http.ResponseWriter, r *http.Request) {
	crops, err := h.svc.ListCrops(r.Context(), sessionFrom(r).AccountID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"crops": crops})
}

func (h *LedgerHandler) updateCrop(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid crop id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}

	if err := h.svc.UpdateCropStatus(r.Context(), sessionFrom(r).AccountID, id, req.Status); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "crop updated"})
}

// queryDate parses a YYYY-MM-DD query param; zero time when absent or bad.
func queryDate(r *http.Request, name string) time.Time {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}
	}
	return t
}
