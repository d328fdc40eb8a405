package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/http/response"
	"github.com/krishisetu/krishisetu/internal/service"
)

type MarketHandler struct {
	svc service.MarketService
}

func NewMarketHandler(svc service.MarketService) *MarketHandler {
	return &MarketHandler{svc: svc}
}

func (h *MarketHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/prices", h.listPrices)
	return r
}

func (h *MarketHandler) listPrices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	prices, err := h.svc.List(r.Context(), domain.PriceFilter{
		Crop:     q.Get("crop"),
		District: q.Get("district"),
		Limit:    queryInt(r, "limit"),
	})
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"prices": prices})
}
