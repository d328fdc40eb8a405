package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/http/response"
	"github.com/krishisetu/krishisetu/internal/service"
	"github.com/krishisetu/krishisetu/internal/session"
)

type WeatherHandler struct {
	weather  service.WeatherService
	auth     service.AuthService
	sessions *session.Manager
}

func NewWeatherHandler(weather service.WeatherService, auth service.AuthService, sessions *session.Manager) *WeatherHandler {
	return &WeatherHandler{weather: weather, auth: auth, sessions: sessions}
}

func (h *WeatherHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(SessionAuth(h.sessions, ""))
	r.Get("/", h.forecast)
	return r
}

// forecast resolves ?village=... or falls back to the farmer's profile
// location (village, then district).
func (h *WeatherHandler) forecast(w http.ResponseWriter, r *http.Request) {
	place := r.URL.Query().Get("village")

	if place == "" {
		sess := sessionFrom(r)
		if sess.Role == domain.RoleFarmer {
			farmer, err := h.auth.GetFarmer(r.Context(), sess.AccountID)
			if err == nil {
				place = farmer.Village
				if place == "" {
					place = farmer.District
				}
			}
		}
	}

	report, err := h.weather.Forecast(r.Context(), place, queryInt(r, "days"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, report)
}
