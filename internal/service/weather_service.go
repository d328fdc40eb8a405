package service

import (
	"context"
	"strings"

	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/platform/weather"
)

type WeatherService interface {
	Forecast(ctx context.Context, place string, days int) (*weather.Report, error)
}

type weatherService struct {
	provider weather.Provider
}

func NewWeatherService(provider weather.Provider) WeatherService {
	return &weatherService{provider: provider}
}

func (s *weatherService) Forecast(ctx context.Context, place string, days int) (*weather.Report, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return nil, domain.Invalid("place", "place is required")
	}
	return s.provider.Forecast(ctx, place, days)
}
