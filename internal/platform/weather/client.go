package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/go-querystring/query"
	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/pkg/config"
)

// Provider resolves a place name and returns a short daily forecast.
type Provider interface {
	Forecast(ctx context.Context, place string, days int) (*Report, error)
}

type Report struct {
	Place     string  `json:"place"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Days      []Day   `json:"days"`
}

type Day struct {
	Date          string  `json:"date"`
	TempMaxC      float64 `json:"temp_max_c"`
	TempMinC      float64 `json:"temp_min_c"`
	RainMM        float64 `json:"rain_mm"`
	WindMaxKMH    float64 `json:"wind_max_kmh"`
	RainChancePct int     `json:"rain_chance_pct"`
}

type client struct {
	http        *resty.Client
	geocodeURL  string
	forecastURL string
}

func NewClient(cfg config.WeatherConfig) Provider {
	return &client{
		http:        resty.New().SetTimeout(10 * time.Second),
		geocodeURL:  cfg.GeocodeURL,
		forecastURL: cfg.ForecastURL,
	}
}

type geocodeParams struct {
	Name     string `url:"name"`
	Count    int    `url:"count"`
	Language string `url:"language"`
}

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastParams struct {
	Latitude     float64  `url:"latitude"`
	Longitude    float64  `url:"longitude"`
	Daily        []string `url:"daily,comma"`
	Timezone     string   `url:"timezone"`
	ForecastDays int      `url:"forecast_days"`
}

type forecastResponse struct {
	Daily struct {
		Time          []string  `json:"time"`
		TempMax       []float64 `json:"temperature_2m_max"`
		TempMin       []float64 `json:"temperature_2m_min"`
		Precipitation []float64 `json:"precipitation_sum"`
		PrecipChance  []int     `json:"precipitation_probability_max"`
		WindMax       []float64 `json:"wind_speed_10m_max"`
	} `json:"daily"`
}

func (c *client) Forecast(ctx context.Context, place string, days int) (*Report, error) {
	if days <= 0 || days > 7 {
		days = 7
	}

	name, lat, lon, err := c.geocode(ctx, place)
	if err != nil {
		return nil, err
	}

	params, err := query.Values(forecastParams{
		Latitude:  lat,
		Longitude: lon,
		Daily: []string{
			"temperature_2m_max", "temperature_2m_min",
			"precipitation_sum", "precipitation_probability_max", "wind_speed_10m_max",
		},
		Timezone:     "Asia/Kolkata",
		ForecastDays: days,
	})
	if err != nil {
		return nil, err
	}

	var out forecastResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		SetResult(&out).
		Get(c.forecastURL)
	if err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("forecast: status %d", resp.StatusCode())
	}

	report := &Report{Place: name, Latitude: lat, Longitude: lon}
	for i, date := range out.Daily.Time {
		d := Day{Date: date}
		if i < len(out.Daily.TempMax) {
			d.TempMaxC = out.Daily.TempMax[i]
		}
		if i < len(out.Daily.TempMin) {
			d.TempMinC = out.Daily.TempMin[i]
		}
		if i < len(out.Daily.Precipitation) {
			d.RainMM = out.Daily.Precipitation[i]
		}
		if i < len(out.Daily.PrecipChance) {
			d.RainChancePct = out.Daily.PrecipChance[i]
		}
		if i < len(out.Daily.WindMax) {
			d.WindMaxKMH = out.Daily.WindMax[i]
		}
		report.Days = append(report.Days, d)
	}

	return report, nil
}

func (c *client) geocode(ctx context.Context, place string) (string, float64, float64, error) {
	params, err := query.Values(geocodeParams{Name: place, Count: 1, Language: "en"})
	if err != nil {
		return "", 0, 0, err
	}

	var out geocodeResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		SetResult(&out).
		Get(c.geocodeURL)
	if err != nil {
		return "", 0, 0, fmt.Errorf("geocode: %w", err)
	}
	if resp.IsError() {
		return "", 0, 0, fmt.Errorf("geocode: status %d", resp.StatusCode())
	}
	if len(out.Results) == 0 {
		return "", 0, 0, fmt.Errorf("geocode: no match for %q: %w", place, domain.ErrNotFound)
	}

	r := out.Results[0]
	return r.Name, r.Latitude, r.Longitude, nil
}
