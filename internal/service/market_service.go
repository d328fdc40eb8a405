package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/repo/postgres"
)

type MarketService interface {
	Upsert(ctx context.Context, req *domain.UpsertPriceRequest) (*domain.MarketPrice, error)
	List(ctx context.Context, filter domain.PriceFilter) ([]domain.MarketPrice, error)
}

type marketService struct {
	prices postgres.MarketRepository
}

func NewMarketService(prices postgres.MarketRepository) MarketService {
	return &marketService{prices: prices}
}

func (s *marketService) Upsert(ctx context.Context, req *domain.UpsertPriceRequest) (*domain.MarketPrice, error) {
	req.Crop = strings.TrimSpace(strings.ToLower(req.Crop))
	req.Market = strings.TrimSpace(req.Market)
	if req.QuotedOn.IsZero() {
		req.QuotedOn = time.Now().Truncate(24 * time.Hour)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	price, err := s.prices.Upsert(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert market price: %w", err)
	}
	return price, nil
}

func (s *marketService) List(ctx context.Context, filter domain.PriceFilter) ([]domain.MarketPrice, error) {
	filter.Crop = strings.TrimSpace(strings.ToLower(filter.Crop))
	return s.prices.List(ctx, filter)
}
