package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/platform/ai"
	"github.com/krishisetu/krishisetu/internal/repo/postgres"
	"github.com/krishisetu/krishisetu/pkg/logger"
)

type AdvisoryService interface {
	Chat(ctx context.Context, farmerID int64, req *domain.ChatRequest) (*domain.AdvisoryQuery, error)
	Vision(ctx context.Context, farmerID int64, req *domain.VisionRequest) (*domain.AdvisoryQuery, error)
	History(ctx context.Context, farmerID int64, limit, offset int) ([]domain.AdvisoryQuery, error)
}

type advisoryService struct {
	advisor ai.Advisor
	queries postgres.AdvisoryRepository
}

func NewAdvisoryService(advisor ai.Advisor, queries postgres.AdvisoryRepository) AdvisoryService {
	return &advisoryService{advisor: advisor, queries: queries}
}

func (s *advisoryService) Chat(ctx context.Context, farmerID int64, req *domain.ChatRequest) (*domain.AdvisoryQuery, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	answer, err := s.advisor.Chat(ctx, req.Question, req.Language)
	if err != nil {
		return nil, fmt.Errorf("advisory chat: %w", err)
	}

	return s.persist(ctx, &domain.AdvisoryQuery{
		FarmerID: farmerID,
		Kind:     domain.AdvisoryText,
		Question: req.Question,
		Answer:   answer,
		Language: req.Language,
	})
}

func (s *advisoryService) Vision(ctx context.Context, farmerID int64, req *domain.VisionRequest) (*domain.AdvisoryQuery, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	answer, err := s.advisor.Vision(ctx, req.Question, asDataURL(req.Image), req.Language)
	if err != nil {
		return nil, fmt.Errorf("advisory vision: %w", err)
	}

	return s.persist(ctx, &domain.AdvisoryQuery{
		FarmerID: farmerID,
		Kind:     domain.AdvisoryImage,
		Question: req.Question,
		Answer:   answer,
		Language: req.Language,
	})
}

func (s *advisoryService) History(ctx context.Context, farmerID int64, limit, offset int) ([]domain.AdvisoryQuery, error) {
	return s.queries.ListByFarmer(ctx, farmerID, limit, offset)
}

// persist stores the exchange for the history view. A storage failure does
// not discard the answer the farmer already paid tokens for.
func (s *advisoryService) persist(ctx context.Context, q *domain.AdvisoryQuery) (*domain.AdvisoryQuery, error) {
	saved, err := s.queries.Create(ctx, q)
	if err != nil {
		logger.ErrorContext(ctx, "failed to persist advisory query", "error", err, "farmer_id", q.FarmerID)
		return q, nil
	}
	return saved, nil
}

func asDataURL(image string) string {
	if strings.HasPrefix(image, "data:") {
		return image
	}
	return "data:image/jpeg;base64," + image
}
