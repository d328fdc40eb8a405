package service

import (
	"context"
	"fmt"

	"github.com/alexedwards/argon2id"
	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/repo/postgres"
)

type AdminService interface {
	CreateExpert(ctx context.Context, req *domain.CreateExpertRequest) (*domain.Expert, error)
	SetExpertStatus(ctx context.Context, expertID int64, status string) error
	SetExpertActive(ctx context.Context, expertID int64, active bool) error
	ListExperts(ctx context.Context, category string, limit, offset int) ([]domain.Expert, error)
	ListFarmers(ctx context.Context, limit, offset int) ([]domain.Farmer, error)
	DeleteFarmer(ctx context.Context, farmerID int64) error
}

type adminService struct {
	experts postgres.ExpertRepository
	farmers postgres.FarmerRepository
}

func NewAdminService(experts postgres.ExpertRepository, farmers postgres.FarmerRepository) AdminService {
	return &adminService{experts: experts, farmers: farmers}
}

func (s *adminService) CreateExpert(ctx context.Context, req *domain.CreateExpertRequest) (*domain.Expert, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	expert, err := s.experts.Create(ctx, req, hash)
	if err != nil {
		return nil, err
	}
	return expert, nil
}

func (s *adminService) SetExpertStatus(ctx context.Context, expertID int64, status string) error {
	switch status {
	case domain.ExpertApproved, domain.ExpertRejected, domain.ExpertPending:
	default:
		return domain.Invalid("status", "status must be pending, approved or rejected")
	}
	return s.experts.SetStatus(ctx, expertID, status)
}

func (s *adminService) SetExpertActive(ctx context.Context, expertID int64, active bool) error {
	return s.experts.SetActive(ctx, expertID, active)
}

func (s *adminService) ListExperts(ctx context.Context, category string, limit, offset int) ([]domain.Expert, error) {
	return s.experts.List(ctx, category, false, limit, offset)
}

func (s *adminService) ListFarmers(ctx context.Context, limit, offset int) ([]domain.Farmer, error) {
	return s.farmers.List(ctx, limit, offset)
}

func (s *adminService) DeleteFarmer(ctx context.Context, farmerID int64) error {
	return s.farmers.Delete(ctx, farmerID)
}
