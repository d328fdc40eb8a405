package service

import (
	"context"
	"fmt"
	"time"

	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/repo/postgres"
)

type LedgerService interface {
	AddEntry(ctx context.Context, farmerID int64, req *domain.CreateEntryRequest) (*domain.LedgerEntry, error)
	ListEntries(ctx context.Context, farmerID int64, filter domain.EntryFilter) ([]domain.LedgerEntry, error)
	DeleteEntry(ctx context.Context, farmerID, entryID int64) error
	Summary(ctx context.Context, farmerID int64, from, to time.Time) (*domain.LedgerSummary, error)

	AddCrop(ctx context.Context, farmerID int64, req *domain.CreateCropRequest) (*domain.CropRecord, error)
	ListCrops(ctx context.Context, farmerID int64) ([]domain.CropRecord, error)
	UpdateCropStatus(ctx context.Context, farmerID, cropID int64, status string) error
}

type ledgerService struct {
	ledger postgres.LedgerRepository
}

func NewLedgerService(ledger postgres.LedgerRepository) LedgerService {
	return &ledgerService{ledger: ledger}
}

func (s *ledgerService) AddEntry(ctx context.Context, farmerID int64, req *domain.CreateEntryRequest) (*domain.LedgerEntry, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entry, err := s.ledger.CreateEntry(ctx, farmerID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return entry, nil
}

func (s *ledgerService) ListEntries(ctx context.Context, farmerID int64, filter domain.EntryFilter) ([]domain.LedgerEntry, error) {
	return s.ledger.ListEntries(ctx, farmerID, filter)
}

func (s *ledgerService) DeleteEntry(ctx context.Context, farmerID, entryID int64) error {
	return s.ledger.DeleteEntry(ctx, farmerID, entryID)
}

func (s *ledgerService) Summary(ctx context.Context, farmerID int64, from, to time.Time) (*domain.LedgerSummary, error) {
	summary, err := s.ledger.Summary(ctx, farmerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to build ledger summary: %w", err)
	}
	return summary, nil
}

func (s *ledgerService) AddCrop(ctx context.Context, farmerID int64, req *domain.CreateCropRequest) (*domain.CropRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.SowingDate.IsZero() {
		req.SowingDate = time.Now()
	}

	crop, err := s.ledger.CreateCrop(ctx, farmerID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create crop record: %w", err)
	}
	return crop, nil
}

func (s *ledgerService) ListCrops(ctx context.Context, farmerID int64) ([]domain.CropRecord, error) {
	return s.ledger.ListCrops(ctx, farmerID)
}

func (s *ledgerService) UpdateCropStatus(ctx context.Context, farmerID, cropID int64, status string) error {
	switch status {
	case domain.CropSown, domain.CropGrowing, domain.CropHarvested:
	default:
		return domain.Invalid("status", "status must be sown, growing or harvested")
	}
	return s.ledger.UpdateCropStatus(ctx, farmerID, cropID, status)
}
