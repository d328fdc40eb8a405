package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/platform/notify"
	"github.com/krishisetu/krishisetu/internal/repo/postgres"
	"github.com/krishisetu/krishisetu/pkg/config"
	"github.com/krishisetu/krishisetu/pkg/events"
	"github.com/krishisetu/krishisetu/pkg/logger"
)

type LearningService interface {
	ListContent(ctx context.Context, filter domain.ContentFilter) ([]domain.Content, error)
	GetContent(ctx context.Context, id int64) (*domain.Content, error)
	CreateContent(ctx context.Context, c *domain.Content) (*domain.Content, error)
	DeleteContent(ctx context.Context, id int64) error

	// SignedLink mints a short-lived token authorizing one content stream.
	SignedLink(contentID int64) (string, error)
	VerifyLink(token string) (int64, error)

	CreateWorkshop(ctx context.Context, req *domain.CreateWorkshopRequest) (*domain.Workshop, error)
	ListWorkshops(ctx context.Context, upcomingOnly bool, limit, offset int) ([]domain.Workshop, error)
	RegisterForWorkshop(ctx context.Context, workshopID, farmerID int64) (*domain.WorkshopRegistration, error)
}

type learningService struct {
	contents  postgres.ContentRepository
	workshops postgres.WorkshopRepository
	farmers   postgres.FarmerRepository
	email     notify.EmailSender
	eventBus  events.EventBus
	secret    []byte
	linkTTL   time.Duration
}

func NewLearningService(
	contents postgres.ContentRepository,
	workshops postgres.WorkshopRepository,
	farmers postgres.FarmerRepository,
	email notify.EmailSender,
	eventBus events.EventBus,
	authCfg config.AuthConfig,
) LearningService {
	return &learningService{
		contents:  contents,
		workshops: workshops,
		farmers:   farmers,
		email:     email,
		eventBus:  eventBus,
		secret:    []byte(authCfg.MediaSecret),
		linkTTL:   authCfg.MediaLinkTTL,
	}
}

func (s *learningService) ListContent(ctx context.Context, filter domain.ContentFilter) ([]domain.Content, error) {
	return s.contents.List(ctx, filter)
}

func (s *learningService) GetContent(ctx context.Context, id int64) (*domain.Content, error) {
	c, err := s.contents.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (s *learningService) CreateContent(ctx context.Context, c *domain.Content) (*domain.Content, error) {
	if c.Title == "" {
		return nil, domain.Invalid("title", "title is required")
	}
	switch c.Kind {
	case domain.ContentVideo, domain.ContentPDF, domain.ContentArticle:
	default:
		return nil, domain.Invalid("kind", "kind must be video, pdf or article")
	}

	created, err := s.contents.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to create content: %w", err)
	}
	return created, nil
}

func (s *learningService) DeleteContent(ctx context.Context, id int64) error {
	return s.contents.Delete(ctx, id)
}

type mediaClaims struct {
	ContentID int64 `json:"cid"`
	jwt.RegisteredClaims
}

func (s *learningService) SignedLink(contentID int64) (string, error) {
	now := time.Now()
	claims := mediaClaims{
		ContentID: contentID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.linkTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *learningService) VerifyLink(token string) (int64, error) {
	var claims mediaClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, domain.ErrUnauthenticated
	}
	return claims.ContentID, nil
}

func (s *learningService) CreateWorkshop(ctx context.Context, req *domain.CreateWorkshopRequest) (*domain.Workshop, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	w, err := s.workshops.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create workshop: %w", err)
	}
	return w, nil
}

func (s *learningService) ListWorkshops(ctx context.Context, upcomingOnly bool, limit, offset int) ([]domain.Workshop, error) {
	return s.workshops.List(ctx, upcomingOnly, limit, offset)
}

func (s *learningService) RegisterForWorkshop(ctx context.Context, workshopID, farmerID int64) (*domain.WorkshopRegistration, error) {
	w, err := s.workshops.FindByID(ctx, workshopID)
	if err != nil {
		return nil, fmt.Errorf("failed to find workshop: %w", err)
	}
	if w == nil {
		return nil, domain.ErrNotFound
	}

	reg, err := s.workshops.Register(ctx, workshopID, farmerID)
	if err != nil {
		return nil, err
	}

	if err := s.eventBus.Publish(ctx, events.WorkshopRegistered, events.WorkshopRegisteredEvent{
		WorkshopID: workshopID,
		FarmerID:   farmerID,
		At:         time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "failed to publish workshop registration event", "error", err, "workshop_id", workshopID)
	}

	s.sendConfirmation(ctx, w, farmerID)

	return reg, nil
}

// sendConfirmation is best effort; a failed mail never undoes a seat.
// Farmers without an email address on file are skipped.
func (s *learningService) sendConfirmation(ctx context.Context, w *domain.Workshop, farmerID int64) {
	farmer, err := s.farmers.FindByID(ctx, farmerID)
	if err != nil || farmer == nil || farmer.Email == "" {
		return
	}
	if err := s.email.SendWorkshopConfirmation(farmer.Email, farmer.Name, w.Title, w.Location); err != nil {
		logger.WarnContext(ctx, "failed to send workshop confirmation", "error", err, "workshop_id", w.ID, "farmer_id", farmerID)
	}
}
