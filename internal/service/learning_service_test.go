package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/service"
	"github.com/krishisetu/krishisetu/pkg/config"
	"github.com/krishisetu/krishisetu/pkg/events"
)

// ---------- Mocks ----------

type mockContentRepo struct{}

func (m *mockContentRepo) Create(_ context.Context, c *domain.Content) (*domain.Content, error) {
	return c, nil
}

func (m *mockContentRepo) FindByID(_ context.Context, id int64) (*domain.Content, error) {
	return nil, nil
}

func (m *mockContentRepo) List(_ context.Context, filter domain.ContentFilter) ([]domain.Content, error) {
	return nil, nil
}

func (m *mockContentRepo) Delete(_ context.Context, id int64) error { return nil }

type mockWorkshopRepo struct {
	workshops map[int64]*domain.Workshop
}

func newMockWorkshopRepo() *mockWorkshopRepo {
	return &mockWorkshopRepo{workshops: make(map[int64]*domain.Workshop)}
}

func (m *mockWorkshopRepo) Create(_ context.Context, req *domain.CreateWorkshopRequest) (*domain.Workshop, error) {
	w := &domain.Workshop{
		ID:          int64(len(m.workshops) + 1),
		Title:       req.Title,
		ScheduledAt: req.ScheduledAt,
		Location:    req.Location,
		Capacity:    req.Capacity,
	}
	m.workshops[w.ID] = w
	return w, nil
}

func (m *mockWorkshopRepo) FindByID(_ context.Context, id int64) (*domain.Workshop, error) {
	return m.workshops[id], nil
}

func (m *mockWorkshopRepo) List(_ context.Context, upcomingOnly bool, limit, offset int) ([]domain.Workshop, error) {
	return nil, nil
}

func (m *mockWorkshopRepo) Register(_ context.Context, workshopID, farmerID int64) (*domain.WorkshopRegistration, error) {
	w := m.workshops[workshopID]
	if w == nil || w.Registered >= w.Capacity {
		return nil, domain.ErrWorkshopFull
	}
	w.Registered++
	return &domain.WorkshopRegistration{ID: 1, WorkshopID: workshopID, FarmerID: farmerID}, nil
}

func (m *mockWorkshopRepo) ListRegistrations(_ context.Context, workshopID int64) ([]domain.WorkshopRegistration, error) {
	return nil, nil
}

type mockEmail struct {
	confirmations []string // "to|title|location"
	sendErr       error
}

func (m *mockEmail) Send(toEmail, toName, subject, text, html string) (string, error) {
	return "", m.sendErr
}

func (m *mockEmail) SendBookingUpdate(toEmail, toName, topic, status string) error {
	return m.sendErr
}

func (m *mockEmail) SendWorkshopConfirmation(toEmail, toName, title, location string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.confirmations = append(m.confirmations, toEmail+"|"+title+"|"+location)
	return nil
}

// ---------- Fixture ----------

type learningFixture struct {
	svc       service.LearningService
	workshops *mockWorkshopRepo
	farmers   *mockFarmerRepo
	email     *mockEmail
}

func newLearningFixture(t *testing.T) *learningFixture {
	t.Helper()

	workshops := newMockWorkshopRepo()
	farmers := newMockFarmerRepo()
	email := &mockEmail{}

	svc := service.NewLearningService(&mockContentRepo{}, workshops, farmers, email, events.NopEventBus{}, config.AuthConfig{
		MediaSecret:  "test-secret",
		MediaLinkTTL: time.Minute,
	})
	return &learningFixture{svc: svc, workshops: workshops, farmers: farmers, email: email}
}

func (f *learningFixture) addWorkshop(id int64, title, location string, capacity int) *domain.Workshop {
	w := &domain.Workshop{
		ID:          id,
		Title:       title,
		Location:    location,
		Capacity:    capacity,
		ScheduledAt: time.Now().Add(48 * time.Hour),
	}
	f.workshops.workshops[id] = w
	return w
}

// ---------- Workshop registration ----------

func TestRegisterForWorkshopSendsConfirmation(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()

	farmer := f.farmers.add(&domain.Farmer{Phone: "9876543210", Email: "ramesh@example.com", Name: "Ramesh", IsActive: true})
	f.addWorkshop(1, "Drip irrigation basics", "Nashik KVK", 30)

	reg, err := f.svc.RegisterForWorkshop(ctx, 1, farmer.ID)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.WorkshopID != 1 || reg.FarmerID != farmer.ID {
		t.Errorf("bad registration %+v", reg)
	}

	want := "ramesh@example.com|Drip irrigation basics|Nashik KVK"
	if len(f.email.confirmations) != 1 || f.email.confirmations[0] != want {
		t.Errorf("confirmations = %v, want [%s]", f.email.confirmations, want)
	}
}

func TestRegisterForWorkshopNoEmailOnFile(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()

	farmer := f.farmers.add(&domain.Farmer{Phone: "9876543210", IsActive: true})
	f.addWorkshop(1, "Soil testing camp", "Pune", 30)

	if _, err := f.svc.RegisterForWorkshop(ctx, 1, farmer.ID); err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(f.email.confirmations) != 0 {
		t.Errorf("unexpected confirmations %v", f.email.confirmations)
	}
}

func TestRegisterForWorkshopEmailFailureKeepsSeat(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()

	farmer := f.farmers.add(&domain.Farmer{Phone: "9876543210", Email: "ramesh@example.com", IsActive: true})
	w := f.addWorkshop(1, "Kisan credit card workshop", "Indore", 30)
	f.email.sendErr = errors.New("smtp down")

	reg, err := f.svc.RegisterForWorkshop(ctx, 1, farmer.ID)
	if err != nil {
		t.Fatalf("register despite mail failure: %v", err)
	}
	if reg == nil || w.Registered != 1 {
		t.Errorf("seat not kept: reg=%+v registered=%d", reg, w.Registered)
	}
}

func TestRegisterForWorkshopFull(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()

	farmer := f.farmers.add(&domain.Farmer{Phone: "9876543210", Email: "ramesh@example.com", IsActive: true})
	f.addWorkshop(1, "Polyhouse tour", "Baramati", 0)

	_, err := f.svc.RegisterForWorkshop(ctx, 1, farmer.ID)
	if !errors.Is(err, domain.ErrWorkshopFull) {
		t.Fatalf("expected ErrWorkshopFull, got %v", err)
	}
	if len(f.email.confirmations) != 0 {
		t.Errorf("confirmation sent for a full workshop: %v", f.email.confirmations)
	}
}
