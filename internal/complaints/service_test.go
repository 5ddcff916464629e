package complaints

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/localbasket/localbasket-backend/pkg/db/models"
	"github.com/localbasket/localbasket-backend/pkg/enums"
	pkgerrors "github.com/localbasket/localbasket-backend/pkg/errors"
)

type stubComplaintRepo struct {
	complaints map[uuid.UUID]*models.Complaint
}

func newStubComplaintRepo() *stubComplaintRepo {
	return &stubComplaintRepo{complaints: map[uuid.UUID]*models.Complaint{}}
}

func (s *stubComplaintRepo) Create(_ context.Context, complaint *models.Complaint) error {
	if complaint.ID == uuid.Nil {
		complaint.ID = uuid.New()
	}
	copied := *complaint
	s.complaints[complaint.ID] = &copied
	return nil
}

func (s *stubComplaintRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Complaint, error) {
	complaint, ok := s.complaints[id]
	if !ok {
		return nil, nil
	}
	copied := *complaint
	return &copied, nil
}

func (s *stubComplaintRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]models.Complaint, error) {
	var out []models.Complaint
	for _, c := range s.complaints {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *stubComplaintRepo) FindAll(_ context.Context, status string) ([]models.Complaint, error) {
	var out []models.Complaint
	for _, c := range s.complaints {
		if status == "" || c.Status.String() == status {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *stubComplaintRepo) Update(_ context.Context, complaint *models.Complaint) error {
	copied := *complaint
	s.complaints[complaint.ID] = &copied
	return nil
}

type stubComplaintPublisher struct {
	events []string
}

func (s *stubComplaintPublisher) PublishComplaintEvent(_ context.Context, eventType string, _ any) error {
	s.events = append(s.events, eventType)
	return nil
}

func TestCreateComplaintDefaultsCategoryAndPriority(t *testing.T) {
	repo := newStubComplaintRepo()
	publisher := &stubComplaintPublisher{}
	svc, err := NewService(repo, publisher, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.Create(context.Background(), uuid.New(), CreateComplaintInput{
		Title:       "Damaged delivery",
		Description: "The crate arrived crushed.",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if dto.Category != enums.ComplaintCategoryOther {
		t.Fatalf("expected category other, got %s", dto.Category)
	}
	if dto.Priority != enums.ComplaintPriorityMedium {
		t.Fatalf("expected priority medium, got %s", dto.Priority)
	}
	if dto.Status != enums.ComplaintStatusPending {
		t.Fatalf("expected pending, got %s", dto.Status)
	}
	if len(publisher.events) != 1 || publisher.events[0] != "complaint.created" {
		t.Fatalf("expected complaint.created event, got %v", publisher.events)
	}
}

func TestCreateComplaintRejectsUnknownCategory(t *testing.T) {
	svc, err := NewService(newStubComplaintRepo(), nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Create(context.Background(), uuid.New(), CreateComplaintInput{
		Title:       "t",
		Description: "d",
		Category:    "billing",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestListForUserOnlyReturnsOwnTickets(t *testing.T) {
	repo := newStubComplaintRepo()
	svc, err := NewService(repo, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ctx := context.Background()
	mine := uuid.New()
	other := uuid.New()
	if _, err := svc.Create(ctx, mine, CreateComplaintInput{Title: "a", Description: "d"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, other, CreateComplaintInput{Title: "b", Description: "d"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	tickets, err := svc.ListForUser(ctx, mine)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tickets) != 1 || tickets[0].Title != "a" {
		t.Fatalf("unexpected tickets %+v", tickets)
	}
}

func TestRespondUpdatesStatusAndResponse(t *testing.T) {
	repo := newStubComplaintRepo()
	svc, err := NewService(repo, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ctx := context.Background()
	dto, err := svc.Create(ctx, uuid.New(), CreateComplaintInput{Title: "t", Description: "d"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	adminID := uuid.New()
	updated, err := svc.Respond(ctx, dto.ID, adminID, RespondInput{
		Response: "We refunded the order.",
		Status:   "resolved",
	})
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if updated.Status != enums.ComplaintStatusResolved {
		t.Fatalf("expected resolved, got %s", updated.Status)
	}
	if updated.AdminResponse != "We refunded the order." {
		t.Fatalf("unexpected response %q", updated.AdminResponse)
	}

	stored := repo.complaints[dto.ID]
	if stored.AdminID == nil || *stored.AdminID != adminID {
		t.Fatal("admin id not recorded")
	}
}

func TestRespondTerminalTicketConflicts(t *testing.T) {
	repo := newStubComplaintRepo()
	svc, err := NewService(repo, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ctx := context.Background()
	dto, err := svc.Create(ctx, uuid.New(), CreateComplaintInput{Title: "t", Description: "d"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Respond(ctx, dto.ID, uuid.New(), RespondInput{Status: "rejected"}); err != nil {
		t.Fatalf("reject: %v", err)
	}

	_, err = svc.Respond(ctx, dto.ID, uuid.New(), RespondInput{Status: "in-progress"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestRespondRequiresSomething(t *testing.T) {
	svc, err := NewService(newStubComplaintRepo(), nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Respond(context.Background(), uuid.New(), uuid.New(), RespondInput{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}
