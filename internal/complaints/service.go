package complaints

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/localbasket/localbasket-backend/pkg/db/models"
	"github.com/localbasket/localbasket-backend/pkg/enums"
	pkgerrors "github.com/localbasket/localbasket-backend/pkg/errors"
	"github.com/localbasket/localbasket-backend/pkg/logger"
)

const complaintCreatedEvent = "complaint.created"

type eventPublisher interface {
	PublishComplaintEvent(ctx context.Context, eventType string, event any) error
}

// Service handles support tickets for users and the back office.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateComplaintInput) (*ComplaintDTO, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]ComplaintDTO, error)
	ListAll(ctx context.Context, status string) ([]ComplaintDTO, error)
	Respond(ctx context.Context, complaintID, adminID uuid.UUID, input RespondInput) (*ComplaintDTO, error)
}

type service struct {
	repo      Repository
	publisher eventPublisher
	logg      *logger.Logger
}

// NewService builds a complaint service. The publisher may be nil when event
// publishing is not configured.
func NewService(repo Repository, publisher eventPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("complaint repository required")
	}
	return &service{repo: repo, publisher: publisher, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateComplaintInput) (*ComplaintDTO, error) {
	category, err := enums.ParseComplaintCategory(input.Category)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	priority, err := enums.ParseComplaintPriority(input.Priority)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	complaint := &models.Complaint{
		UserID:      userID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      enums.ComplaintStatusPending,
		Category:    category,
		Priority:    priority,
	}
	if err := s.repo.Create(ctx, complaint); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create complaint")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "complaint_id", complaint.ID.String()), "complaints.created")
	}
	s.publishCreated(ctx, complaint)

	dto := NewComplaintDTO(complaint)
	return &dto, nil
}

// publishCreated emits complaint.created best-effort.
func (s *service) publishCreated(ctx context.Context, complaint *models.Complaint) {
	if s.publisher == nil {
		return
	}
	event := ComplaintCreatedEvent{
		ComplaintID: complaint.ID,
		UserID:      complaint.UserID,
		Category:    complaint.Category,
		Priority:    complaint.Priority,
		CreatedAt:   complaint.CreatedAt,
	}
	if err := s.publisher.PublishComplaintEvent(ctx, complaintCreatedEvent, event); err != nil && s.logg != nil {
		s.logg.Error(ctx, "complaints.publish_created.failed", err)
	}
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]ComplaintDTO, error) {
	rows, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list complaints")
	}
	return mapComplaints(rows), nil
}

func (s *service) ListAll(ctx context.Context, status string) ([]ComplaintDTO, error) {
	if status != "" {
		if _, err := enums.ParseComplaintStatus(status); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
	}
	rows, err := s.repo.FindAll(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list complaints")
	}
	return mapComplaints(rows), nil
}

// Respond applies the admin update: an optional response message and an
// optional status move. Resolved and rejected tickets are terminal.
func (s *service) Respond(ctx context.Context, complaintID, adminID uuid.UUID, input RespondInput) (*ComplaintDTO, error) {
	if strings.TrimSpace(input.Response) == "" && input.Status == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}

	complaint, err := s.repo.FindByID(ctx, complaintID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load complaint")
	}
	if complaint == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "complaint not found")
	}
	if complaint.Status == enums.ComplaintStatusResolved || complaint.Status == enums.ComplaintStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("complaint already %s", complaint.Status))
	}

	if input.Status != "" {
		status, err := enums.ParseComplaintStatus(input.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		complaint.Status = status
	}
	if response := strings.TrimSpace(input.Response); response != "" {
		complaint.AdminResponse = response
	}
	complaint.AdminID = &adminID

	if err := s.repo.Update(ctx, complaint); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update complaint")
	}

	if s.logg != nil {
		fields := s.logg.WithFields(ctx, map[string]any{
			"complaint_id": complaintID.String(),
			"status":       complaint.Status.String(),
		})
		s.logg.Info(fields, "complaints.responded")
	}
	dto := NewComplaintDTO(complaint)
	return &dto, nil
}

func mapComplaints(rows []models.Complaint) []ComplaintDTO {
	dtos := make([]ComplaintDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, NewComplaintDTO(&rows[i]))
	}
	return dtos
}
