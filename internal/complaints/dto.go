package complaints

import (
	"time"

	"github.com/google/uuid"

	"github.com/localbasket/localbasket-backend/pkg/db/models"
	"github.com/localbasket/localbasket-backend/pkg/enums"
)

// ComplaintDTO is the API shape of a support ticket.
type ComplaintDTO struct {
	ID            uuid.UUID               `json:"id"`
	Title         string                  `json:"title"`
	Description   string                  `json:"description"`
	Status        enums.ComplaintStatus   `json:"status"`
	Category      enums.ComplaintCategory `json:"category"`
	Priority      enums.ComplaintPriority `json:"priority"`
	AdminResponse string                  `json:"admin_response,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// NewComplaintDTO maps a complaint row onto the payload.
func NewComplaintDTO(c *models.Complaint) ComplaintDTO {
	return ComplaintDTO{
		ID:            c.ID,
		Title:         c.Title,
		Description:   c.Description,
		Status:        c.Status,
		Category:      c.Category,
		Priority:      c.Priority,
		AdminResponse: c.AdminResponse,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// CreateComplaintInput opens a ticket. Category and priority fall back to
// "other" / "medium" when omitted.
type CreateComplaintInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
	Category    string `json:"category" validate:"omitempty"`
	Priority    string `json:"priority" validate:"omitempty"`
}

// RespondInput is the admin triage update: any combination of a response
// message and a status move.
type RespondInput struct {
	Response string `json:"response" validate:"omitempty,max=5000"`
	Status   string `json:"status" validate:"omitempty"`
}

// ComplaintCreatedEvent is the payload published when a ticket opens.
type ComplaintCreatedEvent struct {
	ComplaintID uuid.UUID               `json:"complaint_id"`
	UserID      uuid.UUID               `json:"user_id"`
	Category    enums.ComplaintCategory `json:"category"`
	Priority    enums.ComplaintPriority `json:"priority"`
	CreatedAt   time.Time               `json:"created_at"`
}
