package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/localbasket/localbasket-backend/pkg/enums"
)

// Complaint is a support ticket raised by a user and triaged by the back
// office.
type Complaint struct {
	ID            uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	UserID        uuid.UUID               `gorm:"column:user_id;type:uuid;index;not null"`
	Title         string                  `gorm:"column:title;not null"`
	Description   string                  `gorm:"column:description;not null"`
	Status        enums.ComplaintStatus   `gorm:"column:status;not null;default:'pending'"`
	Category      enums.ComplaintCategory `gorm:"column:category;not null;default:'other'"`
	Priority      enums.ComplaintPriority `gorm:"column:priority;not null;default:'medium'"`
	AdminResponse string                  `gorm:"column:admin_response"`
	AdminID       *uuid.UUID              `gorm:"column:admin_id;type:uuid"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt     time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (Complaint) TableName() string {
	return "complaints"
}
