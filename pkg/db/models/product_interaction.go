package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/localbasket/localbasket-backend/pkg/enums"
)

// ProductInteraction is a behavioral signal (view/cart/purchase) recorded
// locally and consumed by the external recommendation service.
type ProductInteraction struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	UserID          uuid.UUID             `gorm:"column:user_id;type:uuid;index;not null"`
	ProductID       uuid.UUID             `gorm:"column:product_id;type:uuid;index;not null"`
	InteractionType enums.InteractionType `gorm:"column:interaction_type;index;not null"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (ProductInteraction) TableName() string {
	return "product_interactions"
}
