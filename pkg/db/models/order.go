package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/localbasket/localbasket-backend/pkg/enums"
)

// Order is a placed checkout with its captured line items.
type Order struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID         `gorm:"column:user_id;type:uuid;index;not null"`
	Status    enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	Total     decimal.Decimal   `gorm:"column:total;type:numeric(10,2);not null"`
	Items     []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}
