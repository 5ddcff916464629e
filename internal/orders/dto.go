package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/localbasket/localbasket-backend/pkg/db/models"
	"github.com/localbasket/localbasket-backend/pkg/enums"
)

// OrderLineItemDTO is one captured product line.
type OrderLineItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderDTO is the API shape of a placed order.
type OrderDTO struct {
	ID        uuid.UUID          `json:"id"`
	Status    enums.OrderStatus  `json:"status"`
	Total     decimal.Decimal    `json:"total"`
	Items     []OrderLineItemDTO `json:"items"`
	CreatedAt time.Time          `json:"created_at"`
}

// NewOrderDTO maps an order and its line items onto the payload.
func NewOrderDTO(order *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:        order.ID,
		Status:    order.Status,
		Total:     order.Total,
		Items:     make([]OrderLineItemDTO, 0, len(order.Items)),
		CreatedAt: order.CreatedAt,
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderLineItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return dto
}

// UpdateStatusInput moves an order along its lifecycle.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// OrderCreatedEvent is the payload published on order placement.
type OrderCreatedEvent struct {
	OrderID   uuid.UUID       `json:"order_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
	CreatedAt time.Time       `json:"created_at"`
}
