package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/localbasket/localbasket-backend/internal/products"
	"github.com/localbasket/localbasket-backend/pkg/db/models"
)

// CartItemDTO is one cart line with its computed line total.
type CartItemDTO struct {
	ID        uuid.UUID           `json:"id"`
	Product   products.ProductDTO `json:"product"`
	Quantity  int                 `json:"quantity"`
	LineTotal decimal.Decimal     `json:"line_total"`
}

// CartDTO is the full cart with its running total.
type CartDTO struct {
	Items []CartItemDTO   `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// NewCartDTO maps cart rows (with preloaded products) onto the payload.
func NewCartDTO(items []models.CartItem) CartDTO {
	dto := CartDTO{Items: make([]CartItemDTO, 0, len(items)), Total: decimal.Zero}
	for i := range items {
		item := &items[i]
		if item.Product == nil {
			continue
		}
		lineTotal := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		dto.Items = append(dto.Items, CartItemDTO{
			ID:        item.ID,
			Product:   products.NewProductDTO(item.Product),
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
		})
		dto.Total = dto.Total.Add(lineTotal)
	}
	return dto
}

// AddItemInput adds a product to the cart or replaces its quantity.
type AddItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// UpdateItemInput changes a cart line's quantity.
type UpdateItemInput struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}
