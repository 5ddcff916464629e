package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/localbasket/localbasket-backend/pkg/db/models"
	"github.com/localbasket/localbasket-backend/pkg/geo"
)

// ProductDTO is the listing payload returned to clients. StorePoint, when
// present, serializes in canonical [lng, lat] order.
type ProductDTO struct {
	ID             uuid.UUID         `json:"id"`
	Image          *string           `json:"image,omitempty"`
	Title          string            `json:"title"`
	Description    *string           `json:"description,omitempty"`
	Category       string            `json:"category"`
	Brand          string            `json:"brand,omitempty"`
	Tags           []string          `json:"tags"`
	ExpirationDate *time.Time        `json:"expiration_date,omitempty"`
	Quantity       int               `json:"quantity"`
	Unit           string            `json:"unit"`
	Price          decimal.Decimal   `json:"price"`
	StoreLocation  string            `json:"store_location,omitempty"`
	StorePoint     *geo.StoragePoint `json:"store_point,omitempty"`
	IsCollected    bool              `json:"is_collected"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// NewProductDTO maps a stored product onto the client payload.
func NewProductDTO(m *models.Product) ProductDTO {
	dto := ProductDTO{
		ID:             m.ID,
		Image:          m.Image,
		Title:          m.Title,
		Description:    m.Description,
		Category:       m.Category,
		Brand:          m.Brand,
		Tags:           append([]string{}, m.Tags...),
		ExpirationDate: m.ExpirationDate,
		Quantity:       m.Quantity,
		Unit:           m.Unit.String(),
		Price:          m.Price,
		StoreLocation:  m.StoreLocation,
		IsCollected:    m.IsCollected,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if point, ok := m.StorePoint(); ok {
		dto.StorePoint = &point
	}
	return dto
}

// CreateProductInput carries a new listing. Coordinates, when supplied, are
// the raw [lng, lat] pair and must validate as such.
type CreateProductInput struct {
	Image          *string    `json:"image" validate:"omitempty,url"`
	Title          string     `json:"title" validate:"required,min=2,max=200"`
	Description    *string    `json:"description" validate:"omitempty,max=5000"`
	Category       string     `json:"category" validate:"required,min=2,max=100"`
	Brand          string     `json:"brand" validate:"omitempty,max=100"`
	Tags           []string   `json:"tags" validate:"omitempty,max=20,dive,min=1,max=50"`
	ExpirationDate *time.Time `json:"expiration_date"`
	Quantity       int        `json:"quantity" validate:"gte=0"`
	Unit           string     `json:"unit" validate:"omitempty,oneof=kg L pcs"`
	Price          string     `json:"price" validate:"required"`
	StoreLocation  string     `json:"store_location" validate:"omitempty,max=300"`
	Coordinates    []float64  `json:"coordinates" validate:"omitempty"`
}

// UpdateProductInput carries a partial listing update. Nil fields are left
// untouched; an explicit empty Coordinates slice clears the geo point.
type UpdateProductInput struct {
	Image          *string    `json:"image" validate:"omitempty,url"`
	Title          *string    `json:"title" validate:"omitempty,min=2,max=200"`
	Description    *string    `json:"description" validate:"omitempty,max=5000"`
	Category       *string    `json:"category" validate:"omitempty,min=2,max=100"`
	Brand          *string    `json:"brand" validate:"omitempty,max=100"`
	Tags           *[]string  `json:"tags" validate:"omitempty,max=20,dive,min=1,max=50"`
	ExpirationDate *time.Time `json:"expiration_date"`
	Quantity       *int       `json:"quantity" validate:"omitempty,gte=0"`
	Unit           *string    `json:"unit" validate:"omitempty,oneof=kg L pcs"`
	Price          *string    `json:"price"`
	StoreLocation  *string    `json:"store_location" validate:"omitempty,max=300"`
	Coordinates    *[]float64 `json:"coordinates"`
}

// ImportRow is one line of a bulk import. Longitude and latitude arrive as
// separate columns; a row supplies both or neither.
type ImportRow struct {
	Image          *string    `json:"image" validate:"omitempty,url"`
	Title          string     `json:"title" validate:"required,min=2,max=200"`
	Description    *string    `json:"description" validate:"omitempty,max=5000"`
	Category       string     `json:"category" validate:"required,min=2,max=100"`
	Brand          string     `json:"brand" validate:"omitempty,max=100"`
	Tags           []string   `json:"tags" validate:"omitempty,max=20,dive,min=1,max=50"`
	ExpirationDate *time.Time `json:"expiration_date"`
	Quantity       int        `json:"quantity" validate:"gte=0"`
	Unit           string     `json:"unit" validate:"omitempty,oneof=kg L pcs"`
	Price          string     `json:"price" validate:"required"`
	StoreLocation  string     `json:"store_location" validate:"omitempty,max=300"`
	Longitude      *float64   `json:"longitude"`
	Latitude       *float64   `json:"latitude"`
}

// ImportResult summarizes a bulk import run.
type ImportResult struct {
	Imported int              `json:"imported"`
	Failed   int              `json:"failed"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

// ImportRowError points at the offending row by zero-based index.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}
