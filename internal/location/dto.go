package location

import (
	"time"

	"github.com/google/uuid"

	"github.com/localbasket/localbasket-backend/internal/products"
	"github.com/localbasket/localbasket-backend/pkg/db/models"
	"github.com/localbasket/localbasket-backend/pkg/geo"
)

// AddressDTO is the stored address payload returned to clients. Coordinates
// serialize in canonical [lng, lat] order.
type AddressDTO struct {
	ID          uuid.UUID        `json:"id"`
	Address     string           `json:"address"`
	City        string           `json:"city,omitempty"`
	Pincode     string           `json:"pincode,omitempty"`
	Phone       string           `json:"phone,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	Coordinates geo.StoragePoint `json:"coordinates"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewAddressDTO maps a stored address onto the client payload.
func NewAddressDTO(m *models.Address) AddressDTO {
	return AddressDTO{
		ID:          m.ID,
		Address:     m.Address,
		City:        m.City,
		Pincode:     m.Pincode,
		Phone:       m.Phone,
		Notes:       m.Notes,
		Coordinates: m.Point(),
		UpdatedAt:   m.UpdatedAt,
	}
}

// UpsertAddressInput carries an address write. Coordinates are the raw
// [lng, lat] pair and go through ParseStorage before anything touches the
// database.
type UpsertAddressInput struct {
	Address     string    `json:"address" validate:"required,min=3,max=500"`
	City        string    `json:"city" validate:"omitempty,max=100"`
	Pincode     string    `json:"pincode" validate:"omitempty,max=20"`
	Phone       string    `json:"phone" validate:"omitempty,max=20"`
	Notes       string    `json:"notes" validate:"omitempty,max=1000"`
	Coordinates []float64 `json:"coordinates" validate:"required"`
}

// NearbyParams tune a proximity query. MaxDistanceKm <= 0 selects the
// configured default radius.
type NearbyParams struct {
	MaxDistanceKm float64
	Category      string
	Brand         string
	Limit         int
}

// NearbyProduct is one proximity search hit: the listing plus its
// great-circle distance from the query origin in kilometers.
type NearbyProduct struct {
	products.ProductDTO
	DistanceKm float64 `json:"distance_km"`
}

// SearchByLocationInput is the explicit-origin search request body.
type SearchByLocationInput struct {
	Coordinates   []float64 `json:"coordinates" validate:"required"`
	MaxDistanceKm float64   `json:"max_distance_km" validate:"omitempty,gt=0"`
	Category      string    `json:"category" validate:"omitempty,max=100"`
	Brand         string    `json:"brand" validate:"omitempty,max=100"`
}
