package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/localbasket/localbasket-backend/pkg/enums"
	"github.com/localbasket/localbasket-backend/pkg/geo"
)

// Product is a marketplace listing. StoreLng/StoreLat hold the pickup point
// in canonical [lng, lat] storage order; both are nil when the administrator
// never placed the store on the map, which structurally excludes the listing
// from proximity queries.
type Product struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Image       *string   `gorm:"column:image"`
	Title       string    `gorm:"column:title;not null"`
	Description *string   `gorm:"column:description"`
	Category    string    `gorm:"column:category;index;not null"`
	Brand       string    `gorm:"column:brand;index"`
	// Stored as text[] on Postgres (see migrations); the tag stays
	// dialect-neutral so the SQLite dev schema can be synced from the model.
	Tags           pq.StringArray    `gorm:"column:tags;type:text"`
	ExpirationDate *time.Time        `gorm:"column:expiration_date"`
	Quantity       int               `gorm:"column:quantity;not null;default:0"`
	Unit           enums.ProductUnit `gorm:"column:unit;not null;default:'pcs'"`
	Price          decimal.Decimal   `gorm:"column:price;type:numeric(10,2);not null;default:0"`
	StoreLocation  string            `gorm:"column:store_location"`
	StoreLng       *float64          `gorm:"column:store_lng"`
	StoreLat       *float64          `gorm:"column:store_lat"`
	IsCollected    bool              `gorm:"column:is_collected;not null;default:false"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}

// StorePoint returns the stored geo point when both coordinates are present.
func (p *Product) StorePoint() (geo.StoragePoint, bool) {
	if p == nil || p.StoreLng == nil || p.StoreLat == nil {
		return geo.StoragePoint{}, false
	}
	return geo.StoragePoint{Lng: *p.StoreLng, Lat: *p.StoreLat}, true
}

// SetStorePoint records the pickup point in storage order.
func (p *Product) SetStorePoint(point geo.StoragePoint) {
	lng, lat := point.Lng, point.Lat
	p.StoreLng = &lng
	p.StoreLat = &lat
}

// ClearStorePoint removes the geo point, excluding the product from
// proximity queries.
func (p *Product) ClearStorePoint() {
	p.StoreLng = nil
	p.StoreLat = nil
}
