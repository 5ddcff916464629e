package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/localbasket/localbasket-backend/pkg/geo"
)

// Address is a user's delivery/reference location. The unique index on
// user_id enforces the one-address-per-user invariant; writes go through a
// single conflict-aware upsert so concurrent updates settle on
// last-write-wins at the database.
type Address struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;uniqueIndex;not null"`
	Address   string    `gorm:"column:address;not null"`
	City      string    `gorm:"column:city"`
	Pincode   string    `gorm:"column:pincode"`
	Phone     string    `gorm:"column:phone"`
	Notes     string    `gorm:"column:notes"`
	Lng       float64   `gorm:"column:lng;not null"`
	Lat       float64   `gorm:"column:lat;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Address) TableName() string {
	return "addresses"
}

// Point returns the stored location in storage order.
func (a *Address) Point() geo.StoragePoint {
	return geo.StoragePoint{Lng: a.Lng, Lat: a.Lat}
}

// SetPoint records the location in storage order.
func (a *Address) SetPoint(point geo.StoragePoint) {
	a.Lng = point.Lng
	a.Lat = point.Lat
}
