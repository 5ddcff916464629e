package geo

import (
	"encoding/json"
	"fmt"
	"math"

	pkgerrors "github.com/localbasket/localbasket-backend/pkg/errors"
)

// StoragePoint is a geographic point in persistence order. It serializes as
// the ordered pair [longitude, latitude], matching the convention of the
// spatial index.
//
// StoragePoint and DisplayPoint are deliberately distinct types: mixing the
// two orderings corrupts geographic meaning without raising an error, so the
// only bridges between them are Display and Storage.
type StoragePoint struct {
	Lng float64
	Lat float64
}

// DisplayPoint is a geographic point in mapping-surface order. It serializes
// as {"lat": …, "lng": …}, matching the convention of map widgets and
// geolocation APIs.
type DisplayPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Display converts a stored point into mapping-surface order.
func (p StoragePoint) Display() DisplayPoint {
	return DisplayPoint{Lat: p.Lat, Lng: p.Lng}
}

// Storage converts a display point into persistence order.
func (p DisplayPoint) Storage() StoragePoint {
	return StoragePoint{Lng: p.Lng, Lat: p.Lat}
}

// Pair returns the raw [lng, lat] pair.
func (p StoragePoint) Pair() []float64 {
	return []float64{p.Lng, p.Lat}
}

// MarshalJSON emits the canonical [lng, lat] pair.
func (p StoragePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lng, p.Lat})
}

// UnmarshalJSON accepts the canonical [lng, lat] pair and validates it.
func (p *StoragePoint) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid or malformed coordinates")
	}
	parsed, err := ParseStorage(pair)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParseStorage is the single entry point for coordinate input arriving from
// outside the process (request payloads, import rows, stored records of
// unknown provenance). It requires exactly two finite numbers in [lng, lat]
// order, with longitude in [-180, 180] and latitude in [-90, 90].
func ParseStorage(pair []float64) (StoragePoint, error) {
	if len(pair) != 2 {
		return StoragePoint{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid or malformed coordinates").
			WithDetails(map[string]any{"expected": "[longitude, latitude]", "got_length": len(pair)})
	}

	lng, lat := pair[0], pair[1]
	if !isFinite(lng) || !isFinite(lat) {
		return StoragePoint{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid or malformed coordinates").
			WithDetails(map[string]any{"reason": "coordinates must be finite numbers"})
	}
	if lng < -180 || lng > 180 {
		return StoragePoint{}, pkgerrors.New(pkgerrors.CodeValidation, "longitude out of range").
			WithDetails(map[string]any{"longitude": lng, "range": "[-180, 180]"})
	}
	if lat < -90 || lat > 90 {
		return StoragePoint{}, pkgerrors.New(pkgerrors.CodeValidation, "latitude out of range").
			WithDetails(map[string]any{"latitude": lat, "range": "[-90, 90]"})
	}

	return StoragePoint{Lng: lng, Lat: lat}, nil
}

// ParseDisplay validates a display-order point through the same range checks.
func ParseDisplay(point DisplayPoint) (DisplayPoint, error) {
	parsed, err := ParseStorage([]float64{point.Lng, point.Lat})
	if err != nil {
		return DisplayPoint{}, err
	}
	return parsed.Display(), nil
}

func (p StoragePoint) String() string {
	return fmt.Sprintf("[%g, %g]", p.Lng, p.Lat)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
