package geo

import "math"

// EarthRadiusKm is the mean earth radius used by the spherical distance model.
const EarthRadiusKm = 6371.0

// Haversine returns the great-circle distance between two points in
// kilometers on a spherical earth. Proximity ranking uses this model rather
// than a flat-plane approximation so it stays consistent with the
// database-native spatial index.
func Haversine(a, b StoragePoint) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Box is a latitude/longitude window enclosing a search radius. It is used
// as a cheap prefilter on engines without a native spatial index; candidates
// inside the box still go through Haversine for the exact cut.
type Box struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// FullLongitude reports whether the box spans every longitude, which happens
// near the poles where a fixed radius covers all meridians.
func (b Box) FullLongitude() bool {
	return b.MinLng <= -180 && b.MaxLng >= 180
}

// BoundingBox returns the smallest lat/lng window guaranteed to contain every
// point within radiusKm of origin. The longitude delta widens by the cosine
// of the latitude; at extreme latitudes it degrades to the full longitude
// range rather than producing an invalid window.
func BoundingBox(origin StoragePoint, radiusKm float64) Box {
	if radiusKm < 0 {
		radiusKm = 0
	}

	latDelta := degrees(radiusKm / EarthRadiusKm)
	box := Box{
		MinLat: math.Max(origin.Lat-latDelta, -90),
		MaxLat: math.Min(origin.Lat+latDelta, 90),
	}

	cosLat := math.Cos(radians(origin.Lat))
	if cosLat <= 1e-10 {
		box.MinLng, box.MaxLng = -180, 180
		return box
	}

	lngDelta := degrees(radiusKm / (EarthRadiusKm * cosLat))
	if lngDelta >= 180 {
		box.MinLng, box.MaxLng = -180, 180
		return box
	}

	box.MinLng = origin.Lng - lngDelta
	box.MaxLng = origin.Lng + lngDelta
	if box.MinLng < -180 || box.MaxLng > 180 {
		// Crossing the antimeridian: widen to the full range instead of
		// emitting a window the SQL BETWEEN predicate cannot express.
		box.MinLng, box.MaxLng = -180, 180
	}
	return box
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
