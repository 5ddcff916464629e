package location

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/localbasket/localbasket-backend/pkg/config"
	"github.com/localbasket/localbasket-backend/pkg/db/models"
	pkgerrors "github.com/localbasket/localbasket-backend/pkg/errors"
	"github.com/localbasket/localbasket-backend/pkg/geo"
	"github.com/localbasket/localbasket-backend/pkg/geocode"
	"github.com/localbasket/localbasket-backend/pkg/logger"
	"github.com/localbasket/localbasket-backend/pkg/metrics"
)

// Service is the location-aware surface: the per-user address store, the
// nearby product search and reverse geocoding for map selections.
type Service interface {
	GetAddress(ctx context.Context, userID uuid.UUID) (*AddressDTO, error)
	UpsertAddress(ctx context.Context, userID uuid.UUID, input UpsertAddressInput) (*AddressDTO, error)
	FindNearby(ctx context.Context, origin geo.StoragePoint, params NearbyParams) ([]NearbyProduct, error)
	NearbyForUser(ctx context.Context, userID uuid.UUID, params NearbyParams) ([]NearbyProduct, error)
	SearchByLocation(ctx context.Context, input SearchByLocationInput) ([]NearbyProduct, error)
	ReversePoint(ctx context.Context, point geo.DisplayPoint) (geocode.AddressFields, error)
	Picker(callbacks PickerCallbacks) *Picker
}

type service struct {
	repo     Repository
	cache    *nearbyCache
	geocoder ReverseGeocoder
	cfg      config.NearbyConfig
	driver   string
	geoStat  *metrics.GeoMetrics
	logg     *logger.Logger
}

// NewService builds the location service. A nil geocoder disables reverse
// lookups; everything else keeps working.
func NewService(repo Repository, store cacheStore, geocoder ReverseGeocoder, cfg config.NearbyConfig, driver string, geoStat *metrics.GeoMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("location repository required")
	}
	if cfg.DefaultRadiusKm <= 0 {
		cfg.DefaultRadiusKm = 10
	}
	return &service{
		repo:     repo,
		cache:    newNearbyCache(store, cfg.CacheTTL, logg),
		geocoder: geocoder,
		cfg:      cfg,
		driver:   driver,
		geoStat:  geoStat,
		logg:     logg,
	}, nil
}

// GetAddress returns the user's stored address, or nil when none exists.
// Absence is a normal state, not an error.
func (s *service) GetAddress(ctx context.Context, userID uuid.UUID) (*AddressDTO, error) {
	address, err := s.repo.FindAddressByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
	}
	if address == nil {
		return nil, nil
	}
	dto := NewAddressDTO(address)
	return &dto, nil
}

func (s *service) UpsertAddress(ctx context.Context, userID uuid.UUID, input UpsertAddressInput) (*AddressDTO, error) {
	point, err := geo.ParseStorage(input.Coordinates)
	if err != nil {
		return nil, err
	}

	address := &models.Address{
		UserID:  userID,
		Address: input.Address,
		City:    input.City,
		Pincode: input.Pincode,
		Phone:   input.Phone,
		Notes:   input.Notes,
	}
	address.SetPoint(point)

	saved, err := s.repo.UpsertAddress(ctx, address)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save address")
	}
	if saved == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "address missing after upsert")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "address_id", saved.ID.String()), "location.address.saved")
	}
	dto := NewAddressDTO(saved)
	return &dto, nil
}

// FindNearby runs the proximity query around an explicit origin. The radius
// defaults and clamps from configuration; results arrive sorted by ascending
// great-circle distance, each carrying its fractional distance_km.
func (s *service) FindNearby(ctx context.Context, origin geo.StoragePoint, params NearbyParams) ([]NearbyProduct, error) {
	radius := params.MaxDistanceKm
	if radius <= 0 {
		radius = s.cfg.DefaultRadiusKm
	}
	if s.cfg.MaxRadiusKm > 0 && radius > s.cfg.MaxRadiusKm {
		radius = s.cfg.MaxRadiusKm
	}

	if cached, ok := s.cache.get(ctx, origin, radius, params); ok {
		s.geoStat.IncCacheHit()
		return cached, nil
	}
	s.geoStat.IncCacheMiss()

	start := time.Now()
	results, err := s.repo.FindNearby(ctx, origin, radius, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "nearby query")
	}
	s.geoStat.ObserveNearbyQuery(s.driver, len(results), time.Since(start))

	s.cache.put(ctx, origin, radius, params, results)
	return results, nil
}

// NearbyForUser resolves the user's stored address into a query origin. A
// missing address and an address with corrupt coordinates are distinct
// failures, and both are distinct from a valid address with zero matches.
func (s *service) NearbyForUser(ctx context.Context, userID uuid.UUID, params NearbyParams) ([]NearbyProduct, error) {
	address, err := s.repo.FindAddressByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
	}
	if address == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no address on file: define your address")
	}

	origin, err := geo.ParseStorage([]float64{address.Lng, address.Lat})
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address has invalid coordinates")
	}

	return s.FindNearby(ctx, origin, params)
}

// SearchByLocation is the explicit-origin variant: the raw pair must pass
// ParseStorage before any query executes.
func (s *service) SearchByLocation(ctx context.Context, input SearchByLocationInput) ([]NearbyProduct, error) {
	origin, err := geo.ParseStorage(input.Coordinates)
	if err != nil {
		return nil, err
	}
	return s.FindNearby(ctx, origin, NearbyParams{
		MaxDistanceKm: input.MaxDistanceKm,
		Category:      input.Category,
		Brand:         input.Brand,
	})
}

// ReversePoint resolves a validated display point into address fields.
func (s *service) ReversePoint(ctx context.Context, point geo.DisplayPoint) (geocode.AddressFields, error) {
	display, err := geo.ParseDisplay(point)
	if err != nil {
		return geocode.AddressFields{}, err
	}
	if s.geocoder == nil {
		return geocode.AddressFields{}, pkgerrors.New(pkgerrors.CodeDependency, "reverse geocoding not configured")
	}

	fields, err := s.geocoder.Reverse(ctx, display)
	if err != nil {
		s.geoStat.IncGeocodeFailure()
		if typed := pkgerrors.As(err); typed != nil {
			return geocode.AddressFields{}, typed
		}
		return geocode.AddressFields{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reverse geocode")
	}
	return fields, nil
}

// Picker builds a map-selection cycle bound to this service's geocoder and
// metrics.
func (s *service) Picker(callbacks PickerCallbacks) *Picker {
	return NewPicker(s.geocoder, defaultGeocodeTimeout, callbacks, s.geoStat, s.logg)
}
