package location

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/localbasket/localbasket-backend/internal/products"
	"github.com/localbasket/localbasket-backend/pkg/config"
	"github.com/localbasket/localbasket-backend/pkg/db"
	"github.com/localbasket/localbasket-backend/pkg/db/models"
	pkgerrors "github.com/localbasket/localbasket-backend/pkg/errors"
	"github.com/localbasket/localbasket-backend/pkg/geo"
	"github.com/localbasket/localbasket-backend/pkg/geocode"
	pkgredis "github.com/localbasket/localbasket-backend/pkg/redis"
)

type stubLocationRepo struct {
	address     *models.Address
	addressErr  error
	lastOrigin  geo.StoragePoint
	lastRadius  float64
	lastParams  NearbyParams
	nearbyCalls int
	results     []NearbyProduct
	upserted    *models.Address
}

func (s *stubLocationRepo) FindAddressByUserID(context.Context, uuid.UUID) (*models.Address, error) {
	return s.address, s.addressErr
}

func (s *stubLocationRepo) UpsertAddress(_ context.Context, address *models.Address) (*models.Address, error) {
	s.upserted = address
	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	return address, nil
}

func (s *stubLocationRepo) FindNearby(_ context.Context, origin geo.StoragePoint, radiusKm float64, params NearbyParams) ([]NearbyProduct, error) {
	s.nearbyCalls++
	s.lastOrigin = origin
	s.lastRadius = radiusKm
	s.lastParams = params
	return s.results, nil
}

type stubCache struct {
	entries map[string]string
	puts    int
}

func (s *stubCache) Get(_ context.Context, key string) (string, error) {
	if v, ok := s.entries[key]; ok {
		return v, nil
	}
	return "", pkgredis.Nil
}

func (s *stubCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if s.entries == nil {
		s.entries = map[string]string{}
	}
	s.entries[key] = value.(string)
	s.puts++
	return nil
}

func (s *stubCache) CacheKey(parts ...string) string {
	key := "cache"
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

func newTestService(t *testing.T, repo Repository, store cacheStore) Service {
	t.Helper()
	svc, err := NewService(repo, store, nil, config.NearbyConfig{
		DefaultRadiusKm: 10,
		MaxRadiusKm:     200,
		CacheTTL:        30 * time.Second,
	}, db.DriverSQLite, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNearbyForUserWithoutAddress(t *testing.T) {
	repo := &stubLocationRepo{}
	svc := newTestService(t, repo, nil)

	_, err := svc.NearbyForUser(context.Background(), uuid.New(), NearbyParams{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if typed.Message() != "no address on file: define your address" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
	if repo.nearbyCalls != 0 {
		t.Fatal("no query should run without an address")
	}
}

func TestNearbyForUserWithCorruptCoordinates(t *testing.T) {
	repo := &stubLocationRepo{
		address: &models.Address{UserID: uuid.New(), Address: "somewhere", Lng: 2.35, Lat: 95},
	}
	svc := newTestService(t, repo, nil)

	_, err := svc.NearbyForUser(context.Background(), uuid.New(), NearbyParams{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if repo.nearbyCalls != 0 {
		t.Fatal("no query should run with corrupt coordinates")
	}
}

func TestNearbyForUserEmptyResultIsNotAnError(t *testing.T) {
	repo := &stubLocationRepo{
		address: &models.Address{UserID: uuid.New(), Address: "somewhere", Lng: 2.3522, Lat: 48.8566},
		results: []NearbyProduct{},
	}
	svc := newTestService(t, repo, nil)

	results, err := svc.NearbyForUser(context.Background(), uuid.New(), NearbyParams{})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result list, got %d", len(results))
	}
}

func TestFindNearbyDefaultsAndClampsRadius(t *testing.T) {
	repo := &stubLocationRepo{}
	svc := newTestService(t, repo, nil)
	origin := geo.StoragePoint{Lng: 2.3522, Lat: 48.8566}

	if _, err := svc.FindNearby(context.Background(), origin, NearbyParams{}); err != nil {
		t.Fatalf("find nearby: %v", err)
	}
	if repo.lastRadius != 10 {
		t.Fatalf("expected default radius 10, got %f", repo.lastRadius)
	}

	if _, err := svc.FindNearby(context.Background(), origin, NearbyParams{MaxDistanceKm: 9999}); err != nil {
		t.Fatalf("find nearby: %v", err)
	}
	if repo.lastRadius != 200 {
		t.Fatalf("expected radius clamped to 200, got %f", repo.lastRadius)
	}
}

func TestSearchByLocationRejectsMalformedPair(t *testing.T) {
	repo := &stubLocationRepo{}
	svc := newTestService(t, repo, nil)

	for _, pair := range [][]float64{nil, {2.3522}, {2.3522, 48.8566, 1}, {200, 48}, {2.35, -95}} {
		_, err := svc.SearchByLocation(context.Background(), SearchByLocationInput{Coordinates: pair})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("pair %v: expected VALIDATION_ERROR, got %v", pair, err)
		}
	}
	if repo.nearbyCalls != 0 {
		t.Fatal("no query should run for malformed input")
	}
}

func TestFindNearbyUsesCache(t *testing.T) {
	repo := &stubLocationRepo{
		results: []NearbyProduct{{ProductDTO: products.ProductDTO{Title: "tomatoes"}, DistanceKm: 1.2}},
	}
	cache := &stubCache{}
	svc := newTestService(t, repo, cache)
	origin := geo.StoragePoint{Lng: 2.3522, Lat: 48.8566}

	first, err := svc.FindNearby(context.Background(), origin, NearbyParams{})
	if err != nil {
		t.Fatalf("first query: %v", err)
	}
	if repo.nearbyCalls != 1 || cache.puts != 1 {
		t.Fatalf("expected one query and one cache write, got %d/%d", repo.nearbyCalls, cache.puts)
	}

	second, err := svc.FindNearby(context.Background(), origin, NearbyParams{})
	if err != nil {
		t.Fatalf("second query: %v", err)
	}
	if repo.nearbyCalls != 1 {
		t.Fatalf("expected cache hit to skip the repository, got %d calls", repo.nearbyCalls)
	}
	if len(second) != len(first) || second[0].Title != "tomatoes" || second[0].DistanceKm != 1.2 {
		t.Fatalf("cached payload mismatch: %+v", second)
	}
}

func TestUpsertAddressValidatesCoordinates(t *testing.T) {
	repo := &stubLocationRepo{}
	svc := newTestService(t, repo, nil)

	_, err := svc.UpsertAddress(context.Background(), uuid.New(), UpsertAddressInput{
		Address:     "12 Rue de Rivoli",
		Coordinates: []float64{2.3522},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if repo.upserted != nil {
		t.Fatal("nothing should reach the repository")
	}
}

func TestUpsertAddressStoresCanonicalOrder(t *testing.T) {
	repo := &stubLocationRepo{}
	svc := newTestService(t, repo, nil)

	dto, err := svc.UpsertAddress(context.Background(), uuid.New(), UpsertAddressInput{
		Address:     "12 Rue de Rivoli",
		City:        "Paris",
		Coordinates: []float64{2.3522, 48.8566},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if repo.upserted.Lng != 2.3522 || repo.upserted.Lat != 48.8566 {
		t.Fatalf("storage order violated: %+v", repo.upserted)
	}
	if dto.Coordinates.Lng != 2.3522 || dto.Coordinates.Lat != 48.8566 {
		t.Fatalf("dto coordinates mismatch: %+v", dto.Coordinates)
	}
}

func newGeocodingService(t *testing.T, geocoder ReverseGeocoder) Service {
	t.Helper()
	svc, err := NewService(&stubLocationRepo{}, nil, geocoder, config.NearbyConfig{
		DefaultRadiusKm: 10,
		MaxRadiusKm:     200,
	}, db.DriverSQLite, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestReversePointResolvesAddressFields(t *testing.T) {
	geocoder := &fakeGeocoder{handler: func(point geo.DisplayPoint) (geocode.AddressFields, error) {
		if point.Lat != 48.8566 || point.Lng != 2.3522 {
			t.Fatalf("unexpected point: %+v", point)
		}
		return geocode.AddressFields{Address: "12 Rue de Rivoli", City: "Paris", Pincode: "75001"}, nil
	}}
	svc := newGeocodingService(t, geocoder)

	fields, err := svc.ReversePoint(context.Background(), geo.DisplayPoint{Lat: 48.8566, Lng: 2.3522})
	if err != nil {
		t.Fatalf("reverse point: %v", err)
	}
	if fields.City != "Paris" || fields.Pincode != "75001" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestReversePointRejectsOutOfRangeCoordinates(t *testing.T) {
	geocoder := &fakeGeocoder{}
	svc := newGeocodingService(t, geocoder)

	_, err := svc.ReversePoint(context.Background(), geo.DisplayPoint{Lat: 95, Lng: 2.3522})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if geocoder.calls != 0 {
		t.Fatal("no lookup should run for an invalid point")
	}
}

func TestReversePointWithoutGeocoder(t *testing.T) {
	svc := newGeocodingService(t, nil)

	_, err := svc.ReversePoint(context.Background(), geo.DisplayPoint{Lat: 48.8566, Lng: 2.3522})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
}

func TestServicePickerUsesServiceGeocoder(t *testing.T) {
	resolved := make(chan struct{})
	geocoder := &fakeGeocoder{handler: func(geo.DisplayPoint) (geocode.AddressFields, error) {
		return geocode.AddressFields{City: "Paris"}, nil
	}}
	svc := newGeocodingService(t, geocoder)

	picker := svc.Picker(PickerCallbacks{
		OnAddressFound: func(fields geocode.AddressFields, _ geo.StoragePoint) {
			if fields.City != "Paris" {
				t.Errorf("unexpected fields: %+v", fields)
			}
			close(resolved)
		},
	})

	if err := picker.SelectPoint(context.Background(), geo.DisplayPoint{Lat: 48.8566, Lng: 2.3522}); err != nil {
		t.Fatalf("select point: %v", err)
	}
	waitFor(t, resolved, "address resolution")
	if state := picker.State(); state != StateAddressResolved {
		t.Fatalf("expected address_resolved, got %s", state)
	}
}
