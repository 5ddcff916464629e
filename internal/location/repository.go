package location

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/localbasket/localbasket-backend/internal/products"
	"github.com/localbasket/localbasket-backend/pkg/db"
	"github.com/localbasket/localbasket-backend/pkg/db/models"
	"github.com/localbasket/localbasket-backend/pkg/geo"
)

type repository struct {
	db     *gorm.DB
	driver string
}

// Repository is the persistence surface for addresses and proximity queries.
type Repository interface {
	FindAddressByUserID(ctx context.Context, userID uuid.UUID) (*models.Address, error)
	UpsertAddress(ctx context.Context, address *models.Address) (*models.Address, error)
	FindNearby(ctx context.Context, origin geo.StoragePoint, radiusKm float64, params NearbyParams) ([]NearbyProduct, error)
}

// NewRepository builds a location repository bound to the provided DB. The
// driver selects the proximity query plan: the spatial index on Postgres, a
// bounding-box scan everywhere else.
func NewRepository(gdb *gorm.DB, driver string) Repository {
	return &repository{db: gdb, driver: driver}
}

func (r *repository) FindAddressByUserID(ctx context.Context, userID uuid.UUID) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// UpsertAddress writes the one-address-per-user row in a single
// conflict-aware statement, so concurrent writers settle on last-write-wins
// at the database rather than in application code.
func (r *repository) UpsertAddress(ctx context.Context, address *models.Address) (*models.Address, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"address", "city", "pincode", "phone", "notes", "lng", "lat", "updated_at",
			}),
		}).
		Create(address).Error
	if err != nil {
		return nil, err
	}

	// Re-read: on conflict the insert model keeps its generated ID while the
	// row retains the original one.
	return r.FindAddressByUserID(ctx, address.UserID)
}

func (r *repository) FindNearby(ctx context.Context, origin geo.StoragePoint, radiusKm float64, params NearbyParams) ([]NearbyProduct, error) {
	if r.driver == db.DriverPostgres {
		return r.findNearbyPostgres(ctx, origin, radiusKm, params)
	}
	return r.findNearbyScan(ctx, origin, radiusKm, params)
}

type nearbyRow struct {
	models.Product `gorm:"embedded"`
	DistanceKm     float64 `gorm:"column:distance_km"`
}

// findNearbyPostgres ranks candidates with the generated geography column:
// ST_DWithin rides the GIST index for the radius cut, ST_Distance orders the
// survivors.
func (r *repository) findNearbyPostgres(ctx context.Context, origin geo.StoragePoint, radiusKm float64, params NearbyParams) ([]NearbyProduct, error) {
	originExpr := gorm.Expr("ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography", origin.Lng, origin.Lat)

	q := r.db.WithContext(ctx).
		Table("products").
		Select("products.*, ST_Distance(store_geog, ?) / 1000.0 AS distance_km", originExpr).
		Where("is_collected = ?", false).
		Where("store_geog IS NOT NULL").
		Where("ST_DWithin(store_geog, ?, ?)", originExpr, radiusKm*1000)

	q = applyNearbyFilters(q, params)
	q = q.Order("distance_km ASC, created_at ASC, id ASC")
	if params.Limit > 0 {
		q = q.Limit(params.Limit)
	}

	var rows []nearbyRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	results := make([]NearbyProduct, 0, len(rows))
	for i := range rows {
		results = append(results, NearbyProduct{
			ProductDTO: products.NewProductDTO(&rows[i].Product),
			DistanceKm: rows[i].DistanceKm,
		})
	}
	return results, nil
}

// findNearbyScan serves engines without a spatial index: a bounding-box SQL
// prefilter over the plain lng/lat columns, then the exact haversine cut and
// sort in Go. Same contract as the Postgres plan.
func (r *repository) findNearbyScan(ctx context.Context, origin geo.StoragePoint, radiusKm float64, params NearbyParams) ([]NearbyProduct, error) {
	box := geo.BoundingBox(origin, radiusKm)

	q := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_collected = ?", false).
		Where("store_lng IS NOT NULL AND store_lat IS NOT NULL").
		Where("store_lat BETWEEN ? AND ?", box.MinLat, box.MaxLat)
	if !box.FullLongitude() {
		q = q.Where("store_lng BETWEEN ? AND ?", box.MinLng, box.MaxLng)
	}
	q = applyNearbyFilters(q, params)

	var candidates []models.Product
	if err := q.Find(&candidates).Error; err != nil {
		return nil, err
	}

	results := make([]NearbyProduct, 0, len(candidates))
	for i := range candidates {
		point, ok := candidates[i].StorePoint()
		if !ok {
			continue
		}
		distance := geo.Haversine(origin, point)
		if distance > radiusKm {
			continue
		}
		results = append(results, NearbyProduct{
			ProductDTO: products.NewProductDTO(&candidates[i]),
			DistanceKm: distance,
		})
	}

	// Ties break on creation time so equally distant listings keep their
	// insertion order.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].DistanceKm != results[j].DistanceKm {
			return results[i].DistanceKm < results[j].DistanceKm
		}
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.Before(results[j].CreatedAt)
		}
		return results[i].ID.String() < results[j].ID.String()
	})

	if params.Limit > 0 && len(results) > params.Limit {
		results = results[:params.Limit]
	}
	return results, nil
}

func applyNearbyFilters(q *gorm.DB, params NearbyParams) *gorm.DB {
	if params.Category != "" {
		q = q.Where("category = ?", params.Category)
	}
	if params.Brand != "" {
		q = q.Where("brand = ?", params.Brand)
	}
	return q
}
