package location

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/localbasket/localbasket-backend/pkg/db"
	"github.com/localbasket/localbasket-backend/pkg/db/models"
	"github.com/localbasket/localbasket-backend/pkg/geo"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Address{}, &models.Product{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return conn
}

func seedProduct(t *testing.T, conn *gorm.DB, title, category string, point *geo.StoragePoint, collected bool) *models.Product {
	t.Helper()
	product := &models.Product{
		Title:       title,
		Category:    category,
		IsCollected: collected,
	}
	if point != nil {
		product.SetStorePoint(*point)
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product %q: %v", title, err)
	}
	return product
}

func TestUpsertAddressKeepsOneRowPerUser(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn, db.DriverSQLite)
	ctx := context.Background()
	userID := uuid.New()

	first := &models.Address{UserID: userID, Address: "12 Rue de Rivoli", City: "Paris"}
	first.SetPoint(geo.StoragePoint{Lng: 2.3522, Lat: 48.8566})
	saved, err := repo.UpsertAddress(ctx, first)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := &models.Address{UserID: userID, Address: "99 Avenue des Champs", City: "Paris", Pincode: "75008"}
	second.SetPoint(geo.StoragePoint{Lng: 2.3070, Lat: 48.8698})
	updated, err := repo.UpsertAddress(ctx, second)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int64
	if err := conn.Model(&models.Address{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count addresses: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one row, got %d", count)
	}
	if updated.ID != saved.ID {
		t.Fatalf("expected the original row to survive, got new id %s", updated.ID)
	}
	if updated.Address != "99 Avenue des Champs" || updated.Pincode != "75008" {
		t.Fatalf("expected last write to win, got %+v", updated)
	}
	if updated.Lng != 2.3070 || updated.Lat != 48.8698 {
		t.Fatalf("coordinates not updated: %+v", updated)
	}
}

func TestUpsertAddressIdempotent(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn, db.DriverSQLite)
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		addr := &models.Address{UserID: userID, Address: "12 Rue de Rivoli"}
		addr.SetPoint(geo.StoragePoint{Lng: 2.3522, Lat: 48.8566})
		if _, err := repo.UpsertAddress(ctx, addr); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	var count int64
	if err := conn.Model(&models.Address{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count addresses: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one row after repeated identical upserts, got %d", count)
	}
}

func TestFindNearbyOrdersByDistance(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn, db.DriverSQLite)
	ctx := context.Background()
	paris := geo.StoragePoint{Lng: 2.3522, Lat: 48.8566}

	// ~1.1km, ~5.6km and ~22km due north of the origin.
	near := geo.StoragePoint{Lng: 2.3522, Lat: 48.8666}
	mid := geo.StoragePoint{Lng: 2.3522, Lat: 48.9066}
	far := geo.StoragePoint{Lng: 2.3522, Lat: 49.0566}

	seedProduct(t, conn, "fresh bread", "bakery", &mid, false)
	seedProduct(t, conn, "tomatoes", "produce", &near, false)
	seedProduct(t, conn, "too far", "produce", &far, false)
	seedProduct(t, conn, "already gone", "produce", &near, true)
	seedProduct(t, conn, "no location", "produce", nil, false)

	results, err := repo.FindNearby(ctx, paris, 10, NearbyParams{})
	if err != nil {
		t.Fatalf("find nearby: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Title != "tomatoes" || results[1].Title != "fresh bread" {
		t.Fatalf("unexpected order: %q then %q", results[0].Title, results[1].Title)
	}
	if results[0].DistanceKm >= results[1].DistanceKm {
		t.Fatalf("distances not ascending: %f then %f", results[0].DistanceKm, results[1].DistanceKm)
	}
	if math.Abs(results[0].DistanceKm-1.11) > 0.1 {
		t.Fatalf("expected ~1.11km, got %f", results[0].DistanceKm)
	}
}

func TestFindNearbyAppliesFilters(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn, db.DriverSQLite)
	ctx := context.Background()
	paris := geo.StoragePoint{Lng: 2.3522, Lat: 48.8566}
	near := geo.StoragePoint{Lng: 2.3522, Lat: 48.8666}

	seedProduct(t, conn, "fresh bread", "bakery", &near, false)
	seedProduct(t, conn, "tomatoes", "produce", &near, false)

	results, err := repo.FindNearby(ctx, paris, 10, NearbyParams{Category: "bakery"})
	if err != nil {
		t.Fatalf("find nearby: %v", err)
	}
	if len(results) != 1 || results[0].Title != "fresh bread" {
		t.Fatalf("expected only the bakery listing, got %+v", results)
	}
}

func TestFindNearbyRespectsLimit(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn, db.DriverSQLite)
	ctx := context.Background()
	paris := geo.StoragePoint{Lng: 2.3522, Lat: 48.8566}

	for i := 0; i < 5; i++ {
		point := geo.StoragePoint{Lng: 2.3522, Lat: 48.8566 + float64(i)*0.005}
		seedProduct(t, conn, "item", "produce", &point, false)
	}

	results, err := repo.FindNearby(ctx, paris, 10, NearbyParams{Limit: 3})
	if err != nil {
		t.Fatalf("find nearby: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
}

func TestFindNearbyBreaksDistanceTiesByCreationOrder(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn, db.DriverSQLite)
	ctx := context.Background()
	paris := geo.StoragePoint{Lng: 2.3522, Lat: 48.8566}
	near := geo.StoragePoint{Lng: 2.3522, Lat: 48.8666}

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	titles := []string{"first stall", "second stall", "third stall"}
	for i, title := range titles {
		product := &models.Product{Title: title, Category: "produce", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		product.SetStorePoint(near)
		if err := conn.Create(product).Error; err != nil {
			t.Fatalf("seed %q: %v", title, err)
		}
	}

	results, err := repo.FindNearby(ctx, paris, 10, NearbyParams{})
	if err != nil {
		t.Fatalf("find nearby: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, title := range titles {
		if results[i].Title != title {
			t.Fatalf("position %d: got %q, want %q", i, results[i].Title, title)
		}
	}
}
