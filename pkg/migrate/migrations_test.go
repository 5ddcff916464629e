package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/localbasket/localbasket-backend/pkg/migrate"
)

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestAddressMigrationEnforcesOneAddressPerUser(t *testing.T) {
	content := readMigration(t, "*_create_addresses.sql")

	checks := []string{
		"CREATE UNIQUE INDEX idx_addresses_user_id ON addresses (user_id)",
		"lng BETWEEN -180 AND 180 AND lat BETWEEN -90 AND 90",
		"DROP TABLE IF EXISTS addresses",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestGeographyMigrationIndexesStorePoints(t *testing.T) {
	content := readMigration(t, "*_add_store_geography.sql")

	checks := []string{
		"CREATE EXTENSION IF NOT EXISTS postgis",
		"geography(Point, 4326)",
		"ST_MakePoint(store_lng, store_lat)",
		"CREATE INDEX idx_products_store_geog ON products USING GIST (store_geog)",
		"CREATE INDEX idx_addresses_geog ON addresses USING GIST (geog)",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
