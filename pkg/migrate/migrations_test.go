package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dealerhubhq/dealerhub-backend/pkg/migrate"
)

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestVehiclesMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_vehicles.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no vehicles migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS vehicles",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_vehicles_vin ON vehicles (vin)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_vehicles_stock_number ON vehicles (stock_number)",
		"CHECK (price_cents >= 0)",
		"DROP TABLE IF EXISTS vehicles",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestDealsMigrationReferencesParents(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_deals.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no deals migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS deals",
		"FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE RESTRICT",
		"FOREIGN KEY (vehicle_id) REFERENCES vehicles(id) ON DELETE RESTRICT",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_deals_deal_number ON deals (deal_number)",
		"DROP TABLE IF EXISTS deals",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
