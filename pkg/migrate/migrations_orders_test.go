package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bob-sav/gym-meat-sub000/pkg/migrate"
)

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_orders.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no orders migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_orders_short_code",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"version INTEGER NOT NULL DEFAULT 0",
		"CHECK (qty > 0)",
		"DROP TABLE IF EXISTS order_lines",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSettlementsMigrationFreezesTotals(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_settlements.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no settlements migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS settlements",
		"order_count INTEGER NOT NULL CHECK (order_count >= 0)",
		"fk_orders_gym_settlement",
		"fk_orders_butcher_settlement",
		"DROP TABLE IF EXISTS settlements",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migration dir invalid: %v", err)
	}
}
