package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gatepasshq/gatepass-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matching %q", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestBookingMigrationEnforcesCapacity(t *testing.T) {
	content := readMigration(t, "*_create_booking_tables.sql")

	checks := []string{
		"CREATE TABLE booking_slots",
		"CHECK (booked_count >= 0)",
		"CHECK (booked_count <= max_capacity)",
		"ux_attraction_bookings_reference",
		"DROP TABLE IF EXISTS booking_slots",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCheckoutMigrationEnforcesIdempotencyKeys(t *testing.T) {
	content := readMigration(t, "*_create_checkout_tables.sql")

	checks := []string{
		"CREATE UNIQUE INDEX idx_promo_redemptions_code_session ON promo_redemptions (promo_code_id, session_id)",
		"CREATE UNIQUE INDEX idx_cart_snapshots_identity ON cart_snapshots (event_id, customer_email, session_id)",
		"CREATE UNIQUE INDEX idx_promo_codes_org_code ON promo_codes (org_id, code)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected error for invalid filename")
	}
}
