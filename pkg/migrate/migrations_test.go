package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andrelucena/celebra-backend/pkg/migrate"
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

func TestEventsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_events_table.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS events",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_events_slug",
		"CHECK (event_type <> 'other' OR custom_event_type IS NOT NULL)",
		"DROP TABLE IF EXISTS events",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestGiftsMigrationContainsReservationConstraints(t *testing.T) {
	content := readMigration(t, "*_create_gifts_table.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS gifts",
		"FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE",
		"CHECK (status IN ('available', 'reserved', 'received'))",
		"CHECK (status = 'available' OR reserved_by_user_id IS NOT NULL)",
		"DROP TABLE IF EXISTS gifts",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMembershipsMigrationEnforcesOnePerPair(t *testing.T) {
	content := readMigration(t, "*_create_memberships_table.sql")

	checks := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_memberships_event_user ON memberships (event_id, user_id)",
		"CHECK (role IN ('host', 'guest'))",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}
