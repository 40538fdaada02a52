package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestBookingsMigrationCarriesVersionAndDisputes(t *testing.T) {
	content := readMigration(t, "create_bookings")
	checks := []string{
		"CREATE TABLE IF NOT EXISTS bookings",
		"version bigint NOT NULL DEFAULT 1",
		"incompletion_round integer NOT NULL DEFAULT 0",
		"cooldown_round integer NOT NULL DEFAULT 0",
		"bookings_status_check",
		"DROP TABLE IF EXISTS bookings",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestBookingActivitiesMigrationIsAppendOnly(t *testing.T) {
	content := readMigration(t, "create_booking_activities")
	checks := []string{
		"CONSTRAINT booking_activities_booking_seq_key UNIQUE (booking_id, seq)",
		"BEFORE UPDATE OR DELETE ON booking_activities",
		"DROP TABLE IF EXISTS booking_activities",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
