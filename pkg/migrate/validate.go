package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/multierr"
)

var (
	sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

	// The booking timeline is append-only; later migrations may add columns
	// but never rewrite or drop recorded activities.
	timelineRewriteRe = regexp.MustCompile(`(?i)\b(update\s+booking_activities|delete\s+from\s+booking_activities|truncate\s+(table\s+)?booking_activities)\b`)
)

const (
	gooseUpMarker   = "-- +goose Up"
	gooseDownMarker = "-- +goose Down"
)

// ValidateDir checks migration filenames and goose headers, and reports
// every problem found rather than stopping at the first.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	var errs error
	seen := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name))
			continue
		}
		if prev, ok := seen[m[1]]; ok {
			errs = multierr.Append(errs, fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name))
			continue
		}
		seen[m[1]] = name

		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read file %q: %w", name, err))
			continue
		}
		errs = multierr.Append(errs, validateContent(name, string(b)))
	}
	return errs
}

func validateContent(name, txt string) error {
	up := strings.Index(txt, gooseUpMarker)
	down := strings.Index(txt, gooseDownMarker)
	switch {
	case up < 0:
		return fmt.Errorf("migration %q missing %q", name, gooseUpMarker)
	case down < 0:
		return fmt.Errorf("migration %q missing %q", name, gooseDownMarker)
	case down < up:
		return fmt.Errorf("migration %q has Down before Up", name)
	}
	if loc := timelineRewriteRe.FindStringIndex(txt[up:down]); loc != nil {
		return fmt.Errorf("migration %q rewrites booking_activities: %q", name, txt[up+loc[0]:up+loc[1]])
	}
	return nil
}
