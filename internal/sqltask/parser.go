// Package sqltask recognizes raw SQL migration scripts (spec.md §4.3).
package sqltask

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/schemagate/migrator/internal/migration"
	"github.com/schemagate/migrator/internal/scanner"
)

// filenamePattern matches "<12-digit version>_<freeform>.sql", case
// insensitive on the extension per spec.md §4.3.
var filenamePattern = regexp.MustCompile(`(?i)^(\d{12})_.+\.sql$`)

// Parse recognizes entry as a SQL migration unit. Non-matching files are
// silently ignored (returns a zero Unit, false, nil). File contents are never read
// or validated here; they are executed verbatim at apply time.
func Parse(entry scanner.Entry) (migration.Unit, bool, error) {
	match := filenamePattern.FindStringSubmatch(entry.Name)
	if match == nil {
		return migration.Unit{}, false, nil
	}

	version, err := strconv.ParseUint(match[1], 10, 64)
	if err != nil {
		// The pattern guarantees 12 digits, so this can only happen on
		// overflow, which 12 digits never causes; kept as a defensive
		// return rather than a panic.
		return migration.Unit{}, false, err
	}

	description := fmt.Sprintf("SQL Migration: %s", entry.Name)
	return migration.NewSQLUnit(version, description, entry.Path, entry.Name), true, nil
}

// ParseAll parses every SQL unit out of entries, preserving scan order.
func ParseAll(entries []scanner.Entry) ([]migration.Unit, error) {
	units := make([]migration.Unit, 0, len(entries))
	for _, e := range entries {
		unit, ok, err := Parse(e)
		if err != nil {
			return nil, err
		}
		if ok {
			units = append(units, unit)
		}
	}
	return units, nil
}
