// Package jobfactory merges native and SQL units into one ordered job
// list (spec.md §4.4).
package jobfactory

import (
	"fmt"
	"sort"

	"github.com/samber/oops"

	"github.com/schemagate/migrator/internal/migration"
	"github.com/schemagate/migrator/pkg/errutil"
)

// Create merges nativeUnits and sqlUnits, rejects duplicate versions, and
// returns the result sorted ascending by version. The sort is stable and
// keyed purely on version; kind never affects ordering.
func Create(nativeUnits, sqlUnits []migration.Unit) ([]migration.Unit, error) {
	all := make([]migration.Unit, 0, len(nativeUnits)+len(sqlUnits))
	all = append(all, nativeUnits...)
	all = append(all, sqlUnits...)

	seen := make(map[uint64][]migration.Unit, len(all))
	for _, u := range all {
		seen[u.Version] = append(seen[u.Version], u)
	}

	var duplicates []uint64
	for version, units := range seen {
		if len(units) > 1 {
			duplicates = append(duplicates, version)
		}
	}
	if len(duplicates) > 0 {
		sort.Slice(duplicates, func(i, j int) bool { return duplicates[i] < duplicates[j] })
		return nil, oops.Code(errutil.CodeDuplicateVersion).
			With("versions", duplicates).
			Errorf("duplicate migration version(s) declared: %v", duplicates)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Version < all[j].Version })
	return all, nil
}

// Describe renders a short human-readable label for a job, used in log
// lines and the error log sink.
func Describe(u migration.Unit) string {
	switch u.Kind {
	case migration.KindSQL:
		return fmt.Sprintf("sql migration %d (%s)", u.Version, u.SQLFileName)
	default:
		return fmt.Sprintf("native migration %d (%s)", u.Version, u.Description)
	}
}
