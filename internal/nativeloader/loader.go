// Package nativeloader turns compiled migration artifacts into
// migration.Unit values (spec.md §4.2). The engine is loader-agnostic: it
// only ever sees the Loader interface.
package nativeloader

import (
	"log/slog"

	"github.com/schemagate/migrator/internal/migration"
)

// Loader produces the native migration units found in dir. It must return
// an empty, non-nil slice (not an error) when no artifacts are present.
type Loader interface {
	Load(dir string) ([]migration.Unit, error)
}

// RegistryLoader is the explicit-registration mechanism recommended by
// spec.md §9's design note as the replacement for reflective, attribute-
// tag-driven discovery: a host process hands the engine a fixed slice of
// migration.NativeMigration values, typically compiled into the same
// binary as the caller.
type RegistryLoader struct {
	migrations []migration.NativeMigration
	logger     *slog.Logger
}

// NewRegistryLoader builds a Loader over a statically supplied list.
func NewRegistryLoader(logger *slog.Logger, migrations ...migration.NativeMigration) *RegistryLoader {
	return &RegistryLoader{migrations: migrations, logger: logger}
}

// Load ignores dir; the registry is independent of the filesystem layout.
func (l *RegistryLoader) Load(_ string) ([]migration.Unit, error) {
	units := make([]migration.Unit, 0, len(l.migrations))
	for _, nm := range l.migrations {
		units = append(units, migration.NewNativeUnit(nm))
	}
	if l.logger != nil {
		l.logger.Debug("loaded registered native migrations", "count", len(units))
	}
	return units, nil
}
