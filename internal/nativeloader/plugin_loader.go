package nativeloader

import (
	"log/slog"
	"path/filepath"
	"plugin"

	"github.com/schemagate/migrator/internal/logging"
	"github.com/schemagate/migrator/internal/migration"
)

// migrationsSymbol is the exported symbol a native artifact must expose:
//
//	var Migrations []migration.NativeMigration
const migrationsSymbol = "Migrations"

// PluginLoader discovers native artifacts directly in the migrations
// directory, per spec.md §6.2's "<freeform>.dll / native artifact". Go has
// no DLL-style reflective loading; the standard library's plugin package
// is the only mechanism that loads compiled code into the *same* process,
// which spec.md §4.2 requires (apply() must run against the orchestrator's
// live connection/transaction). See DESIGN.md for why hashicorp/go-plugin,
// which loads artifacts as subprocesses over an RPC boundary, cannot serve
// this requirement.
type PluginLoader struct {
	logger *slog.Logger
}

// NewPluginLoader builds a PluginLoader.
func NewPluginLoader(logger *slog.Logger) *PluginLoader {
	return &PluginLoader{logger: logger}
}

// Load scans dir for "*.so" files and loads each as a Go plugin. A file
// that fails to open as a plugin, or that exposes no Migrations symbol of
// the expected type, is treated as "not a valid artifact" / "no
// migrations inside" per spec.md §4.2: logged and skipped, never fatal.
func (l *PluginLoader) Load(dir string) ([]migration.Unit, error) {
	candidates, err := filepath.Glob(filepath.Join(dir, "*.so"))
	if err != nil {
		return nil, err
	}

	units := make([]migration.Unit, 0)
	for _, path := range candidates {
		p, err := plugin.Open(path)
		if err != nil {
			l.debugf("not a valid native migration artifact, skipping", "path", path, "error", err)
			continue
		}

		sym, err := p.Lookup(migrationsSymbol)
		if err != nil {
			l.tracef("native artifact has no migrations inside, skipping", "path", path)
			continue
		}

		migrations, ok := sym.(*[]migration.NativeMigration)
		if !ok {
			l.debugf("native artifact exposes Migrations with the wrong type, skipping", "path", path)
			continue
		}

		for _, nm := range *migrations {
			units = append(units, migration.NewNativeUnit(nm))
		}
	}
	return units, nil
}

func (l *PluginLoader) debugf(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}

func (l *PluginLoader) tracef(msg string, args ...any) {
	if l.logger != nil {
		logging.Trace(l.logger, msg, args...)
	}
}
