package nativeloader

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemagate/migrator/internal/migration"
)

type stubMigration struct {
	version     uint64
	description string
}

func (s *stubMigration) Version() uint64     { return s.version }
func (s *stubMigration) Description() string { return s.description }
func (s *stubMigration) Apply(_ context.Context, _ *sql.Tx) error { return nil }

func TestRegistryLoader_Load_ReturnsRegisteredUnits(t *testing.T) {
	loader := NewRegistryLoader(nil,
		&stubMigration{version: 1, description: "seed roles"},
		&stubMigration{version: 2, description: "seed permissions"},
	)

	units, err := loader.Load("/irrelevant")
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, migration.KindNative, units[0].Kind)
	assert.Equal(t, uint64(1), units[0].Version)
}

func TestRegistryLoader_Load_EmptyRegistryReturnsEmptyNonNilSlice(t *testing.T) {
	loader := NewRegistryLoader(nil)

	units, err := loader.Load("/irrelevant")
	require.NoError(t, err)
	assert.NotNil(t, units)
	assert.Empty(t, units)
}
