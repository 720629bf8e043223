package main

import (
	"errors"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/schemagate/migrator/pkg/errutil"
)

// errArgsInvalid is returned (wrapped) whenever configuration validation
// fails before any database work starts, mapping to exit code 1 per
// spec.md §6.1.
var errArgsInvalid = errors.New("invalid arguments")

// configFile is the optional --config flag shared by every subcommand.
var configFile string

// NewRootCmd builds the schemagate CLI's root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schemagate",
		Short: "schemagate applies database schema migrations exactly once, in order",
		Long: `schemagate advances a SQL Server, PostgreSQL, or SQLite database from its
current schema version to the latest declared state by applying
previously-unapplied migrations exactly once, in ascending version order,
with per-migration transactional atomicity and halt-on-failure semantics.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "path to an optional schemagate.yaml config file")

	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// classifyConfigError wraps a config-layer failure as an args-invalid
// error so main can map it to exit code 1 rather than the generic
// unhandled-exception code.
func classifyConfigError(err error) error {
	if err == nil {
		return nil
	}
	if oopsErr, ok := oops.AsOops(err); ok && oopsErr.Code() == errutil.CodeConfigInvalid {
		return errors.Join(errArgsInvalid, err)
	}
	return err
}
