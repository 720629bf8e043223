// Command schemagate is the CLI front-end for the migration engine. Per
// spec.md §1 it is an external collaborator: argument parsing, logging
// sink wiring, and exit codes live here; all schema logic lives in
// pkg/migrator.
package main

import (
	"errors"
	"fmt"
	"os"
)

// version is set at build time via -ldflags.
var version = "dev"

// Exit codes per spec.md §6.1. POSIX exit statuses are unsigned bytes, so
// "non-zero negative on unhandled exception" is realized as a distinct
// non-zero code (2) rather than a literal negative value.
const (
	exitSuccess      = 0
	exitArgsInvalid  = 1
	exitRunError     = 2
)

func main() {
	root := NewRootCmd()
	root.SilenceUsage = true
	root.SilenceErrors = true

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errArgsInvalid) {
			os.Exit(exitArgsInvalid)
		}
		os.Exit(exitRunError)
	}
	os.Exit(exitSuccess)
}
