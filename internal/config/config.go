// Package config loads the CLI's invocation arguments (spec.md §6.1) from
// flags, environment variables, and an optional config file, in that
// precedence order.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/schemagate/migrator/pkg/errutil"
)

// envPrefix namespaces environment variable overrides, e.g.
// SCHEMAGATE_CONNECTION, SCHEMAGATE_TYPE, SCHEMAGATE_PATH.
const envPrefix = "SCHEMAGATE_"

// Config is the CLI's resolved invocation surface.
type Config struct {
	Type       string `koanf:"type" json:"type" jsonschema:"required,enum=SqlServer,enum=PostgreSql,enum=SQLite"`
	Connection string `koanf:"connection" json:"connection" jsonschema:"required,minLength=1"`
	Path       string `koanf:"path" json:"path" jsonschema:"required,minLength=1"`
	Verbose    bool   `koanf:"verbose" json:"verbose,omitempty"`
}

// Load merges, in ascending precedence, an optional YAML config file, the
// process environment, and command-line flags into a Config.
func Load(flags *pflag.FlagSet, configFile string) (*Config, error) {
	k := koanf.New(".")

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, oops.Code(errutil.CodeConfigInvalid).With("file", configFile).Wrap(err)
		}
	}

	envLoader := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envLoader, nil); err != nil {
		return nil, oops.Code(errutil.CodeConfigInvalid).Wrap(err)
	}

	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return nil, oops.Code(errutil.CodeConfigInvalid).Wrap(err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code(errutil.CodeConfigInvalid).Wrap(err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
