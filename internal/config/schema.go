package config

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/schemagate/migrator/pkg/errutil"
)

const schemaID = "https://schemagate.example/schema/config.json"

type schemaState struct {
	once   sync.Once
	schema *jschema.Schema
	err    error
}

var globalSchemaState = &schemaState{}

// GenerateSchema generates a JSON Schema from the Config struct, the same
// invopop/jsonschema + santhosh-tekuri/jsonschema pairing the teacher uses
// for its plugin manifest.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{DoNotReference: true}
	schema := r.Reflect(&Config{})
	schema.ID = jsonschema.ID(schemaID)
	schema.Title = "schemagate configuration"
	schema.Description = "Schema for schemagate.yaml config files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code(errutil.CodeConfigInvalid).Wrap(err)
	}
	return append(data, '\n'), nil
}

func compiledSchema() (*jschema.Schema, error) {
	globalSchemaState.once.Do(func() {
		data, err := GenerateSchema()
		if err != nil {
			globalSchemaState.err = err
			return
		}
		compiler := jschema.NewCompiler()
		doc, err := jschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			globalSchemaState.err = err
			return
		}
		if err := compiler.AddResource(schemaID, doc); err != nil {
			globalSchemaState.err = err
			return
		}
		schema, err := compiler.Compile(schemaID)
		if err != nil {
			globalSchemaState.err = err
			return
		}
		globalSchemaState.schema = schema
	})
	return globalSchemaState.schema, globalSchemaState.err
}

// Validate checks cfg against the generated JSON Schema, catching missing
// required fields and an unrecognized dialect name before any filesystem
// or database work begins.
func Validate(cfg *Config) error {
	schema, err := compiledSchema()
	if err != nil {
		return oops.Code(errutil.CodeConfigInvalid).Wrap(err)
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return oops.Code(errutil.CodeConfigInvalid).Wrap(err)
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return oops.Code(errutil.CodeConfigInvalid).Wrap(err)
	}

	if err := schema.Validate(generic); err != nil {
		return oops.Code(errutil.CodeConfigInvalid).Wrap(err)
	}
	return nil
}
