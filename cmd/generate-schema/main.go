// Command generate-schema emits a JSON schema for the server configuration,
// for editor completion and CI validation of config files.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/arianaariaei/PyThreadServe/pkg/config"
	"github.com/invopop/jsonschema"
)

func main() {
	output := flag.String("output", "config.schema.json", "Destination file for the generated schema")
	flag.Parse()

	if err := run(*output); err != nil {
		fmt.Fprintf(os.Stderr, "generate-schema: %v\n", err)
		os.Exit(1)
	}
}

func run(output string) error {
	// Inline all definitions so the schema is a single self-contained
	// document.
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	schema := reflector.Reflect(&config.Config{})
	schema.Title = "ThreadServe Configuration"
	schema.Description = "Configuration schema for the ThreadServe file server"
	schema.Version = "1.0.0"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	fmt.Printf("JSON schema written to %s\n", output)
	return nil
}
