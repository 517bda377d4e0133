package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// resultEnvelope wraps every batch command payload.
type resultEnvelope struct {
	Result any `json:"result" yaml:"result"`
}

// parseFormat validates the --output flag.
func parseFormat(raw string) (string, error) {
	switch format := strings.ToLower(strings.TrimSpace(raw)); format {
	case "", formatJSON:
		return formatJSON, nil
	case formatYAML, "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("invalid --output %q: want json or yaml", raw)
	}
}

// writeResult encodes payload as `{"result": ...}` in the requested format.
func writeResult(w io.Writer, format string, payload any) error {
	format, err := parseFormat(format)
	if err != nil {
		return err
	}
	env := resultEnvelope{Result: payload}
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(env); err != nil {
			return fmt.Errorf("encode yaml result: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(env); err != nil {
			return fmt.Errorf("encode json result: %w", err)
		}
		return nil
	}
}
