package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/samvad-hq/samvad-invoker/pkg/jsonvalue"
	"gopkg.in/yaml.v3"
)

const (
	FormatJSON    = "json"
	FormatCompact = "compact"
	FormatYAML    = "yaml"
)

// Render writes v to w in the requested format followed by a newline.
func Render(w io.Writer, v jsonvalue.Value, format string) error {
	var (
		out []byte
		err error
	)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		out, err = encodeJSON(v, "  ")
	case FormatCompact:
		out, err = encodeJSON(v, "")
	case FormatYAML:
		out, err = yamlDocument(v)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}

	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// encodeJSON goes through an Encoder because json.Marshal re-escapes HTML
// in the output of custom marshalers.
func encodeJSON(v jsonvalue.Value, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func yamlDocument(v jsonvalue.Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
