package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samvad-hq/samvad-invoker/pkg/jsonvalue"
	"gopkg.in/yaml.v3"
)

// Package payload resolves the optional structured request body.

// Parse decodes an inline JSON object. An empty string means no payload.
func Parse(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	out, err := decodeJSON([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("parse inline payload: %w", err)
	}
	return out, nil
}

// LoadFile reads a payload mapping from a YAML or JSON file.
func LoadFile(path string) (map[string]any, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("payload file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open payload file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read payload file: %w", err)
	}

	return parseDocument(raw, filepath.Ext(path))
}

// Resolve picks the payload file when set, otherwise the inline value.
func Resolve(inline, path string) (map[string]any, error) {
	if strings.TrimSpace(path) != "" {
		return LoadFile(path)
	}
	return Parse(inline)
}

type unmarshalFn func([]byte) (map[string]any, error)

func parseDocument(data []byte, ext string) (map[string]any, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "json", ext: ".json", fn: decodeJSON},
		{name: "yaml", ext: ".yaml", fn: decodeYAML},
		{name: "yaml", ext: ".yml", fn: decodeYAML},
	}

	known := false
	for _, d := range decoders {
		if ext == d.ext {
			known = true
			break
		}
	}

	var errs []error
	for _, d := range decoders {
		if known && ext != d.ext {
			continue
		}
		out, err := d.fn(data)
		if err == nil {
			return out, nil
		}
		errs = append(errs, fmt.Errorf("decode %s payload: %w", d.name, err))
	}

	return nil, fmt.Errorf("payload file format not recognized (expected YAML or JSON mapping): %w", errors.Join(errs...))
}

func decodeJSON(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, jsonvalue.ErrTrailingData
	}
	if out == nil {
		return nil, errors.New("payload must be a JSON object")
	}
	return out, nil
}

func decodeYAML(data []byte) (map[string]any, error) {
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errors.New("payload must be a mapping")
	}
	// Nested maps with non-string keys cannot be sent as JSON.
	if _, err := jsonvalue.FromAny(out); err != nil {
		return nil, err
	}
	return out, nil
}
