package config

import (
	"testing"
	"time"
)

func TestLoadDefaultsReproduceHttpbinCall(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Endpoint != DefaultEndpoint {
		t.Fatalf("unexpected endpoint: %s", cfg.Endpoint)
	}
	if cfg.Method != "GET" {
		t.Fatalf("unexpected method: %s", cfg.Method)
	}
	if cfg.Payload != DefaultPayload {
		t.Fatalf("unexpected payload: %s", cfg.Payload)
	}
	if cfg.HTTPTimeout != 0 {
		t.Fatalf("expected no client timeout by default, got %v", cfg.HTTPTimeout)
	}
	if cfg.StorageType != "none" {
		t.Fatalf("expected journal disabled by default, got %q", cfg.StorageType)
	}
	if cfg.OutputFormat != "json" {
		t.Fatalf("unexpected output format: %s", cfg.OutputFormat)
	}
	if cfg.StorageCleanupInterval != 12*time.Hour {
		t.Fatalf("unexpected cleanup interval: %v", cfg.StorageCleanupInterval)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("ENDPOINT", "http://127.0.0.1:8000/api/products/")
	t.Setenv("METHOD", "post")
	t.Setenv("PAYLOAD", "")
	t.Setenv("OUTPUT_FORMAT", "YAML")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("STORAGE_TYPE", "bbolt")
	t.Setenv("STORAGE_CLEANUP_INTERVAL_SECONDS", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Endpoint != "http://127.0.0.1:8000/api/products/" {
		t.Fatalf("unexpected endpoint: %s", cfg.Endpoint)
	}
	if cfg.Method != "POST" {
		t.Fatalf("method should be upper-cased, got %s", cfg.Method)
	}
	if cfg.Payload != "" {
		t.Fatalf("expected empty payload, got %q", cfg.Payload)
	}
	if cfg.OutputFormat != "yaml" {
		t.Fatalf("unexpected output format: %s", cfg.OutputFormat)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.HTTPTimeout)
	}
	if cfg.StorageType != "bbolt" {
		t.Fatalf("unexpected storage type: %s", cfg.StorageType)
	}
	if cfg.StorageCleanupInterval != time.Minute {
		t.Fatalf("unexpected cleanup interval: %v", cfg.StorageCleanupInterval)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"relative endpoint": {"ENDPOINT": "/anything"},
		"ftp endpoint":      {"ENDPOINT": "ftp://example.com/file"},
		"blank endpoint":    {"ENDPOINT": "   "},
		"bad output":        {"OUTPUT_FORMAT": "xml"},
		"negative timeout":  {"HTTP_TIMEOUT_SECONDS": "-1"},
		"zero ttl":          {"STORAGE_TTL_SECONDS": "0"},
		"zero cleanup":      {"STORAGE_CLEANUP_INTERVAL_SECONDS": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}
