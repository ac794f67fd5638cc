package cliconfig

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ListenAddr != DefaultListenAddr {
		t.Fatalf("expected listen addr %s, got %s", DefaultListenAddr, cfg.ListenAddr)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Fatalf("expected poll interval 5s, got %v", cfg.PollInterval)
	}
	if cfg.DebounceDelay <= 0 || cfg.HTTPTimeout <= 0 {
		t.Fatalf("expected positive defaults, got %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing dir",
			mutate:  func(c *Config) { c.Dir = "" },
			wantErr: "dir is required",
		},
		{
			name:    "non-positive poll interval",
			mutate:  func(c *Config) { c.PollInterval = 0 },
			wantErr: "poll interval",
		},
		{
			name:    "non-positive debounce",
			mutate:  func(c *Config) { c.DebounceDelay = -time.Second },
			wantErr: "debounce delay",
		},
		{
			name:    "non-positive timeout",
			mutate:  func(c *Config) { c.HTTPTimeout = 0 },
			wantErr: "http timeout",
		},
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Dir = t.TempDir()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateDerivesMetadataFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dir = filepath.Join("some", "gallery") + string(filepath.Separator)

	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := filepath.Join("some", "gallery", DefaultMetadataName)
	if cfg.MetadataFile != want {
		t.Fatalf("expected metadata file %s, got %s", want, cfg.MetadataFile)
	}
}

func TestValidateNormalizesExtensions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dir = "gallery"
	cfg.Extensions = []string{"PNG", " .JPG ", ".webp"}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := []string{".png", ".jpg", ".webp"}
	for i, ext := range want {
		if cfg.Extensions[i] != ext {
			t.Fatalf("expected extension %s at %d, got %s", ext, i, cfg.Extensions[i])
		}
	}
}
