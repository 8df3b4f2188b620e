package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Host != "0.0.0.0" {
		t.Errorf("expected default host 0.0.0.0, got %q", cfg.Host)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %s", cfg.RequestTimeout)
	}
	if cfg.HeatmapPalette != "hot" {
		t.Errorf("expected default palette hot, got %q", cfg.HeatmapPalette)
	}
	if cfg.HeatmapOpacity != 0.5 {
		t.Errorf("expected default heatmap opacity 0.5, got %g", cfg.HeatmapOpacity)
	}
	if cfg.MinRegionArea != 40 {
		t.Errorf("expected default min region area 40, got %d", cfg.MinRegionArea)
	}
	if cfg.HighlightColor != [3]uint8{0, 255, 0} {
		t.Errorf("expected default green highlight, got %v", cfg.HighlightColor)
	}
	if cfg.AzureArchiveEnabled() {
		t.Error("archiving must be disabled without Azure credentials")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9090")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("HEATMAP_PALETTE", "jet")
	t.Setenv("HEATMAP_OPACITY", "0.8")
	t.Setenv("MIN_REGION_AREA", "100")
	t.Setenv("HIGHLIGHT_COLOR", "255, 0, 128")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ServerAddress() != "127.0.0.1:9090" {
		t.Errorf("unexpected server address %q", cfg.ServerAddress())
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %s", cfg.RequestTimeout)
	}
	if cfg.HeatmapPalette != "jet" {
		t.Errorf("expected palette jet, got %q", cfg.HeatmapPalette)
	}
	if cfg.HeatmapOpacity != 0.8 {
		t.Errorf("expected heatmap opacity 0.8, got %g", cfg.HeatmapOpacity)
	}
	if cfg.MinRegionArea != 100 {
		t.Errorf("expected min region area 100, got %d", cfg.MinRegionArea)
	}
	if cfg.HighlightColor != [3]uint8{255, 0, 128} {
		t.Errorf("unexpected highlight color %v", cfg.HighlightColor)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "https://a.example" {
		t.Errorf("unexpected CORS origins %v", cfg.CORSOrigins)
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric port", "PORT", "http"},
		{"port out of range", "PORT", "70000"},
		{"heatmap opacity above one", "HEATMAP_OPACITY", "1.5"},
		{"fill opacity negative", "FILL_OPACITY", "-0.2"},
		{"min region area negative", "MIN_REGION_AREA", "-5"},
		{"box thickness zero", "BOX_THICKNESS", "0"},
		{"highlight color missing channel", "HIGHLIGHT_COLOR", "255,0"},
		{"highlight color channel overflow", "HIGHLIGHT_COLOR", "300,0,0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadFromEnv(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestAzureArchiveEnabled(t *testing.T) {
	t.Setenv("AZURE_STORAGE_ACCOUNT", "acct")
	t.Setenv("AZURE_STORAGE_KEY", "key")
	t.Setenv("AZURE_STORAGE_CONTAINER", "overlays")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.AzureArchiveEnabled() {
		t.Error("expected archiving enabled with full credentials")
	}
}
