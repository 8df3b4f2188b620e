package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	CORSOrigins        []string

	// Heatmap renderer defaults
	HeatmapPalette string
	HeatmapOpacity float64

	// Contour renderer defaults
	MinRegionArea  int
	HighlightColor [3]uint8
	BoxThickness   int
	FillOpacity    float64

	// Optional Azure Blob archiving of rendered overlays
	AzureAccountName string
	AzureAccountKey  string
	AzureContainer   string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureArchiveEnabled reports whether overlay archiving to Azure Blob storage
// is configured.
func (c *Config) AzureArchiveEnabled() bool {
	return c.AzureAccountName != "" && c.AzureAccountKey != "" && c.AzureContainer != ""
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 32*1024*1024), // 32MB, two images per request
		CORSOrigins:        parseListOrDefault("CORS_ORIGINS", []string{"*"}),
		HeatmapPalette:     getEnvOrDefault("HEATMAP_PALETTE", "hot"),
		HeatmapOpacity:     parseFloatOrDefault("HEATMAP_OPACITY", 0.5),
		MinRegionArea:      int(parseIntOrDefault("MIN_REGION_AREA", 40)),
		HighlightColor:     [3]uint8{0, 255, 0},
		BoxThickness:       int(parseIntOrDefault("BOX_THICKNESS", 2)),
		FillOpacity:        parseFloatOrDefault("FILL_OPACITY", 0.3),
		AzureAccountName:   getEnvOrDefault("AZURE_STORAGE_ACCOUNT", ""),
		AzureAccountKey:    getEnvOrDefault("AZURE_STORAGE_KEY", ""),
		AzureContainer:     getEnvOrDefault("AZURE_STORAGE_CONTAINER", ""),
	}

	if hex := os.Getenv("HIGHLIGHT_COLOR"); hex != "" {
		color, err := parseHighlightColor(hex)
		if err != nil {
			return nil, fmt.Errorf("invalid HIGHLIGHT_COLOR: %w", err)
		}
		cfg.HighlightColor = color
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be > 0 (got %s)", cfg.RequestTimeout)
	}
	if cfg.HeatmapOpacity < 0 || cfg.HeatmapOpacity > 1 {
		return nil, fmt.Errorf("HEATMAP_OPACITY must be in [0,1] (got %g)", cfg.HeatmapOpacity)
	}
	if cfg.FillOpacity < 0 || cfg.FillOpacity > 1 {
		return nil, fmt.Errorf("FILL_OPACITY must be in [0,1] (got %g)", cfg.FillOpacity)
	}
	if cfg.MinRegionArea < 0 {
		return nil, fmt.Errorf("MIN_REGION_AREA must be >= 0 (got %d)", cfg.MinRegionArea)
	}
	if cfg.BoxThickness <= 0 {
		return nil, fmt.Errorf("BOX_THICKNESS must be > 0 (got %d)", cfg.BoxThickness)
	}
	return cfg, nil
}

// parseHighlightColor parses an "R,G,B" triple with each channel in 0-255.
func parseHighlightColor(s string) ([3]uint8, error) {
	var color [3]uint8
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return color, fmt.Errorf("expected R,G,B got %q", s)
	}
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v < 0 || v > 255 {
			return color, fmt.Errorf("channel %d out of range in %q", i, s)
		}
		color[i] = uint8(v)
	}
	return color, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func parseListOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
