package container

import (
	"fmt"
	"net/http"

	"go-image-differ/internal/config"
	"go-image-differ/internal/logger"
	"go-image-differ/internal/render"
	"go-image-differ/internal/service"
	"go-image-differ/internal/store"
	"go-image-differ/internal/strategy"
	"go-image-differ/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config            *config.Config
	resultStore       store.ResultStore
	overlayArchiver   store.OverlayArchiver
	comparisonService service.ComparisonService
	handler           http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Build dependency graph
	resultStore := store.NewMemoryStore()

	var archiver store.OverlayArchiver
	if cfg.AzureArchiveEnabled() {
		archiver, err = store.NewAzureArchiver(cfg.AzureAccountName, cfg.AzureAccountKey, cfg.AzureContainer)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize overlay archiver: %w", err)
		}
		logger.WithField("container", cfg.AzureContainer).Info("Overlay archiving enabled")
	}

	rendererCfg := strategy.RendererConfig{
		HeatmapPalette: cfg.HeatmapPalette,
		HeatmapOpacity: cfg.HeatmapOpacity,
		Contour: render.ContourOptions{
			MinRegionArea:  cfg.MinRegionArea,
			HighlightColor: cfg.HighlightColor,
			BoxThickness:   cfg.BoxThickness,
			FillOpacity:    cfg.FillOpacity,
		},
	}

	comparisonService := service.NewComparisonService(resultStore, archiver, rendererCfg)
	handler := transport.NewHandler(comparisonService, cfg)

	return &Container{
		config:            cfg,
		resultStore:       resultStore,
		overlayArchiver:   archiver,
		comparisonService: comparisonService,
		handler:           handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}
