package server

import (
	"github.com/woozymasta/lotexport/internal/config"
	"github.com/woozymasta/lotexport/internal/export"
	"github.com/woozymasta/lotexport/internal/lookup"
	"github.com/woozymasta/lotexport/internal/preview"
	"github.com/woozymasta/lotexport/internal/registry"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config   *config.Config
	Resolver *lookup.Resolver
}

// NewServerContext wires the lookup resolver over source.
func NewServerContext(cfg *config.Config, source registry.Source) *ServerContext {
	log.Info().
		Str("nsw_source", cfg.Sources.NSW.URL).
		Str("qld_source", cfg.Sources.QLD.URL).
		Int("concurrency", cfg.Concurrency).
		Bool("frontend", cfg.FrontendDir != "").
		Msg("Initializing server context")

	return &ServerContext{
		Config:   cfg,
		Resolver: lookup.NewResolver(source, cfg.Concurrency),
	}
}

// Router builds the gin engine with every route and middleware.
func (s *ServerContext) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(), CORS(s.Config.CORSOrigin))

	r.GET("/ping", s.HandlePing)

	api := r.Group("/api")
	api.POST("/search", s.HandleSearch)
	api.POST("/bounds", s.HandleBounds)

	download := api.Group("/download")
	download.POST("/kml", s.HandleDownloadKML)
	download.POST("/shp", s.HandleDownloadShapefile)
	download.POST("/preview", s.HandleDownloadPreview)

	if s.Config.FrontendDir != "" {
		r.NoRoute(s.HandleFrontend)
	}

	return r
}

func (s *ServerContext) style(overlay *export.StyleOverlay) export.Style {
	if overlay == nil {
		return s.Config.Style
	}
	return overlay.Apply(s.Config.Style)
}

func (s *ServerContext) previewOptions() preview.Options {
	p := s.Config.Preview
	return preview.Options{
		Width:      p.Width,
		Height:     p.Height,
		Padding:    p.Padding,
		Background: p.Background,
	}
}
