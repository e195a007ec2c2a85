// Package server exposes the lookup and export engine over HTTP.
package server

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"
	"unicode"

	"github.com/woozymasta/lotexport/internal/export"
	"github.com/woozymasta/lotexport/internal/geo"
	"github.com/woozymasta/lotexport/internal/lookup"
	"github.com/woozymasta/lotexport/internal/parcel"
	"github.com/woozymasta/lotexport/internal/preview"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Inputs []string `json:"inputs"`
}

// FeaturesRequest is the body of the bounds and download endpoints.
type FeaturesRequest struct {
	Features []geo.Feature        `json:"features"`
	Region   parcel.Region        `json:"region"`
	Regions  []parcel.Region      `json:"regions"`
	Style    *export.StyleOverlay `json:"style"`
	Filename string               `json:"filename"`
}

// ResolveRegions picks the attribute schema of every requested feature.
func (r FeaturesRequest) ResolveRegions() []parcel.Region {
	return parcel.ResolveRegions(r.Region, r.Regions, r.Features)
}

func fail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// HandlePing answers liveness probes.
func (s *ServerContext) HandlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pong": true})
}

// HandleSearch resolves typed identifiers against the parcel registries.
func (s *ServerContext) HandleSearch(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}

	res, err := s.Resolver.Resolve(c.Request.Context(), req.Inputs)
	switch {
	case errors.Is(err, lookup.ErrNoInputs):
		fail(c, http.StatusBadRequest, "No inputs provided")
		return
	case err != nil:
		log.Error().Err(err).Msg("Search failed")
		fail(c, http.StatusBadGateway, err.Error())
		return
	}

	c.JSON(http.StatusOK, res)
}

// HandleBounds returns the lat/lon box of the posted features.
func (s *ServerContext) HandleBounds(c *gin.Context) {
	var req FeaturesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, geo.ComputeBounds(req.Features))
}

// HandleDownloadKML serves the features as a KML attachment.
func (s *ServerContext) HandleDownloadKML(c *gin.Context) {
	req, ok := s.bindFeatures(c)
	if !ok {
		return
	}

	doc := export.KMLByFeature(req.Features, req.ResolveRegions(), s.style(req.Style))
	if s.Config.Export.CompactKML {
		compact, err := export.CompactKML(doc)
		if err != nil {
			log.Error().Err(err).Msg("Failed to compact KML")
			fail(c, http.StatusInternalServerError, "Failed to build KML")
			return
		}
		doc = compact
	}

	attach(c, s.filename(req.Filename, ".kml"), export.MIMETypeKML, []byte(doc))
}

// HandleDownloadShapefile serves the features as a zipped Shapefile.
func (s *ServerContext) HandleDownloadShapefile(c *gin.Context) {
	req, ok := s.bindFeatures(c)
	if !ok {
		return
	}

	name := s.filename(req.Filename, ".zip")
	data, err := export.ShapefileZipByFeature(req.Features, req.ResolveRegions(), export.ShapefileOptions{
		BaseName: strings.TrimSuffix(name, ".zip"),
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to build shapefile")
		fail(c, http.StatusInternalServerError, "Failed to build shapefile")
		return
	}

	attach(c, name, export.MIMETypeZip, data)
}

// HandleDownloadPreview serves a WebP thumbnail of the features.
func (s *ServerContext) HandleDownloadPreview(c *gin.Context) {
	req, ok := s.bindFeatures(c)
	if !ok {
		return
	}

	data, err := preview.Render(req.Features, s.style(req.Style), s.previewOptions())
	if err != nil {
		log.Error().Err(err).Msg("Failed to render preview")
		fail(c, http.StatusInternalServerError, "Failed to render preview")
		return
	}

	attach(c, s.filename(req.Filename, ".webp"), preview.MIMEType, data)
}

func (s *ServerContext) bindFeatures(c *gin.Context) (FeaturesRequest, bool) {
	var req FeaturesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return req, false
	}
	if len(req.Features) == 0 {
		fail(c, http.StatusBadRequest, "No features provided")
		return req, false
	}

	return req, true
}

func attach(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", disposition(filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, data)
}

// disposition builds an attachment header with an ASCII filename and, for
// non-ASCII names, the RFC 6266 filename* form next to it.
func disposition(filename string) string {
	fallback := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return '_'
		}
		return r
	}, filename)

	header := mime.FormatMediaType("attachment", map[string]string{"filename": fallback})
	if fallback != filename {
		extended := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
		header += strings.TrimPrefix(extended, "attachment")
	}

	return header
}

// filename sanitizes a caller supplied download name and forces ext.
func (s *ServerContext) filename(name, ext string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.Map(func(r rune) rune {
		if r == '"' || r == '/' || unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.TrimSuffix(name, ext)

	if name == "" || name == "." || name == ".." {
		name = s.Config.Export.BaseName
	}

	return name + ext
}
