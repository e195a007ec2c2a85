// Package config handles configuration loading and shared settings.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/woozymasta/lotexport/internal/export"

	"gopkg.in/yaml.v3"
)

const (
	// NSWParcelURL is the NSW cadastre lot layer query endpoint.
	NSWParcelURL = "https://maps.six.nsw.gov.au/arcgis/rest/services/public/NSW_Cadastre/MapServer/9/query"
	// QLDParcelURL is the QLD land parcel framework query endpoint.
	QLDParcelURL = "https://spatial-gis.information.qld.gov.au/arcgis/rest/services/PlanningCadastre/LandParcelPropertyFramework/MapServer/4/query"
)

// Config represents the root configuration file structure.
type Config struct {
	Sources     Sources      `yaml:"sources"`
	Style       export.Style `yaml:"style"`
	Export      Export       `yaml:"export"`
	Preview     Preview      `yaml:"preview"`
	CORSOrigin  string       `yaml:"cors_origin"`
	FrontendDir string       `yaml:"frontend_dir,omitempty"`
	Concurrency int          `yaml:"concurrency"`
}

// Sources lists the parcel registries per region.
type Sources struct {
	NSW Source `yaml:"nsw"`
	QLD Source `yaml:"qld"`
}

// Source is one ArcGIS layer query endpoint.
type Source struct {
	URL       string        `yaml:"url"`
	OutFields []string      `yaml:"out_fields,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

// Export tunes download artifacts.
type Export struct {
	BaseName   string `yaml:"base_name"`
	CompactKML bool   `yaml:"compact_kml"`
}

// Preview sets the raster preview canvas.
type Preview struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Padding    int    `yaml:"padding"`
	Background string `yaml:"background"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Sources: Sources{
			NSW: Source{
				URL:       NSWParcelURL,
				OutFields: []string{"lotnumber", "sectionnumber", "planlabel"},
				Timeout:   10 * time.Second,
			},
			QLD: Source{
				URL:       QLDParcelURL,
				OutFields: []string{"lot", "plan", "locality"},
				Timeout:   10 * time.Second,
			},
		},
		Style: export.DefaultStyle(),
		Export: Export{
			BaseName: export.DefaultBaseName,
		},
		Preview: Preview{
			Width:      512,
			Height:     512,
			Padding:    16,
			Background: "#FFFFFF",
		},
		CORSOrigin:  "*",
		Concurrency: 4,
	}
}

// Load reads the YAML configuration file at path on top of Default.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.normalize()
	return cfg, nil
}

// normalize refills values a config file zeroed out.
func (c *Config) normalize() {
	def := Default()

	if c.Export.BaseName == "" {
		c.Export.BaseName = def.Export.BaseName
	}
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.Preview.Width <= 0 {
		c.Preview.Width = def.Preview.Width
	}
	if c.Preview.Height <= 0 {
		c.Preview.Height = def.Preview.Height
	}
	if c.Preview.Padding < 0 {
		c.Preview.Padding = 0
	}
	if c.Style.FillColor == "" {
		c.Style.FillColor = def.Style.FillColor
	}
	if c.Style.OutlineColor == "" {
		c.Style.OutlineColor = def.Style.OutlineColor
	}
	if c.Style.OutlineWidth < 0 {
		c.Style.OutlineWidth = 0
	}
	if c.Preview.Background == "" {
		c.Preview.Background = def.Preview.Background
	}
	if c.Sources.NSW.URL == "" {
		c.Sources.NSW = def.Sources.NSW
	}
	if c.Sources.QLD.URL == "" {
		c.Sources.QLD = def.Sources.QLD
	}
	if c.Sources.NSW.Timeout <= 0 {
		c.Sources.NSW.Timeout = def.Sources.NSW.Timeout
	}
	if c.Sources.QLD.Timeout <= 0 {
		c.Sources.QLD.Timeout = def.Sources.QLD.Timeout
	}
}
