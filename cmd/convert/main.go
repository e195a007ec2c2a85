package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/woozymasta/lotexport/internal/config"
	"github.com/woozymasta/lotexport/internal/export"
	"github.com/woozymasta/lotexport/internal/geo"
	"github.com/woozymasta/lotexport/internal/logger"
	"github.com/woozymasta/lotexport/internal/lookup"
	"github.com/woozymasta/lotexport/internal/parcel"
	"github.com/woozymasta/lotexport/internal/preview"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`
	Style  StyleOptions  `group:"Style options"`

	ConfigFile string `short:"c" long:"config"  env:"CONFIG_FILE" description:"Path to configuration file for style, export and preview defaults"`
	Input      string `short:"i" long:"in"      description:"Input GeoJSON file path. Reads from stdin if empty"`
	Output     string `short:"o" long:"out"     description:"Output file path. Writes to stdout if empty"`
	Format     string `short:"f" long:"format"  description:"Output format" choice:"kml" choice:"shp" choice:"wkt" choice:"bounds" choice:"webp" default:"kml"`
	Region     string `short:"r" long:"region"  description:"Attribute schema, guessed from the input if auto" choice:"auto" choice:"nsw" choice:"qld" default:"auto"`
	Name       string `short:"n" long:"name"    description:"Base name of the shapefile members, from --out if empty"`
	Compact    bool   `short:"C" long:"compact" description:"Strip insignificant whitespace from KML"`
}

// StyleOptions override the configured export style.
type StyleOptions struct {
	FillColor    string   `long:"fill-color"    description:"Polygon fill color as #RRGGBB"`
	FillOpacity  *float64 `long:"fill-opacity"  description:"Polygon fill opacity in [0,1]"`
	OutlineColor string   `long:"outline-color" description:"Outline color as #RRGGBB"`
	OutlineWidth *int     `long:"outline-width" description:"Outline width in pixels, 0 for none"`
	FolderName   string   `long:"folder"        description:"KML folder name"`
}

func (s StyleOptions) overlay() export.StyleOverlay {
	return export.StyleOverlay{
		FillColor:    s.FillColor,
		FillOpacity:  s.FillOpacity,
		OutlineColor: s.OutlineColor,
		OutlineWidth: s.OutlineWidth,
		FolderName:   s.FolderName,
	}
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	var in io.Reader = os.Stdin
	if opts.Input != "" {
		f, err := os.Open(opts.Input)
		if err != nil {
			log.Fatal().Err(err).Str("path", opts.Input).Msg("Failed to open input")
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	data, count, err := convert(in, opts, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("format", opts.Format).Msg("Conversion failed")
	}

	if opts.Output == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			log.Fatal().Err(err).Msg("Failed to write stdout")
		}
		return
	}

	if err := os.WriteFile(opts.Output, data, 0644); err != nil {
		log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write output file")
	}

	log.Info().
		Int("features", count).
		Str("out", opts.Output).
		Str("format", opts.Format).
		Msg("Conversion finished successfully")
}

// convert decodes a feature collection from in and renders it in opts.Format.
func convert(in io.Reader, opts Options, cfg *config.Config) ([]byte, int, error) {
	var fc lookup.Collection
	if err := json.NewDecoder(in).Decode(&fc); err != nil {
		return nil, 0, fmt.Errorf("decode geojson: %w", err)
	}

	explicit := parcel.Unknown
	if opts.Region != "" && opts.Region != "auto" {
		r, err := parcel.ParseRegion(opts.Region)
		if err != nil {
			return nil, 0, err
		}
		explicit = r
	}
	regions := parcel.ResolveRegions(explicit, fc.Regions, fc.Features)
	style := opts.Style.overlay().Apply(cfg.Style)

	log.Debug().
		Int("features", len(fc.Features)).
		Str("region", parcel.Unanimous(regions).String()).
		Msg("Input decoded")

	var (
		out []byte
		err error
	)

	switch opts.Format {
	case "", "kml":
		doc := export.KMLByFeature(fc.Features, regions, style)
		if opts.Compact || cfg.Export.CompactKML {
			doc, err = export.CompactKML(doc)
		}
		out = []byte(doc)
	case "shp":
		out, err = export.ShapefileZipByFeature(fc.Features, regions, export.ShapefileOptions{
			BaseName: baseName(opts, cfg),
		})
	case "wkt":
		out = []byte(export.WKTByFeature(fc.Features, regions))
	case "bounds":
		out, err = json.Marshal(geo.ComputeBounds(fc.Features))
		out = append(out, '\n')
	case "webp":
		p := cfg.Preview
		out, err = preview.Render(fc.Features, style, preview.Options{
			Width:      p.Width,
			Height:     p.Height,
			Padding:    p.Padding,
			Background: p.Background,
		})
	default:
		err = fmt.Errorf("unknown format %q", opts.Format)
	}

	if err != nil {
		return nil, 0, err
	}

	return out, len(fc.Features), nil
}

func baseName(opts Options, cfg *config.Config) string {
	if opts.Name != "" {
		return opts.Name
	}
	if opts.Output != "" {
		return strings.TrimSuffix(filepath.Base(opts.Output), filepath.Ext(opts.Output))
	}
	return cfg.Export.BaseName
}
