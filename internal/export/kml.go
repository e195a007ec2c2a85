// Package export serializes parcel features to KML documents and zipped
// Shapefile bundles.
package export

import (
	"strconv"
	"strings"

	"github.com/woozymasta/lotexport/internal/geo"
	"github.com/woozymasta/lotexport/internal/parcel"
)

// Style controls the look of exported KML placemarks.
type Style struct {
	FillColor    string  `json:"fill_color"    yaml:"fill_color"`
	FillOpacity  float64 `json:"fill_opacity"  yaml:"fill_opacity"`
	OutlineColor string  `json:"outline_color" yaml:"outline_color"`
	OutlineWidth int     `json:"outline_width" yaml:"outline_width"`
	FolderName   string  `json:"folder_name"   yaml:"folder_name"`
}

// DefaultStyle is red at half opacity with a 2px black outline.
func DefaultStyle() Style {
	return Style{
		FillColor:    DefaultFillColor,
		FillOpacity:  DefaultFillOpacity,
		OutlineColor: DefaultOutlineColor,
		OutlineWidth: DefaultOutlineWidth,
		FolderName:   DefaultFolderName,
	}
}

// StyleOverlay is a partial Style as sent by API callers and CLI flags.
// Nil and empty fields keep the base value, so an explicit zero opacity or
// width survives.
type StyleOverlay struct {
	FillColor    string   `json:"fill_color,omitempty"`
	FillOpacity  *float64 `json:"fill_opacity,omitempty"`
	OutlineColor string   `json:"outline_color,omitempty"`
	OutlineWidth *int     `json:"outline_width,omitempty"`
	FolderName   string   `json:"folder_name,omitempty"`
}

// Apply returns base with the set overlay fields replaced.
func (o StyleOverlay) Apply(base Style) Style {
	if o.FillColor != "" {
		base.FillColor = o.FillColor
	}
	if o.FillOpacity != nil {
		base.FillOpacity = *o.FillOpacity
	}
	if o.OutlineColor != "" {
		base.OutlineColor = o.OutlineColor
	}
	if o.OutlineWidth != nil {
		base.OutlineWidth = max(*o.OutlineWidth, 0)
	}
	if o.FolderName != "" {
		base.FolderName = o.FolderName
	}

	return base
}

// KML renders features as a KML 2.2 document, one placemark per feature
// with polygonal geometry. The style is used as given. Output is
// deterministic for a given input.
func KML(features []geo.Feature, region parcel.Region, style Style) string {
	return KMLByFeature(features, uniform(region, len(features)), style)
}

// KMLByFeature is KML with regions[i] selecting the attribute schema of
// features[i], for batches that mix NSW and QLD parcels.
func KMLByFeature(features []geo.Feature, regions []parcel.Region, style Style) string {
	w := &kmlWriter{}
	w.line(0, `<?xml version="1.0" encoding="UTF-8"?>`)
	w.line(0, `<kml xmlns="http://www.opengis.net/kml/2.2">`)
	w.line(1, "<Document>")
	w.line(2, "<name>"+escapeXML(style.FolderName)+"</name>")
	w.line(2, `<Style id="`+kmlStyleID+`">`)
	w.line(3, "<LineStyle><color>"+KMLColor(style.OutlineColor, 1)+"</color><width>"+
		strconv.Itoa(style.OutlineWidth)+"</width></LineStyle>")
	w.line(3, "<PolyStyle><color>"+KMLColor(style.FillColor, style.FillOpacity)+"</color></PolyStyle>")
	w.line(2, "</Style>")

	for i, f := range features {
		parts := geo.ExtractParts(f.Geometry)
		if len(parts) == 0 {
			continue
		}

		attrs := parcel.Project(f.Properties, regionAt(regions, i))
		w.placemark(attrs, parts)
	}

	w.line(1, "</Document>")
	w.line(0, "</kml>")

	return w.String()
}

// kmlWriter is an append-only line builder scoped to one KML call.
type kmlWriter struct {
	sb strings.Builder
}

func (w *kmlWriter) line(depth int, s string) {
	for i := 0; i < depth; i++ {
		w.sb.WriteString("  ")
	}
	w.sb.WriteString(s)
	w.sb.WriteByte('\n')
}

func (w *kmlWriter) String() string {
	return w.sb.String()
}

func (w *kmlWriter) placemark(attrs parcel.Attributes, parts []geo.Polygon) {
	w.line(2, "<Placemark>")
	w.line(3, "<name>"+escapeXML(attrs.DisplayName)+"</name>")
	w.line(3, "<styleUrl>#"+kmlStyleID+"</styleUrl>")
	w.line(3, "<description><![CDATA["+popupTable(attrs.PopupRows)+"]]></description>")

	depth := 3
	multi := len(parts) > 1
	if multi {
		w.line(depth, "<MultiGeometry>")
		depth++
	}

	for _, part := range parts {
		w.polygon(depth, part)
	}

	if multi {
		w.line(3, "</MultiGeometry>")
	}
	w.line(2, "</Placemark>")
}

func (w *kmlWriter) polygon(depth int, p geo.Polygon) {
	w.line(depth, "<Polygon>")
	w.boundary(depth+1, "outerBoundaryIs", p.Outer)
	for _, hole := range p.Holes {
		w.boundary(depth+1, "innerBoundaryIs", hole)
	}
	w.line(depth, "</Polygon>")
}

func (w *kmlWriter) boundary(depth int, tag string, ring geo.Ring) {
	w.line(depth, "<"+tag+"><LinearRing>")
	w.line(depth+1, "<coordinates>")
	for _, pt := range geo.CloseRing(ring) {
		w.line(depth+2, formatCoord(pt[0])+","+formatCoord(pt[1])+",0")
	}
	w.line(depth+1, "</coordinates>")
	w.line(depth, "</LinearRing></"+tag+">")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// popupTable renders attribute rows as an escaped HTML table.
func popupTable(rows []geo.Property) string {
	var sb strings.Builder
	sb.WriteString("<table>")
	for _, row := range rows {
		sb.WriteString("<tr><th>")
		sb.WriteString(escapeXML(row.Key))
		sb.WriteString("</th><td>")
		sb.WriteString(escapeXML(geo.FormatValue(row.Value)))
		sb.WriteString("</td></tr>")
	}
	sb.WriteString("</table>")

	return sb.String()
}
