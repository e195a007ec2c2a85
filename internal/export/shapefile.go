package export

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/woozymasta/lotexport/internal/geo"
	"github.com/woozymasta/lotexport/internal/parcel"
)

// ESRI shape type codes and header constants.
const (
	shapeNull    = 0
	shapePolygon = 5

	shpFileCode   = 9994
	shpVersion    = 1000
	shpHeaderSize = 100
	// recordHeaderSize is record number plus content length.
	recordHeaderSize = 8
)

// ShapefileOptions tunes the bundle layout.
type ShapefileOptions struct {
	// BaseName is shared by the four member files, "parcels" if empty.
	BaseName string
	// Modified stamps the DBF header and zip entries, 1980-01-01 UTC if zero.
	Modified time.Time
}

func (o ShapefileOptions) normalize() ShapefileOptions {
	if o.BaseName == "" {
		o.BaseName = DefaultBaseName
	}
	if o.Modified.IsZero() {
		o.Modified = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)
	}

	return o
}

// Shapefile is an encoded polygon shapefile dataset.
type Shapefile struct {
	BaseName string
	SHP      []byte
	SHX      []byte
	DBF      []byte
	PRJ      []byte

	modified time.Time
}

// File is one member of a Shapefile bundle.
type File struct {
	Name string
	Data []byte
}

// Files lists the bundle members in .shp, .shx, .dbf, .prj order.
func (s *Shapefile) Files() []File {
	return []File{
		{Name: s.BaseName + ".shp", Data: s.SHP},
		{Name: s.BaseName + ".shx", Data: s.SHX},
		{Name: s.BaseName + ".dbf", Data: s.DBF},
		{Name: s.BaseName + ".prj", Data: s.PRJ},
	}
}

// Zip packages the bundle into a zip archive held in memory.
func (s *Shapefile) Zip() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range s.Files() {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: s.modified,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", f.Name, err)
		}
		if _, err := w.Write(f.Data); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}

	return buf.Bytes(), nil
}

// ShapefileZip encodes features as a zipped polygon shapefile bundle.
func ShapefileZip(features []geo.Feature, region parcel.Region, opts ShapefileOptions) ([]byte, error) {
	return BuildShapefile(features, region, opts).Zip()
}

// ShapefileZipByFeature is ShapefileZip with a schema region per feature.
func ShapefileZipByFeature(features []geo.Feature, regions []parcel.Region, opts ShapefileOptions) ([]byte, error) {
	return BuildShapefileByFeature(features, regions, opts).Zip()
}

// BuildShapefile encodes features as a polygon shapefile.
func BuildShapefile(features []geo.Feature, region parcel.Region, opts ShapefileOptions) *Shapefile {
	return BuildShapefileByFeature(features, uniform(region, len(features)), opts)
}

// BuildShapefileByFeature projects features[i] with regions[i]. Every
// feature gets an attribute row; features without polygon parts are written
// as null shapes so record numbers stay aligned across .shp, .shx and .dbf.
func BuildShapefileByFeature(features []geo.Feature, regions []parcel.Region, opts ShapefileOptions) *Shapefile {
	opts = opts.normalize()

	records := make([]shapeRecord, len(features))
	rows := make([][]string, len(features))

	for i, f := range features {
		attrs := parcel.Project(f.Properties, regionAt(regions, i))
		rows[i] = []string{attrs.Lot, attrs.Section, attrs.Plan}
		records[i] = newShapeRecord(geo.ExtractParts(f.Geometry))
	}

	shp, shx := encodeShapes(records)

	return &Shapefile{
		BaseName: opts.BaseName,
		SHP:      shp,
		SHX:      shx,
		DBF:      encodeDBF(parcelFields, rows, opts.Modified),
		PRJ:      []byte(wgs84PRJ),
		modified: opts.Modified,
	}
}

// shapeRecord is one polygon record; no rings means a null shape.
type shapeRecord struct {
	rings []orb.Ring
	bound orb.Bound
}

func newShapeRecord(parts []geo.Polygon) shapeRecord {
	var rec shapeRecord

	for _, part := range parts {
		rec.rings = append(rec.rings, geo.Orient(part.Outer, orb.CW))
		for _, hole := range part.Holes {
			rec.rings = append(rec.rings, geo.Orient(hole, orb.CCW))
		}
	}

	for i, ring := range rec.rings {
		b := ring.Bound()
		if i == 0 {
			rec.bound = b
			continue
		}
		rec.bound = rec.bound.Union(b)
	}

	return rec
}

func (r shapeRecord) null() bool {
	return len(r.rings) == 0
}

func (r shapeRecord) numPoints() int {
	n := 0
	for _, ring := range r.rings {
		n += len(ring)
	}

	return n
}

// contentSize is the record content length in bytes.
func (r shapeRecord) contentSize() int {
	if r.null() {
		return 4
	}

	return 4 + 32 + 4 + 4 + 4*len(r.rings) + 16*r.numPoints()
}

func (r shapeRecord) appendContent(buf []byte) []byte {
	if r.null() {
		return binary.LittleEndian.AppendUint32(buf, shapeNull)
	}

	buf = binary.LittleEndian.AppendUint32(buf, shapePolygon)
	buf = appendBound(buf, r.bound)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(r.rings)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(r.numPoints()))

	start := 0
	for _, ring := range r.rings {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(start))
		start += len(ring)
	}
	for _, ring := range r.rings {
		for _, pt := range ring {
			buf = appendFloat(buf, pt.X())
			buf = appendFloat(buf, pt.Y())
		}
	}

	return buf
}

// encodeShapes writes the .shp and .shx payloads.
func encodeShapes(records []shapeRecord) (shp, shx []byte) {
	var (
		bound   orb.Bound
		hasData bool
	)

	shpSize := shpHeaderSize
	for _, rec := range records {
		shpSize += recordHeaderSize + rec.contentSize()
		if rec.null() {
			continue
		}
		if !hasData {
			bound, hasData = rec.bound, true
			continue
		}
		bound = bound.Union(rec.bound)
	}
	shxSize := shpHeaderSize + recordHeaderSize*len(records)

	shp = appendHeader(make([]byte, 0, shpSize), shpSize, bound)
	shx = appendHeader(make([]byte, 0, shxSize), shxSize, bound)

	for i, rec := range records {
		offset := len(shp) / 2
		words := rec.contentSize() / 2

		shp = binary.BigEndian.AppendUint32(shp, uint32(i+1))
		shp = binary.BigEndian.AppendUint32(shp, uint32(words))
		shp = rec.appendContent(shp)

		shx = binary.BigEndian.AppendUint32(shx, uint32(offset))
		shx = binary.BigEndian.AppendUint32(shx, uint32(words))
	}

	return shp, shx
}

// appendHeader writes the 100 byte header shared by .shp and .shx.
// An empty bound is written as zeros.
func appendHeader(buf []byte, fileSize int, bound orb.Bound) []byte {
	buf = binary.BigEndian.AppendUint32(buf, shpFileCode)
	buf = append(buf, make([]byte, 20)...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(fileSize/2))
	buf = binary.LittleEndian.AppendUint32(buf, shpVersion)
	buf = binary.LittleEndian.AppendUint32(buf, shapePolygon)
	buf = appendBound(buf, bound)

	// Z and M ranges are unused for 2D polygons.
	return append(buf, make([]byte, 32)...)
}

func appendBound(buf []byte, b orb.Bound) []byte {
	buf = appendFloat(buf, b.Min.X())
	buf = appendFloat(buf, b.Min.Y())
	buf = appendFloat(buf, b.Max.X())
	return appendFloat(buf, b.Max.Y())
}

func appendFloat(buf []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
}
