package export

import (
	"strings"

	"github.com/paulmach/orb/encoding/wkt"
	"github.com/woozymasta/lotexport/internal/geo"
	"github.com/woozymasta/lotexport/internal/parcel"
)

var lineBreaks = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

// WKT lists polygonal features as "<display name>\t<WKT>" lines.
func WKT(features []geo.Feature, region parcel.Region) string {
	return WKTByFeature(features, uniform(region, len(features)))
}

// WKTByFeature is WKT with a schema region per feature.
func WKTByFeature(features []geo.Feature, regions []parcel.Region) string {
	var sb strings.Builder

	for i, f := range features {
		g := f.Geometry.Orb()
		if g == nil {
			continue
		}

		attrs := parcel.Project(f.Properties, regionAt(regions, i))
		sb.WriteString(lineBreaks.Replace(attrs.DisplayName))
		sb.WriteByte('\t')
		sb.WriteString(wkt.MarshalString(g))
		sb.WriteByte('\n')
	}

	return sb.String()
}

// uniform repeats region for n features.
func uniform(region parcel.Region, n int) []parcel.Region {
	regions := make([]parcel.Region, n)
	for i := range regions {
		regions[i] = region
	}
	return regions
}

// regionAt is regions[i], or Unknown past the end of a short list.
func regionAt(regions []parcel.Region, i int) parcel.Region {
	if i < len(regions) {
		return regions[i]
	}
	return parcel.Unknown
}
