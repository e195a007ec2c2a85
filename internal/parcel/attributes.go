package parcel

import (
	"strings"

	"github.com/woozymasta/lotexport/internal/geo"
)

// Attributes is the normalised view of a parcel's registry attributes.
type Attributes struct {
	Lot         string
	Section     string
	Plan        string
	Locality    string
	DisplayName string
	// PopupRows lists every non-empty source attribute in source order.
	PopupRows []geo.Property
}

// Schema is implemented by the per-region attribute records.
type Schema interface {
	Region() Region
	Attributes() Attributes
}

// NSWProperties holds the NSW cadastre lot layer fields.
type NSWProperties struct {
	LotNumber     string
	SectionNumber string
	PlanLabel     string
}

// Region implements Schema.
func (NSWProperties) Region() Region { return NSW }

// Attributes implements Schema.
func (p NSWProperties) Attributes() Attributes {
	var name strings.Builder
	name.WriteString("Lot ")
	name.WriteString(p.LotNumber)
	name.WriteByte(' ')
	if p.SectionNumber != "" {
		name.WriteString("Section ")
		name.WriteString(p.SectionNumber)
		name.WriteByte(' ')
	}
	name.WriteString(p.PlanLabel)

	return Attributes{
		Lot:         p.LotNumber,
		Section:     p.SectionNumber,
		Plan:        p.PlanLabel,
		DisplayName: name.String(),
	}
}

// QLDProperties holds the QLD land parcel framework fields.
type QLDProperties struct {
	Lot      string
	Plan     string
	Locality string
}

// Region implements Schema.
func (QLDProperties) Region() Region { return QLD }

// Attributes implements Schema.
func (p QLDProperties) Attributes() Attributes {
	return Attributes{
		Lot:         p.Lot,
		Plan:        p.Plan,
		Locality:    p.Locality,
		DisplayName: "Lot " + p.Lot + " Plan " + p.Plan,
	}
}

// Decode selects the schema for region. Unknown falls back to NSW.
func Decode(props geo.Properties, region Region) Schema {
	if region == QLD {
		return QLDProperties{
			Lot:      props.String("lot"),
			Plan:     props.String("plan"),
			Locality: props.String("locality"),
		}
	}

	return NSWProperties{
		LotNumber:     props.String("lotnumber"),
		SectionNumber: props.String("sectionnumber"),
		PlanLabel:     props.String("planlabel"),
	}
}

// Project maps raw feature properties to Attributes. It never fails:
// missing keys become empty strings.
func Project(props geo.Properties, region Region) Attributes {
	attrs := Decode(props, region).Attributes()
	attrs.PopupRows = PopupRows(props)

	return attrs
}

// PopupRows returns the properties whose value is neither null nor "".
func PopupRows(props geo.Properties) []geo.Property {
	rows := make([]geo.Property, 0, len(props))
	for _, prop := range props {
		if prop.Value == nil {
			continue
		}
		if s, ok := prop.Value.(string); ok && s == "" {
			continue
		}
		rows = append(rows, prop)
	}

	return rows
}
