// Package parcel models cadastral regions, lot identifiers and the
// per-region attribute schemas of the parcel registries.
package parcel

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/woozymasta/lotexport/internal/geo"
)

// Region selects the registry and attribute schema of a parcel.
type Region int

const (
	Unknown Region = iota
	NSW
	QLD
)

func (r Region) String() string {
	switch r {
	case NSW:
		return "NSW"
	case QLD:
		return "QLD"
	default:
		return ""
	}
}

// ParseRegion accepts "NSW" or "QLD" in any case.
func ParseRegion(s string) (Region, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NSW":
		return NSW, nil
	case "QLD":
		return QLD, nil
	default:
		return Unknown, fmt.Errorf("unknown region %q", s)
	}
}

// MarshalJSON implements json.Marshaler.
func (r Region) MarshalJSON() ([]byte, error) {
	if r == Unknown {
		return []byte("null"), nil
	}

	return json.Marshal(r.String())
}

// UnmarshalJSON implements json.Unmarshaler. Empty and null map to Unknown.
func (r *Region) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*r = Unknown
		return nil
	}

	parsed, err := ParseRegion(*s)
	if err != nil {
		return err
	}

	*r = parsed
	return nil
}

// InferRegion guesses the schema from attribute keys: QLD parcels carry a
// "lot" key, NSW parcels "lotnumber". Callers that know the region should
// pass it explicitly instead.
func InferRegion(features []geo.Feature) Region {
	for _, f := range features {
		if f.Properties.Has("lot") {
			return QLD
		}
	}

	return NSW
}

// Unanimous returns the shared region of regions, or Unknown when they
// disagree or are empty.
func Unanimous(regions []Region) Region {
	if len(regions) == 0 {
		return Unknown
	}

	first := regions[0]
	for _, r := range regions[1:] {
		if r != first {
			return Unknown
		}
	}

	return first
}

// ResolveRegion picks the schema for a batch: the explicit region when set,
// then a unanimous per-feature regions list, then InferRegion.
func ResolveRegion(explicit Region, regions []Region, features []geo.Feature) Region {
	if explicit != Unknown {
		return explicit
	}
	if region := Unanimous(regions); region != Unknown {
		return region
	}

	return InferRegion(features)
}

// ResolveRegions picks a schema for every feature. A regions list aligned
// with features is used entry by entry, with unknown entries inferred from
// their own feature. Otherwise every feature gets ResolveRegion's answer.
func ResolveRegions(explicit Region, regions []Region, features []geo.Feature) []Region {
	out := make([]Region, len(features))

	if explicit == Unknown && len(regions) == len(features) {
		for i, r := range regions {
			if r == Unknown {
				r = InferRegion(features[i : i+1])
			}
			out[i] = r
		}
		return out
	}

	region := ResolveRegion(explicit, regions, features)
	for i := range out {
		out[i] = region
	}

	return out
}
