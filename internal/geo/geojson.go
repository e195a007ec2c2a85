// Package geo handles parcel geometry, GeoJSON decoding and bounds computation.
package geo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Kind tags the geometry variants the export engine knows about.
type Kind int

const (
	// KindUnsupported covers null, malformed and non-polygonal geometries.
	KindUnsupported Kind = iota
	KindPolygon
	KindMultiPolygon
)

func (k Kind) String() string {
	switch k {
	case KindPolygon:
		return "Polygon"
	case KindMultiPolygon:
		return "MultiPolygon"
	default:
		return "Unsupported"
	}
}

// FeatureCollection represents a collection of parcel features.
// It follows the standard GeoJSON structure.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature represents a single parcel with geometry and ordered properties.
type Feature struct {
	ID         json.RawMessage `json:"id,omitempty"`
	Type       string          `json:"type"`
	Geometry   Geometry        `json:"geometry"`
	Properties Properties      `json:"properties"`
}

// Geometry is a closed variant over the polygonal GeoJSON types.
// Decoding never fails: anything that is not a well formed Polygon or
// MultiPolygon becomes KindUnsupported and keeps its raw encoding.
type Geometry struct {
	Kind         Kind
	Polygon      orb.Polygon
	MultiPolygon orb.MultiPolygon

	raw json.RawMessage
}

// NewGeometry wraps an orb geometry. Non-polygonal input yields KindUnsupported.
func NewGeometry(g orb.Geometry) Geometry {
	switch v := g.(type) {
	case orb.Polygon:
		return Geometry{Kind: KindPolygon, Polygon: v}
	case orb.MultiPolygon:
		return Geometry{Kind: KindMultiPolygon, MultiPolygon: v}
	}

	if g == nil {
		return Geometry{}
	}

	raw, err := geojson.NewGeometry(g).MarshalJSON()
	if err != nil {
		return Geometry{}
	}

	return Geometry{raw: raw}
}

// Orb returns the geometry as an orb value, nil for unsupported kinds.
func (g Geometry) Orb() orb.Geometry {
	switch g.Kind {
	case KindPolygon:
		return g.Polygon
	case KindMultiPolygon:
		return g.MultiPolygon
	default:
		return nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	*g = Geometry{}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	g.raw = append(json.RawMessage(nil), trimmed...)

	decoded, err := geojson.UnmarshalGeometry(trimmed)
	if err != nil || decoded == nil {
		// not our concern: the feature is simply excluded from geometric output
		return nil
	}

	switch v := decoded.Geometry().(type) {
	case orb.Polygon:
		g.Kind, g.Polygon = KindPolygon, v
	case orb.MultiPolygon:
		g.Kind, g.MultiPolygon = KindMultiPolygon, v
	}

	return nil
}

// MarshalJSON implements json.Marshaler.
func (g Geometry) MarshalJSON() ([]byte, error) {
	if og := g.Orb(); og != nil {
		return geojson.NewGeometry(og).MarshalJSON()
	}
	if len(g.raw) > 0 {
		return g.raw, nil
	}

	return []byte("null"), nil
}

// Property is a single key/value pair of a feature's attribute map.
type Property struct {
	Key   string
	Value any
}

// Properties keeps feature attributes in their source order.
type Properties []Property

// Get returns the raw value stored under key.
func (p Properties) Get(key string) (any, bool) {
	for _, prop := range p {
		if prop.Key == key {
			return prop.Value, true
		}
	}

	return nil, false
}

// Has reports whether key is present, regardless of its value.
func (p Properties) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// String returns the value under key formatted as text, "" when absent or null.
func (p Properties) String(key string) string {
	v, _ := p.Get(key)
	return FormatValue(v)
}

// UnmarshalJSON implements json.Unmarshaler, preserving key order.
func (p *Properties) UnmarshalJSON(data []byte) error {
	*p = nil

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("properties: expected object, got %v", tok)
	}

	props := Properties{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("properties: unexpected key %v", keyTok)
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("properties: value of %q: %w", key, err)
		}

		props = append(props, Property{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*p = props
	return nil
}

// MarshalJSON implements json.Marshaler, preserving key order.
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(prop.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(prop.Value)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FormatValue renders a scalar property value as plain text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}

	return string(data)
}

// NewFeature builds a Feature from an orb geometry and properties.
func NewFeature(g orb.Geometry, props Properties) Feature {
	return Feature{
		Type:       "Feature",
		Geometry:   NewGeometry(g),
		Properties: props,
	}
}

// NewFeatureCollection wraps features into a FeatureCollection.
func NewFeatureCollection(features []Feature) FeatureCollection {
	if features == nil {
		features = []Feature{}
	}

	return FeatureCollection{Type: "FeatureCollection", Features: features}
}
