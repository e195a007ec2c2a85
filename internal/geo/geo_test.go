package geo

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unitSquare = orb.Polygon{{{0, 0}, {0, 1}, {1, 1}, {1, 0}}}

func TestCloseRing(t *testing.T) {
	tests := []struct {
		name string
		in   Ring
		want Ring
	}{
		{"Open", Ring{{0, 0}, {0, 1}, {1, 1}}, Ring{{0, 0}, {0, 1}, {1, 1}, {0, 0}}},
		{"Closed", Ring{{0, 0}, {0, 1}, {1, 1}, {0, 0}}, Ring{{0, 0}, {0, 1}, {1, 1}, {0, 0}}},
		{"Single Point", Ring{{5, 5}}, Ring{{5, 5}}},
		{"Two Equal Points", Ring{{0, 0}, {0, 0}}, Ring{{0, 0}, {0, 0}}},
		{"Closed Degenerate", Ring{{0, 0}, {1, 1}, {0, 0}}, Ring{{0, 0}, {1, 1}, {0, 0}}},
		{"Open Pair", Ring{{0, 0}, {1, 1}}, Ring{{0, 0}, {1, 1}, {0, 0}}},
		{"Empty", Ring{}, Ring{}},
		{"Differs Only In Y", Ring{{1, 1}, {2, 2}, {1, 1.5}}, Ring{{1, 1}, {2, 2}, {1, 1.5}, {1, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CloseRing(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, CloseRing(got), "closing must be idempotent")
			if len(got) > 0 {
				assert.Equal(t, got[0], got[len(got)-1])
			}
		})
	}
}

func TestCloseRingRepeated(t *testing.T) {
	for _, r := range []Ring{{{5, 5}}, {{0, 0}, {0, 0}}, {{0, 0}, {1, 1}}, {{0, 0}, {1, 0}, {1, 1}}} {
		once := CloseRing(r)
		assert.Equal(t, once, CloseRing(CloseRing(once)), "%v", r)
	}
}

func TestCloseRingDoesNotMutate(t *testing.T) {
	backing := make(Ring, 3, 8)
	copy(backing, Ring{{9, 9}, {1, 0}, {1, 1}})

	closed := CloseRing(backing)

	require.Len(t, closed, 4)
	assert.Len(t, backing, 3)
	assert.Equal(t, orb.Point{0, 0}, backing[:4][3], "spare capacity of the input must stay untouched")
}

func TestOrient(t *testing.T) {
	cw := unitSquare[0]

	got := Orient(cw, orb.CW)
	assert.Equal(t, orb.CW, got.Orientation())
	assert.Len(t, got, 5)

	ccw := Orient(cw, orb.CCW)
	assert.Equal(t, orb.CCW, ccw.Orientation())
	assert.Equal(t, Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}, ccw)
	assert.Equal(t, orb.Point{0, 1}, cw[1], "input must not be reversed in place")

	line := Ring{{0, 0}, {1, 1}}
	assert.Equal(t, Ring{{0, 0}, {1, 1}, {0, 0}}, Orient(line, orb.CCW))
}

func TestExtractParts(t *testing.T) {
	hole := orb.Ring{{0.2, 0.2}, {0.4, 0.2}, {0.4, 0.4}, {0.2, 0.2}}

	t.Run("Polygon With Hole", func(t *testing.T) {
		parts := ExtractParts(NewGeometry(orb.Polygon{unitSquare[0], hole}))
		require.Len(t, parts, 1)
		assert.Equal(t, unitSquare[0], parts[0].Outer)
		assert.Equal(t, []Ring{hole}, parts[0].Holes)
		assert.Len(t, parts[0].Rings(), 2)
	})

	t.Run("MultiPolygon", func(t *testing.T) {
		mp := orb.MultiPolygon{unitSquare, {}, {{{5, 5}, {6, 5}, {6, 6}}}}
		parts := ExtractParts(NewGeometry(mp))
		require.Len(t, parts, 2, "rings-less polygons are skipped")
		assert.Empty(t, parts[0].Holes)
		assert.Equal(t, orb.Point{5, 5}, parts[1].Outer[0])
	})

	t.Run("Empty Rings", func(t *testing.T) {
		parts := ExtractParts(NewGeometry(orb.MultiPolygon{
			{{}},
			{unitSquare[0], {}, hole},
		}))
		require.Len(t, parts, 1)
		assert.Equal(t, []Ring{hole}, parts[0].Holes)
	})

	t.Run("Unsupported", func(t *testing.T) {
		assert.Empty(t, ExtractParts(NewGeometry(orb.Point{1, 2})))
		assert.Empty(t, ExtractParts(Geometry{}))
	})
}

func TestComputeBounds(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		b := ComputeBounds(nil)
		assert.True(t, b.Empty())
		data, err := json.Marshal(b)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(data))
	})

	t.Run("Unsupported Only", func(t *testing.T) {
		b := ComputeBounds([]Feature{NewFeature(orb.LineString{{0, 0}, {3, 3}}, nil)})
		assert.True(t, b.Empty())
	})

	t.Run("Unit Square", func(t *testing.T) {
		b := ComputeBounds([]Feature{NewFeature(unitSquare, nil)})
		assert.Equal(t, LatLonBounds{{0, 0}, {1, 1}}, b)
	})

	t.Run("Lat Lon Order And Holes", func(t *testing.T) {
		poly := orb.Polygon{
			{{151.0, -33.9}, {151.2, -33.9}, {151.2, -33.7}, {151.0, -33.9}},
			{{150.9, -34.0}, {150.95, -34.0}, {150.95, -33.95}, {150.9, -34.0}},
		}
		b := ComputeBounds([]Feature{
			NewFeature(orb.Point{0, 0}, nil),
			NewFeature(orb.MultiPolygon{poly}, nil),
		})
		assert.Equal(t, LatLonBounds{{-34.0, 150.9}, {-33.7, 151.2}}, b)
		assert.Equal(t, orb.Point{150.9, -34.0}, b.Bound().Min)
	})
}

func TestFeatureUnmarshal(t *testing.T) {
	data := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "id": 7,
			 "geometry": {"type": "Polygon", "coordinates": [[[0,0],[0,1],[1,1],[1,0]]]},
			 "properties": {"planlabel": "DP12345", "lotnumber": "3", "sectionnumber": null, "area": 12.50}},
			{"type": "Feature", "geometry": {"type": "MultiPolygon", "coordinates": [[[[0,0],[0,1],[1,1]]],[[[2,2],[2,3],[3,3]]]]}, "properties": null},
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [1,2]}, "properties": {}},
			{"type": "Feature", "geometry": null, "properties": {"lot": "1"}},
			{"type": "Feature", "geometry": {"type": "Blob", "coordinates": "nope"}, "properties": {}}
		]
	}`)

	var fc FeatureCollection
	require.NoError(t, json.Unmarshal(data, &fc))
	require.Len(t, fc.Features, 5)

	first := fc.Features[0]
	assert.Equal(t, KindPolygon, first.Geometry.Kind)
	assert.Equal(t, []string{"planlabel", "lotnumber", "sectionnumber", "area"}, keys(first.Properties))
	assert.Equal(t, "3", first.Properties.String("lotnumber"))
	assert.Equal(t, "", first.Properties.String("sectionnumber"))
	assert.Equal(t, "12.50", first.Properties.String("area"))
	assert.True(t, first.Properties.Has("sectionnumber"))
	assert.False(t, first.Properties.Has("lot"))

	assert.Equal(t, KindMultiPolygon, fc.Features[1].Geometry.Kind)
	assert.Len(t, fc.Features[1].Geometry.MultiPolygon, 2)
	assert.Nil(t, fc.Features[1].Properties)

	assert.Equal(t, KindUnsupported, fc.Features[2].Geometry.Kind)
	assert.Equal(t, KindUnsupported, fc.Features[3].Geometry.Kind)
	assert.Equal(t, KindUnsupported, fc.Features[4].Geometry.Kind)
}

func TestFeatureMarshalKeepsOrder(t *testing.T) {
	in := `{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{"z":"1","a":2,"m":null}}`

	var f Feature
	require.NoError(t, json.Unmarshal([]byte(in), &f))

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"properties":{"z":"1","a":2,"m":null}`)
	assert.Contains(t, string(out), `"type":"Point"`)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "abc", FormatValue("abc"))
	assert.Equal(t, "42", FormatValue(json.Number("42")))
	assert.Equal(t, "1.5", FormatValue(1.5))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, `["a"]`, FormatValue([]any{"a"}))
}

func keys(p Properties) []string {
	out := make([]string, 0, len(p))
	for _, prop := range p {
		out = append(out, prop.Key)
	}
	return out
}
