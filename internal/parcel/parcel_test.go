package parcel

import (
	"encoding/json"
	"testing"

	"github.com/woozymasta/lotexport/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func props(kv ...any) geo.Properties {
	out := geo.Properties{}
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, geo.Property{Key: kv[i].(string), Value: kv[i+1]})
	}
	return out
}

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
		want  Identifier
	}{
		{"43/DP12345", true, Identifier{Region: NSW, Lot: "43", Plan: "DP12345"}},
		{" 43 / 1 / dp12345 ", true, Identifier{Region: NSW, Lot: "43", Section: "1", Plan: "DP12345"}},
		{"43//DP12345", true, Identifier{Region: NSW, Lot: "43", Plan: "DP12345"}},
		{"3RP123456", true, Identifier{Region: QLD, Lot: "3", Plan: "RP123456"}},
		{"12sp789", true, Identifier{Region: QLD, Lot: "12", Plan: "SP789"}},
		{"101CP1234", true, Identifier{Region: QLD, Lot: "101", Plan: "CP1234"}},
		{"", false, Identifier{}},
		{"   ", false, Identifier{}},
		{"1/2/3/4", false, Identifier{}},
		{"/DP1", false, Identifier{}},
		{"5/", false, Identifier{}},
		{"RP123456", false, Identifier{}},
		{"3ABCD12", false, Identifier{}},
		{"hello world", false, Identifier{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseIdentifier(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.input, got.Raw)

			got.Raw = ""
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentifierString(t *testing.T) {
	id, ok := ParseIdentifier("43/1/dp12345")
	require.True(t, ok)
	assert.Equal(t, "43/1/DP12345", id.String())
	assert.True(t, id.HasSection())

	id, ok = ParseIdentifier("3rp123456")
	require.True(t, ok)
	assert.Equal(t, "3RP123456", id.String())
	assert.Equal(t, "3RP123456", id.LotPlan())
}

func TestProjectNSW(t *testing.T) {
	tests := []struct {
		name  string
		props geo.Properties
		want  string
	}{
		{"Without Section", props("lotnumber", "3", "planlabel", "DP12345"), "Lot 3 DP12345"},
		{"Empty Section", props("lotnumber", "3", "sectionnumber", "", "planlabel", "DP12345"), "Lot 3 DP12345"},
		{"Null Section", props("lotnumber", "3", "sectionnumber", nil, "planlabel", "DP12345"), "Lot 3 DP12345"},
		{"With Section", props("lotnumber", "3", "sectionnumber", "7", "planlabel", "DP12345"), "Lot 3 Section 7 DP12345"},
		{"Numeric Values", props("lotnumber", json.Number("12"), "planlabel", "DP1"), "Lot 12 DP1"},
		{"Nothing", nil, "Lot  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := Project(tt.props, NSW)
			assert.Equal(t, tt.want, attrs.DisplayName)
		})
	}

	attrs := Project(props("lotnumber", "3", "sectionnumber", "7", "planlabel", "DP12345"), NSW)
	assert.Equal(t, "3", attrs.Lot)
	assert.Equal(t, "7", attrs.Section)
	assert.Equal(t, "DP12345", attrs.Plan)
	assert.Equal(t, "", attrs.Locality)
}

func TestProjectQLD(t *testing.T) {
	attrs := Project(props("lot", "3", "plan", "RP123456", "locality", "BRISBANE"), QLD)
	assert.Equal(t, "Lot 3 Plan RP123456", attrs.DisplayName)
	assert.Equal(t, "3", attrs.Lot)
	assert.Equal(t, "", attrs.Section)
	assert.Equal(t, "RP123456", attrs.Plan)
	assert.Equal(t, "BRISBANE", attrs.Locality)

	empty := Project(nil, QLD)
	assert.Equal(t, "Lot  Plan ", empty.DisplayName)
}

func TestProjectUnknownFallsBackToNSW(t *testing.T) {
	attrs := Project(props("lotnumber", "1", "planlabel", "DP9"), Unknown)
	assert.Equal(t, "Lot 1 DP9", attrs.DisplayName)
}

func TestDecodeSchema(t *testing.T) {
	s := Decode(props("lot", "3", "plan", "RP1"), QLD)
	q, ok := s.(QLDProperties)
	require.True(t, ok)
	assert.Equal(t, QLD, q.Region())

	s = Decode(props("lotnumber", "3"), NSW)
	n, ok := s.(NSWProperties)
	require.True(t, ok)
	assert.Equal(t, NSW, n.Region())
	assert.Equal(t, "3", n.LotNumber)
}

func TestPopupRows(t *testing.T) {
	rows := PopupRows(props(
		"lotnumber", "3",
		"sectionnumber", "",
		"planlabel", "DP12345",
		"shape_area", json.Number("0"),
		"notes", nil,
	))

	require.Len(t, rows, 3)
	assert.Equal(t, "lotnumber", rows[0].Key)
	assert.Equal(t, "planlabel", rows[1].Key)
	assert.Equal(t, "shape_area", rows[2].Key)
	assert.NotNil(t, PopupRows(nil))
}

func TestInferRegion(t *testing.T) {
	nsw := geo.Feature{Properties: props("lotnumber", "1")}
	qld := geo.Feature{Properties: props("lot", "1")}

	assert.Equal(t, NSW, InferRegion(nil))
	assert.Equal(t, NSW, InferRegion([]geo.Feature{nsw}))
	assert.Equal(t, QLD, InferRegion([]geo.Feature{nsw, qld}))
}

func TestUnanimous(t *testing.T) {
	assert.Equal(t, Unknown, Unanimous(nil))
	assert.Equal(t, QLD, Unanimous([]Region{QLD, QLD}))
	assert.Equal(t, Unknown, Unanimous([]Region{QLD, NSW}))
}

func TestResolveRegion(t *testing.T) {
	qld := []geo.Feature{{Properties: props("lot", "3")}}

	assert.Equal(t, NSW, ResolveRegion(NSW, []Region{QLD}, qld))
	assert.Equal(t, NSW, ResolveRegion(Unknown, []Region{NSW, NSW}, qld))
	assert.Equal(t, QLD, ResolveRegion(Unknown, []Region{NSW, QLD}, qld))
	assert.Equal(t, NSW, ResolveRegion(Unknown, nil, nil))
}

func TestResolveRegions(t *testing.T) {
	nsw := geo.Feature{Properties: props("lotnumber", "43")}
	qld := geo.Feature{Properties: props("lot", "3")}
	mixed := []geo.Feature{nsw, qld}

	assert.Equal(t, []Region{NSW, QLD}, ResolveRegions(Unknown, []Region{NSW, QLD}, mixed))
	assert.Equal(t, []Region{NSW, QLD}, ResolveRegions(Unknown, []Region{Unknown, Unknown}, mixed))
	assert.Equal(t, []Region{QLD, QLD}, ResolveRegions(QLD, []Region{NSW, QLD}, mixed))
	assert.Equal(t, []Region{QLD, QLD}, ResolveRegions(Unknown, []Region{QLD}, mixed))
	assert.Equal(t, []Region{QLD, QLD}, ResolveRegions(Unknown, nil, mixed))
	assert.Empty(t, ResolveRegions(Unknown, nil, nil))
}

func TestRegionJSON(t *testing.T) {
	var regions []Region
	require.NoError(t, json.Unmarshal([]byte(`["nsw","QLD",null,""]`), &regions))
	assert.Equal(t, []Region{NSW, QLD, Unknown, Unknown}, regions)

	data, err := json.Marshal([]Region{NSW, QLD})
	require.NoError(t, err)
	assert.JSONEq(t, `["NSW","QLD"]`, string(data))

	var r Region
	assert.Error(t, json.Unmarshal([]byte(`"VIC"`), &r))
}
