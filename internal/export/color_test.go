package export

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKMLColor(t *testing.T) {
	tests := []struct {
		name    string
		hex     string
		opacity float64
		want    string
	}{
		{"Red Half", "#FF0000", 0.5, "800000ff"},
		{"Black Opaque", "#000000", 1, "ff000000"},
		{"No Hash Mixed Case", "12AbEf", 1, "ffefab12"},
		{"Transparent", "#00FF00", 0, "0000ff00"},
		{"Short Hex Falls Back", "#FFF", 1, "ffffffff"},
		{"Non Hex Falls Back", "#GGGGGG", 0.25, "40ffffff"},
		{"Empty Falls Back", "", 1, "ffffffff"},
		{"Double Hash Falls Back", "##FF0000", 1, "ffffffff"},
		{"Opacity Above One", "#0000FF", 2, "ffff0000"},
		{"Opacity Below Zero", "#0000FF", -1, "00ff0000"},
		{"Opacity NaN", "#0000FF", math.NaN(), "00ff0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KMLColor(tt.hex, tt.opacity))
		})
	}
}

func TestKMLColorChannelOrder(t *testing.T) {
	colors := []string{"000000", "FFFFFF", "123456", "a1b2c3", "FEDCBA", "0F0F0F"}
	opacities := []float64{0, 0.1, 0.33, 0.5, 0.75, 0.999, 1}

	for _, c := range colors {
		for _, o := range opacities {
			got := KMLColor("#"+c, o)
			lc := strings.ToLower(c)

			assert.Len(t, got, 8)
			assert.Equal(t, strings.ToLower(got), got)
			assert.Equal(t, fmt.Sprintf("%02x", int(math.Round(o*255))), got[0:2])
			assert.Equal(t, lc[4:6]+lc[2:4]+lc[0:2], got[2:])
		}
	}
}

func TestNRGBA(t *testing.T) {
	c := NRGBA("#3366CC", 0.5)
	assert.Equal(t, uint8(0x33), c.R)
	assert.Equal(t, uint8(0x66), c.G)
	assert.Equal(t, uint8(0xcc), c.B)
	assert.Equal(t, uint8(128), c.A)

	c = NRGBA("nope", 1)
	assert.Equal(t, uint8(0xff), c.R)
	assert.Equal(t, uint8(0xff), c.A)
}
