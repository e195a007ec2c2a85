package export

import (
	"encoding/hex"
	"image/color"
	"math"
	"strings"
)

// fallbackHex is used for any color that is not six hex digits.
const fallbackHex = "FFFFFF"

// KMLColor converts "#RRGGBB" (or "RRGGBB") plus an opacity in [0,1] into
// the aabbggrr form KML expects. Invalid colors fall back to white and the
// opacity is clamped.
func KMLColor(hexColor string, opacity float64) string {
	rgb := decodeRGB(hexColor)
	abgr := []byte{alphaByte(opacity), rgb[2], rgb[1], rgb[0]}
	return hex.EncodeToString(abgr)
}

// NRGBA is the raster counterpart of KMLColor.
func NRGBA(hexColor string, opacity float64) color.NRGBA {
	rgb := decodeRGB(hexColor)
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: alphaByte(opacity)}
}

func decodeRGB(hexColor string) []byte {
	rgb, err := hex.DecodeString(normalizeHex(hexColor))
	if err != nil || len(rgb) != 3 {
		rgb, _ = hex.DecodeString(fallbackHex)
	}
	return rgb
}

func normalizeHex(s string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return fallbackHex
	}

	return s
}

func alphaByte(opacity float64) byte {
	if math.IsNaN(opacity) || opacity <= 0 {
		return 0
	}
	if opacity >= 1 {
		return 0xff
	}

	return byte(math.Round(opacity * 255))
}
