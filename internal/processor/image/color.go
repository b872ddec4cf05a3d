package image

import (
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/photomark/internal/watermark"
	"golang.org/x/image/colornames"
)

var (
	White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Black = color.NRGBA{A: 255}
)

// ParseColor accepts #RGB, #RRGGBB, #RRGGBBAA or an SVG color name.
// Anything else yields fallback.
func ParseColor(s string, fallback color.NRGBA) color.NRGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return fallback
	}
	if !strings.HasPrefix(s, "#") {
		if c, ok := colornames.Map[s]; ok {
			return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
		}
		return fallback
	}

	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return fallback
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fallback
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}

// OpacityAlpha converts a 0-100 opacity into an 8-bit alpha.
// Out-of-range values are clamped.
func OpacityAlpha(opacity float64) uint8 {
	return uint8(math.Round(watermark.ClampOpacity(opacity) / 100 * 255))
}

// WithOpacity folds an opacity percentage into the color's own alpha.
func WithOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	c.A = scaleAlpha(c.A, opacity)
	return c
}

// ScaleAlpha multiplies every pixel's alpha by opacity/100 in place.
func ScaleAlpha(img *image.NRGBA, opacity float64) {
	op := watermark.ClampOpacity(opacity)
	if op == 100 {
		return
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = scaleAlpha(img.Pix[i], op)
	}
}

func scaleAlpha(a uint8, opacity float64) uint8 {
	return uint8(math.Round(float64(a) * watermark.ClampOpacity(opacity) / 100))
}

// HasAlpha reports whether any pixel is not fully opaque.
func HasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}
