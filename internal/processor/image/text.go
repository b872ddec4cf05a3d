package image

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

type ShadowStyle struct {
	DX, DY  int
	Color   color.NRGBA
	Opacity float64
}

type TextStyle struct {
	Content     string
	Face        font.Face
	Fill        color.NRGBA
	Opacity     float64
	StrokeWidth int
	StrokeColor color.NRGBA
	Shadow      *ShadowStyle
}

// RenderText draws a string into a transparent layer sized to its ink
// bounding box, stroke and shadow included. Glyphs are drawn opaque and then dimmed
// by Opacity; the shadow reuses the same glyph shape.
func RenderText(style TextStyle) *image.NRGBA {
	if style.Content == "" || style.Face == nil {
		return nil
	}

	sw := style.StrokeWidth
	if sw < 0 {
		sw = 0
	}

	// Vertical extent follows the ink, so bottom anchors keep their margin
	// to the lowest drawn pixel rather than to the font's descent line.
	ink, advance := font.BoundString(style.Face, style.Content)
	top := ink.Min.Y.Floor()
	bottom := ink.Max.Y.Ceil()
	left := min(0, ink.Min.X.Floor())
	right := max(advance.Ceil(), ink.Max.X.Ceil())

	gw := right - left + 2*sw
	gh := bottom - top + 2*sw
	if gw < 1 || gh < 1 || bottom <= top {
		return nil
	}

	dc := gg.NewContext(gw, gh)
	dc.SetFontFace(style.Face)
	x, y := float64(sw-left), float64(sw-top)

	if sw > 0 {
		dc.SetColor(style.StrokeColor)
		for dy := -sw; dy <= sw; dy++ {
			for dx := -sw; dx <= sw; dx++ {
				if dx*dx+dy*dy > sw*sw || (dx == 0 && dy == 0) {
					continue
				}
				dc.DrawString(style.Content, x+float64(dx), y+float64(dy))
			}
		}
	}
	dc.SetColor(style.Fill)
	dc.DrawString(style.Content, x, y)

	glyphs := imaging.Clone(dc.Image())

	if style.Shadow == nil {
		ScaleAlpha(glyphs, style.Opacity)
		return glyphs
	}

	sh := style.Shadow
	shadow := tint(glyphs, sh.Color, sh.Opacity)
	ScaleAlpha(glyphs, style.Opacity)

	layer := image.NewNRGBA(image.Rect(0, 0, gw+abs(sh.DX), gh+abs(sh.DY)))
	layer = imaging.Overlay(layer, shadow, image.Pt(max(0, sh.DX), max(0, sh.DY)), 1.0)
	return imaging.Overlay(layer, glyphs, image.Pt(max(0, -sh.DX), max(0, -sh.DY)), 1.0)
}

// tint paints the shape of src in c at the given opacity.
func tint(src *image.NRGBA, c color.NRGBA, opacity float64) *image.NRGBA {
	out := image.NewNRGBA(src.Bounds())
	c = WithOpacity(c, opacity)
	for i := 0; i+3 < len(src.Pix); i += 4 {
		out.Pix[i] = c.R
		out.Pix[i+1] = c.G
		out.Pix[i+2] = c.B
		out.Pix[i+3] = uint8((uint32(src.Pix[i+3])*uint32(c.A) + 127) / 255)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
