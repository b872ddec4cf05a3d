package image

import (
	"image"
	"image/color"
	"math"

	"github.com/abdul-hamid-achik/photomark/internal/watermark"
	"github.com/disintegration/imaging"
)

const DefaultMargin = 20

// ResolvePosition returns the top-left pixel for a layer inside container.
// Manual coordinates scale with the container and ignore the margin.
func ResolvePosition(container, layer image.Point, pos watermark.Position, margin int) image.Point {
	switch p := pos.(type) {
	case watermark.ManualPosition:
		return image.Pt(
			int(clampRatio(p.X)*float64(container.X)),
			int(clampRatio(p.Y)*float64(container.Y)),
		)
	case watermark.AnchorPosition:
		return anchorPoint(container, layer, p.Anchor, margin)
	default:
		return anchorPoint(container, layer, watermark.TopLeft, margin)
	}
}

func anchorPoint(c, l image.Point, a watermark.Anchor, margin int) image.Point {
	left := margin
	hcenter := (c.X - l.X) / 2
	right := c.X - l.X - margin
	top := margin
	vcenter := (c.Y - l.Y) / 2
	bottom := c.Y - l.Y - margin

	switch a {
	case watermark.Top:
		return image.Pt(hcenter, top)
	case watermark.TopRight:
		return image.Pt(right, top)
	case watermark.Left:
		return image.Pt(left, vcenter)
	case watermark.Center:
		return image.Pt(hcenter, vcenter)
	case watermark.Right:
		return image.Pt(right, vcenter)
	case watermark.BottomLeft:
		return image.Pt(left, bottom)
	case watermark.Bottom:
		return image.Pt(hcenter, bottom)
	case watermark.BottomRight:
		return image.Pt(right, bottom)
	default:
		return image.Pt(left, top)
	}
}

// RotateLayer turns a layer counter-clockwise by deg degrees. The result is
// sized to the rotated bounding box with transparent corners.
func RotateLayer(layer *image.NRGBA, deg float64) *image.NRGBA {
	if layer == nil || math.Mod(deg, 360) == 0 {
		return layer
	}
	return imaging.Rotate(layer, deg, color.Transparent)
}

func clampRatio(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
