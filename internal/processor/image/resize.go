package image

import (
	"image"
	"math"

	"github.com/abdul-hamid-achik/photomark/internal/watermark"
	"github.com/disintegration/imaging"
)

// ResolveSize maps source dimensions through a resize constraint.
// Every computed dimension is at least one pixel.
func ResolveSize(width, height int, r watermark.Resize) (int, int) {
	switch v := r.(type) {
	case watermark.ResizeExact:
		return atLeastOne(v.Width), atLeastOne(v.Height)
	case watermark.ResizeWidth:
		if width <= 0 {
			return atLeastOne(v.Width), atLeastOne(height)
		}
		h := float64(v.Width) * float64(height) / float64(width)
		return atLeastOne(v.Width), atLeastOne(int(math.Floor(h)))
	case watermark.ResizeHeight:
		if height <= 0 {
			return atLeastOne(width), atLeastOne(v.Height)
		}
		w := float64(v.Height) * float64(width) / float64(height)
		return atLeastOne(int(math.Floor(w))), atLeastOne(v.Height)
	case watermark.ResizePercent:
		scale := v.Percent / 100
		return atLeastOne(int(math.Floor(float64(width) * scale))),
			atLeastOne(int(math.Floor(float64(height) * scale)))
	default:
		return atLeastOne(width), atLeastOne(height)
	}
}

// ApplyResize returns a new NRGBA buffer at the resolved size. The source is never modified.
func ApplyResize(img image.Image, r watermark.Resize) *image.NRGBA {
	b := img.Bounds()
	w, h := ResolveSize(b.Dx(), b.Dy(), r)
	if w == b.Dx() && h == b.Dy() {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
