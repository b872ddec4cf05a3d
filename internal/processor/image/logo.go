package image

import (
	"image"

	"github.com/abdul-hamid-achik/photomark/internal/apperror"
	"github.com/abdul-hamid-achik/photomark/internal/watermark"
	"github.com/disintegration/imaging"
)

// LoadLogo decodes a logo file. Any failure is reported as invalid_logo.
func LoadLogo(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrInvalidLogo)
	}
	return img, nil
}

// RenderLogo scales a logo by its sizing directive and multiplies its
// existing alpha by opacity/100. src is left untouched.
func RenderLogo(src image.Image, size watermark.Resize, opacity float64) *image.NRGBA {
	if src == nil {
		return nil
	}
	layer := ApplyResize(src, size)
	ScaleAlpha(layer, opacity)
	return layer
}
