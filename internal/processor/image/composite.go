package image

import (
	"image"

	"github.com/abdul-hamid-achik/photomark/internal/watermark"
	"github.com/disintegration/imaging"
)

// ComposeInput is everything Compose needs, already in memory.
type ComposeInput struct {
	Base  image.Image
	Label string

	// Logo is the decoded, unscaled logo. It is drawn only when Spec.Logo is set.
	Logo image.Image

	Spec  watermark.Spec
	Fonts *FontResolver

	// Margin applies to anchored layers. Zero means DefaultMargin.
	Margin int
}

// Compose resizes the base image and draws the label, custom text and logo
// onto a new buffer. It does no I/O, so callers can use it for previews;
// the file engine goes through the same path.
func Compose(in ComposeInput) *image.NRGBA {
	spec := in.Spec.Normalize()
	fonts := in.Fonts
	if fonts == nil {
		fonts = NewFontResolver(nil)
	}
	margin := in.Margin
	if margin <= 0 {
		margin = DefaultMargin
	}

	canvas := ApplyResize(in.Base, spec.Resize)

	if in.Label != "" {
		label := RenderText(TextStyle{
			Content: in.Label,
			Face:    fonts.Face("", spec.BaseText.FontSize),
			Fill:    ParseColor(spec.BaseText.Color, White),
			Opacity: 100,
		})
		canvas = place(canvas, label, watermark.AtAnchor(spec.BaseText.Anchor), margin)
	}

	if ct := spec.CustomText; ct != nil {
		style := TextStyle{
			Content:     ct.Content,
			Face:        fonts.Face(ct.FontPath, ct.FontSize),
			Fill:        ParseColor(ct.Color, White),
			Opacity:     ct.Opacity,
			StrokeWidth: ct.StrokeWidth,
			StrokeColor: ParseColor(ct.StrokeColor, Black),
		}
		if sh := ct.Shadow; sh != nil {
			style.Shadow = &ShadowStyle{
				DX:      sh.DX,
				DY:      sh.DY,
				Color:   ParseColor(sh.Color, Black),
				Opacity: sh.Opacity,
			}
		}
		layer := RotateLayer(RenderText(style), spec.Rotation)
		canvas = place(canvas, layer, spec.Position, margin)
	}

	if spec.Logo != nil && in.Logo != nil {
		layer := RotateLayer(RenderLogo(in.Logo, spec.Logo.Size, spec.Logo.Opacity), spec.Rotation)
		canvas = place(canvas, layer, spec.Position, margin)
	}

	return canvas
}

func place(canvas, layer *image.NRGBA, pos watermark.Position, margin int) *image.NRGBA {
	if layer == nil {
		return canvas
	}
	at := ResolvePosition(canvas.Bounds().Size(), layer.Bounds().Size(), pos, margin)
	return imaging.Overlay(canvas, layer, at, 1.0)
}
