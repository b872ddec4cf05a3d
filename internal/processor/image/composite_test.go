package image

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/abdul-hamid-achik/photomark/internal/watermark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_LeavesBaseUntouched(t *testing.T) {
	base := createSolidColorImage(64, 64, navy)
	before := bytes.Clone(base.Pix)

	out := Compose(ComposeInput{Base: base, Label: "2024-05-06", Spec: watermark.Default()})
	require.NotNil(t, out)
	assert.Equal(t, before, base.Pix)
	assert.NotEqual(t, base.Pix, out.Pix)
}

func TestCompose_Resizes(t *testing.T) {
	base := createSolidColorImage(200, 100, navy)
	spec := watermark.Default()
	spec.Resize = watermark.ResizePercent{Percent: 25}

	out := Compose(ComposeInput{Base: base, Spec: spec})
	assert.Equal(t, 50, out.Bounds().Dx())
	assert.Equal(t, 25, out.Bounds().Dy())
}

func TestCompose_LogoNeedsSpec(t *testing.T) {
	base := createSolidColorImage(50, 50, navy)
	logo := createSolidColorImage(10, 10, color.NRGBA{R: 255, A: 255})

	spec := watermark.Default().WithManual(0, 0)
	out := Compose(ComposeInput{Base: base, Logo: logo, Spec: spec})
	assert.Equal(t, navy, out.NRGBAAt(2, 2), "logo without a logo style is ignored")

	spec.Logo = &watermark.Logo{Path: "unused.png", Opacity: 100}
	out = Compose(ComposeInput{Base: base, Logo: logo, Spec: spec})
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, out.NRGBAAt(2, 2))
}

func TestCompose_Deterministic(t *testing.T) {
	base := createTestImage(90, 60)
	spec := watermark.Default().WithAnchor(watermark.Center)
	spec.Rotation = 15
	spec.CustomText = &watermark.CustomText{Content: "same", Opacity: 55, StrokeWidth: 1}

	fonts := NewFontResolver(nil)
	a := Compose(ComposeInput{Base: base, Label: "label", Spec: spec, Fonts: fonts})
	b := Compose(ComposeInput{Base: base, Label: "label", Spec: spec, Fonts: fonts})
	assert.Equal(t, a.Pix, b.Pix)
}

func TestCompose_BottomLabelKeepsMargin(t *testing.T) {
	base := createSolidColorImage(200, 100, navy)
	out := Compose(ComposeInput{Base: base, Label: "2024-05-06", Spec: watermark.Default()})
	require.NotNil(t, out)

	lowest, rightmost := -1, -1
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			if out.NRGBAAt(x, y) != navy {
				lowest, rightmost = max(lowest, y), max(rightmost, x)
			}
		}
	}
	require.GreaterOrEqual(t, lowest, 0, "label should be drawn")
	assert.InDelta(t, 100-DefaultMargin-1, lowest, 1, "lowest ink row sits on the margin")
	assert.LessOrEqual(t, rightmost, 200-DefaultMargin-1)
}
