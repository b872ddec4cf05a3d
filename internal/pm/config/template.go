package config

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/photomark/internal/presets"
	"github.com/abdul-hamid-achik/photomark/internal/watermark"
)

// Template is the persisted form of a watermark style. Zero values mean
// "use the default"; opacities are pointers so an explicit 0 survives.
type Template struct {
	FontSize   float64 `yaml:"font_size,omitempty" json:"font_size,omitempty"`
	Color      string  `yaml:"color,omitempty" json:"color,omitempty"`
	Anchor     string  `yaml:"anchor,omitempty" json:"anchor,omitempty"`
	DateLayout string  `yaml:"date_layout,omitempty" json:"date_layout,omitempty"`

	Text *TextTemplate `yaml:"text,omitempty" json:"text,omitempty"`
	Logo *LogoTemplate `yaml:"logo,omitempty" json:"logo,omitempty"`

	Size    string  `yaml:"size,omitempty" json:"size,omitempty"`
	Width   int     `yaml:"width,omitempty" json:"width,omitempty"`
	Height  int     `yaml:"height,omitempty" json:"height,omitempty"`
	Percent float64 `yaml:"percent,omitempty" json:"percent,omitempty"`

	Rotation float64  `yaml:"rotation,omitempty" json:"rotation,omitempty"`
	Position string   `yaml:"position,omitempty" json:"position,omitempty"`
	X        *float64 `yaml:"x,omitempty" json:"x,omitempty"`
	Y        *float64 `yaml:"y,omitempty" json:"y,omitempty"`

	Format  string `yaml:"format,omitempty" json:"format,omitempty"`
	Quality int    `yaml:"quality,omitempty" json:"quality,omitempty"`
	Prefix  string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Suffix  string `yaml:"suffix,omitempty" json:"suffix,omitempty"`
}

type TextTemplate struct {
	Content     string          `yaml:"content" json:"content"`
	Font        string          `yaml:"font,omitempty" json:"font,omitempty"`
	Size        float64         `yaml:"size,omitempty" json:"size,omitempty"`
	Color       string          `yaml:"color,omitempty" json:"color,omitempty"`
	Opacity     *float64        `yaml:"opacity,omitempty" json:"opacity,omitempty"`
	StrokeWidth int             `yaml:"stroke_width,omitempty" json:"stroke_width,omitempty"`
	StrokeColor string          `yaml:"stroke_color,omitempty" json:"stroke_color,omitempty"`
	Shadow      *ShadowTemplate `yaml:"shadow,omitempty" json:"shadow,omitempty"`
}

type ShadowTemplate struct {
	DX      int      `yaml:"dx,omitempty" json:"dx,omitempty"`
	DY      int      `yaml:"dy,omitempty" json:"dy,omitempty"`
	Color   string   `yaml:"color,omitempty" json:"color,omitempty"`
	Opacity *float64 `yaml:"opacity,omitempty" json:"opacity,omitempty"`
}

type LogoTemplate struct {
	Path    string   `yaml:"path" json:"path"`
	Size    string   `yaml:"size,omitempty" json:"size,omitempty"`
	Width   int      `yaml:"width,omitempty" json:"width,omitempty"`
	Height  int      `yaml:"height,omitempty" json:"height,omitempty"`
	Percent float64  `yaml:"percent,omitempty" json:"percent,omitempty"`
	Opacity *float64 `yaml:"opacity,omitempty" json:"opacity,omitempty"`
}

var BuiltinTemplates = map[string]Template{
	"classic": {},
	"dark": {
		Color:  "black",
		Anchor: string(watermark.TopLeft),
	},
	// The label needs a CJK-capable font among the configured font paths;
	// the embedded fallbacks have no glyphs for it.
	"localized": {
		DateLayout: "2006年01月02日",
	},
	"web": {
		Size:    "lg",
		Format:  string(watermark.FormatJPEG),
		Quality: 85,
		Suffix:  "_web",
	},
}

const DefaultTemplateName = "classic"

// Spec converts the template into a normalized, validated watermark spec.
func (t Template) Spec() (watermark.Spec, error) {
	spec := watermark.Default()

	if t.FontSize > 0 {
		spec.BaseText.FontSize = t.FontSize
	}
	if t.Color != "" {
		spec.BaseText.Color = t.Color
	}
	if t.Anchor != "" {
		a, ok := watermark.ParseAnchor(t.Anchor)
		if !ok {
			return spec, fmt.Errorf("%w: unknown anchor %q", watermark.ErrInvalidSpec, t.Anchor)
		}
		spec.BaseText.Anchor = a
	}
	if t.DateLayout != "" {
		spec.BaseText.DateLayout = t.DateLayout
	}

	resize, err := resizeFrom(t.Size, t.Width, t.Height, t.Percent)
	if err != nil {
		return spec, err
	}
	spec.Resize = resize
	spec.Rotation = t.Rotation

	switch {
	case t.X != nil && t.Y != nil:
		spec = spec.WithManual(*t.X, *t.Y)
	case t.X != nil || t.Y != nil:
		return spec, fmt.Errorf("%w: manual position needs both x and y", watermark.ErrInvalidSpec)
	case t.Position != "":
		a, ok := watermark.ParseAnchor(t.Position)
		if !ok {
			return spec, fmt.Errorf("%w: unknown position %q", watermark.ErrInvalidSpec, t.Position)
		}
		spec = spec.WithAnchor(a)
	default:
		spec = spec.WithAnchor(spec.BaseText.Anchor)
	}

	format, err := watermark.ParseFormat(t.Format)
	if err != nil {
		return spec, err
	}
	spec.Format = format
	if t.Quality > 0 {
		spec.Quality = t.Quality
	}
	spec.Prefix = t.Prefix
	spec.Suffix = t.Suffix

	if t.Text != nil {
		spec.CustomText = t.Text.customText()
	}
	if t.Logo != nil {
		size, err := resizeFrom(t.Logo.Size, t.Logo.Width, t.Logo.Height, t.Logo.Percent)
		if err != nil {
			return spec, err
		}
		spec.Logo = &watermark.Logo{
			Path:    t.Logo.Path,
			Size:    size,
			Opacity: opacityOr(t.Logo.Opacity, watermark.DefaultOpacity),
		}
	}

	spec = spec.Normalize()
	if err := spec.Validate(); err != nil {
		return spec, err
	}
	return spec, nil
}

func (t *TextTemplate) customText() *watermark.CustomText {
	ct := &watermark.CustomText{
		Content:     t.Content,
		FontPath:    t.Font,
		FontSize:    t.Size,
		Color:       t.Color,
		Opacity:     opacityOr(t.Opacity, watermark.DefaultOpacity),
		StrokeWidth: t.StrokeWidth,
		StrokeColor: t.StrokeColor,
	}
	if t.Shadow != nil {
		dx, dy := t.Shadow.DX, t.Shadow.DY
		if dx == 0 && dy == 0 {
			dx, dy = watermark.DefaultShadowOff, watermark.DefaultShadowOff
		}
		ct.Shadow = &watermark.Shadow{
			DX:      dx,
			DY:      dy,
			Color:   t.Shadow.Color,
			Opacity: opacityOr(t.Shadow.Opacity, watermark.DefaultShadowOpac),
		}
	}
	return ct
}

func resizeFrom(preset string, width, height int, percent float64) (watermark.Resize, error) {
	if preset = strings.TrimSpace(preset); preset != "" {
		r, ok := presets.Get(preset)
		if !ok {
			return nil, fmt.Errorf("%w: unknown size preset %q (known: %s)",
				watermark.ErrInvalidSpec, preset, strings.Join(presets.Names(), ", "))
		}
		return r, nil
	}
	if width < 0 || height < 0 || percent < 0 {
		return nil, fmt.Errorf("%w: sizes must not be negative", watermark.ErrInvalidSpec)
	}
	return watermark.ResizeFrom(width, height, percent), nil
}

func opacityOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
