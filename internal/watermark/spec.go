// Package watermark holds the typed configuration that drives one watermarking run.
package watermark

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidSpec = errors.New("watermark: invalid spec")

const (
	DefaultFontSize   = 24
	DefaultColor      = "white"
	DefaultDateLayout = "2006-01-02"
	DefaultQuality    = 95
	DefaultOpacity    = 100
	DefaultStroke     = "black"
	DefaultShadowOff  = 2
	DefaultShadowOpac = 60
)

type Anchor string

const (
	TopLeft     Anchor = "top-left"
	Top         Anchor = "top"
	TopRight    Anchor = "top-right"
	Left        Anchor = "left"
	Center      Anchor = "center"
	Right       Anchor = "right"
	BottomLeft  Anchor = "bottom-left"
	Bottom      Anchor = "bottom"
	BottomRight Anchor = "bottom-right"
)

var Anchors = []Anchor{TopLeft, Top, TopRight, Left, Center, Right, BottomLeft, Bottom, BottomRight}

// ParseAnchor reports whether s names one of the nine anchors.
func ParseAnchor(s string) (Anchor, bool) {
	a := Anchor(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Anchors {
		if a == known {
			return a, true
		}
	}
	return TopLeft, false
}

type Format string

const (
	FormatAuto Format = "auto"
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	default:
		return FormatAuto, fmt.Errorf("%w: unsupported output format %q", ErrInvalidSpec, s)
	}
}

// Position is either an AnchorPosition or a ManualPosition.
type Position interface {
	isPosition()
}

type AnchorPosition struct {
	Anchor Anchor
}

// ManualPosition is a coordinate relative to the resized content, each axis in [0,1].
type ManualPosition struct {
	X, Y float64
}

func (AnchorPosition) isPosition() {}
func (ManualPosition) isPosition() {}

func AtAnchor(a Anchor) Position {
	return AnchorPosition{Anchor: a}
}

func AtManual(x, y float64) Position {
	return ManualPosition{X: clampUnit(x), Y: clampUnit(y)}
}

// Resize is one of NoResize, ResizeExact, ResizeWidth, ResizeHeight or ResizePercent.
// The same sum type sizes logos.
type Resize interface {
	isResize()
}

type NoResize struct{}

type ResizeExact struct {
	Width, Height int
}

type ResizeWidth struct {
	Width int
}

type ResizeHeight struct {
	Height int
}

type ResizePercent struct {
	Percent float64
}

func (NoResize) isResize()      {}
func (ResizeExact) isResize()   {}
func (ResizeWidth) isResize()   {}
func (ResizeHeight) isResize()  {}
func (ResizePercent) isResize() {}

// ResizeFrom picks a single branch from loosely supplied values.
// Precedence: width+height, width, height, percent. Non-positive values count as absent.
func ResizeFrom(width, height int, percent float64) Resize {
	switch {
	case width > 0 && height > 0:
		return ResizeExact{Width: width, Height: height}
	case width > 0:
		return ResizeWidth{Width: width}
	case height > 0:
		return ResizeHeight{Height: height}
	case percent > 0:
		return ResizePercent{Percent: percent}
	default:
		return NoResize{}
	}
}

type BaseText struct {
	FontSize   float64
	Color      string
	Anchor     Anchor
	DateLayout string
}

type Shadow struct {
	DX, DY  int
	Color   string
	Opacity float64
}

type CustomText struct {
	Content     string
	FontPath    string
	FontSize    float64
	Color       string
	Opacity     float64
	StrokeWidth int
	StrokeColor string
	Shadow      *Shadow
}

type Logo struct {
	Path    string
	Size    Resize
	Opacity float64
}

// Spec is the full configuration for one run. Treat it as a value: the
// With* helpers return modified copies.
//
// Quality and the layer opacities have no "unset" state: 0 is a real JPEG
// quality and a real opacity. Start from Default, which sets Quality to
// DefaultQuality, and give CustomText and Logo an explicit Opacity.
type Spec struct {
	BaseText   BaseText
	CustomText *CustomText
	Logo       *Logo
	Resize     Resize
	Rotation   float64
	Position   Position
	Format     Format
	Quality    int
	Prefix     string
	Suffix     string
}

func Default() Spec {
	return Spec{
		BaseText: BaseText{
			FontSize:   DefaultFontSize,
			Color:      DefaultColor,
			Anchor:     BottomRight,
			DateLayout: DefaultDateLayout,
		},
		Resize:   NoResize{},
		Position: AtAnchor(BottomRight),
		Format:   FormatAuto,
		Quality:  DefaultQuality,
	}
}

// WithAnchor switches the layer position to a named anchor, discarding any manual coordinate.
func (s Spec) WithAnchor(a Anchor) Spec {
	s.Position = AtAnchor(a)
	return s
}

// WithManual switches the layer position to a manual coordinate, discarding the anchor.
func (s Spec) WithManual(x, y float64) Spec {
	s.Position = AtManual(x, y)
	return s
}

// Normalize fills empty strings, nil branches and non-positive font sizes
// with defaults and clamps ranged values. Quality and opacities are only
// clamped, so a zero Spec still encodes at quality 0.
func (s Spec) Normalize() Spec {
	if s.BaseText.FontSize <= 0 {
		s.BaseText.FontSize = DefaultFontSize
	}
	if s.BaseText.Color == "" {
		s.BaseText.Color = DefaultColor
	}
	if s.BaseText.Anchor == "" {
		s.BaseText.Anchor = BottomRight
	}
	if s.BaseText.DateLayout == "" {
		s.BaseText.DateLayout = DefaultDateLayout
	}
	if s.Resize == nil {
		s.Resize = NoResize{}
	}
	if s.Position == nil {
		s.Position = AtAnchor(s.BaseText.Anchor)
	}
	if m, ok := s.Position.(ManualPosition); ok {
		s.Position = AtManual(m.X, m.Y)
	}
	if s.Format == "" {
		s.Format = FormatAuto
	}
	s.Quality = ClampQuality(s.Quality)

	if s.CustomText != nil {
		ct := *s.CustomText
		if ct.FontSize <= 0 {
			ct.FontSize = s.BaseText.FontSize
		}
		if ct.Color == "" {
			ct.Color = DefaultColor
		}
		if ct.StrokeColor == "" {
			ct.StrokeColor = DefaultStroke
		}
		if ct.StrokeWidth < 0 {
			ct.StrokeWidth = 0
		}
		ct.Opacity = ClampOpacity(ct.Opacity)
		if ct.Shadow != nil {
			sh := *ct.Shadow
			if sh.Color == "" {
				sh.Color = DefaultStroke
			}
			sh.Opacity = ClampOpacity(sh.Opacity)
			ct.Shadow = &sh
		}
		s.CustomText = &ct
	}

	if s.Logo != nil {
		lg := *s.Logo
		if lg.Size == nil {
			lg.Size = NoResize{}
		}
		lg.Opacity = ClampOpacity(lg.Opacity)
		s.Logo = &lg
	}

	return s
}

// Validate rejects values that no default can repair.
func (s Spec) Validate() error {
	if err := validateResize("resize", s.Resize); err != nil {
		return err
	}
	if s.CustomText != nil && strings.TrimSpace(s.CustomText.Content) == "" {
		return fmt.Errorf("%w: custom text content is empty", ErrInvalidSpec)
	}
	if s.Logo != nil {
		if strings.TrimSpace(s.Logo.Path) == "" {
			return fmt.Errorf("%w: logo path is empty", ErrInvalidSpec)
		}
		if err := validateResize("logo size", s.Logo.Size); err != nil {
			return err
		}
	}
	if math.IsNaN(s.Rotation) || math.IsInf(s.Rotation, 0) {
		return fmt.Errorf("%w: rotation must be finite", ErrInvalidSpec)
	}
	switch s.Format {
	case "", FormatAuto, FormatJPEG, FormatPNG:
	default:
		return fmt.Errorf("%w: unsupported output format %q", ErrInvalidSpec, s.Format)
	}
	return nil
}

func validateResize(field string, r Resize) error {
	switch v := r.(type) {
	case nil, NoResize:
		return nil
	case ResizeExact:
		if v.Width <= 0 || v.Height <= 0 {
			return fmt.Errorf("%w: %s width and height must be positive", ErrInvalidSpec, field)
		}
	case ResizeWidth:
		if v.Width <= 0 {
			return fmt.Errorf("%w: %s width must be positive", ErrInvalidSpec, field)
		}
	case ResizeHeight:
		if v.Height <= 0 {
			return fmt.Errorf("%w: %s height must be positive", ErrInvalidSpec, field)
		}
	case ResizePercent:
		if v.Percent <= 0 || math.IsNaN(v.Percent) || math.IsInf(v.Percent, 0) {
			return fmt.Errorf("%w: %s percent must be positive", ErrInvalidSpec, field)
		}
	}
	return nil
}

// ClampOpacity pins an opacity percentage into [0,100].
func ClampOpacity(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func ClampQuality(q int) int {
	if q < 0 {
		return 0
	}
	if q > 100 {
		return 100
	}
	return q
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
