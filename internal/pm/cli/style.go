package cli

import (
	"github.com/abdul-hamid-achik/photomark/internal/pm/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// styleFlags are the watermark options shared by "apply" and "template save".
// Only flags the user actually passed override the starting template.
type styleFlags struct {
	fontSize   float64
	color      string
	anchor     string
	dateLayout string

	text          string
	font          string
	textSize      float64
	textColor     string
	opacity       float64
	strokeWidth   int
	strokeColor   string
	shadow        bool
	shadowDX      int
	shadowDY      int
	shadowColor   string
	shadowOpacity float64

	logo        string
	logoSize    string
	logoWidth   int
	logoHeight  int
	logoPercent float64
	logoOpacity float64

	size    string
	width   int
	height  int
	percent float64

	rotate   float64
	position string
	x        float64
	y        float64

	format  string
	quality int
	prefix  string
	suffix  string
}

func (s *styleFlags) register(fs *pflag.FlagSet) {
	fs.Float64Var(&s.fontSize, "font-size", 0, "Date label font size (default 24)")
	fs.StringVar(&s.color, "color", "", "Date label color: name, #RGB, #RRGGBB or #RRGGBBAA (default white)")
	fs.StringVar(&s.anchor, "anchor", "", "Date label anchor, e.g. bottom-right, top-left, center")
	fs.StringVar(&s.dateLayout, "date-layout", "", "Go time layout for the date label (default 2006-01-02)")

	fs.StringVar(&s.text, "text", "", "Custom text to draw")
	fs.StringVar(&s.font, "font", "", "TrueType font file for the custom text")
	fs.Float64Var(&s.textSize, "text-size", 0, "Custom text size (default: date label size)")
	fs.StringVar(&s.textColor, "text-color", "", "Custom text color")
	fs.Float64Var(&s.opacity, "opacity", 100, "Custom text opacity 0-100")
	fs.IntVar(&s.strokeWidth, "stroke-width", 0, "Custom text outline width in pixels")
	fs.StringVar(&s.strokeColor, "stroke-color", "", "Custom text outline color (default black)")
	fs.BoolVar(&s.shadow, "shadow", false, "Draw a drop shadow under the custom text")
	fs.IntVar(&s.shadowDX, "shadow-dx", 0, "Shadow horizontal offset (default 2)")
	fs.IntVar(&s.shadowDY, "shadow-dy", 0, "Shadow vertical offset (default 2)")
	fs.StringVar(&s.shadowColor, "shadow-color", "", "Shadow color (default black)")
	fs.Float64Var(&s.shadowOpacity, "shadow-opacity", 60, "Shadow opacity 0-100")

	fs.StringVar(&s.logo, "logo", "", "Logo image to overlay")
	fs.StringVar(&s.logoSize, "logo-size", "", "Logo size preset (thumbnail, sm, md, lg, xl, half, quarter)")
	fs.IntVar(&s.logoWidth, "logo-width", 0, "Logo width in pixels")
	fs.IntVar(&s.logoHeight, "logo-height", 0, "Logo height in pixels")
	fs.Float64Var(&s.logoPercent, "logo-percent", 0, "Logo scale in percent")
	fs.Float64Var(&s.logoOpacity, "logo-opacity", 100, "Logo opacity 0-100")

	fs.StringVar(&s.size, "size", "", "Output size preset (thumbnail, sm, md, lg, xl, half, quarter)")
	fs.IntVar(&s.width, "width", 0, "Resize output to this width")
	fs.IntVar(&s.height, "height", 0, "Resize output to this height")
	fs.Float64Var(&s.percent, "percent", 0, "Resize output by percent")

	fs.Float64Var(&s.rotate, "rotate", 0, "Rotate custom text and logo, degrees counter-clockwise")
	fs.StringVar(&s.position, "position", "", "Anchor for custom text and logo (default: date label anchor)")
	fs.Float64Var(&s.x, "x", 0, "Manual horizontal position for custom text and logo, 0-1")
	fs.Float64Var(&s.y, "y", 0, "Manual vertical position for custom text and logo, 0-1")

	fs.StringVar(&s.format, "format", "", "Output format: auto, jpeg or png")
	fs.IntVar(&s.quality, "quality", 0, "JPEG quality 0-100 (default 95)")
	fs.StringVar(&s.prefix, "prefix", "", "Output filename prefix")
	fs.StringVar(&s.suffix, "suffix", "", "Output filename suffix")
}

// applyTo overlays every flag that was set on cmd onto t.
func (s *styleFlags) applyTo(cmd *cobra.Command, t *config.Template) {
	changed := cmd.Flags().Changed
	anyChanged := func(names ...string) bool {
		for _, n := range names {
			if changed(n) {
				return true
			}
		}
		return false
	}

	if changed("font-size") {
		t.FontSize = s.fontSize
	}
	if changed("color") {
		t.Color = s.color
	}
	if changed("anchor") {
		t.Anchor = s.anchor
	}
	if changed("date-layout") {
		t.DateLayout = s.dateLayout
	}

	if anyChanged("text", "font", "text-size", "text-color", "opacity", "stroke-width", "stroke-color",
		"shadow", "shadow-dx", "shadow-dy", "shadow-color", "shadow-opacity") {
		var text config.TextTemplate
		if t.Text != nil {
			text = *t.Text
		}
		if changed("text") {
			text.Content = s.text
		}
		if changed("font") {
			text.Font = s.font
		}
		if changed("text-size") {
			text.Size = s.textSize
		}
		if changed("text-color") {
			text.Color = s.textColor
		}
		if changed("opacity") {
			v := s.opacity
			text.Opacity = &v
		}
		if changed("stroke-width") {
			text.StrokeWidth = s.strokeWidth
		}
		if changed("stroke-color") {
			text.StrokeColor = s.strokeColor
		}
		s.applyShadow(changed, &text)
		t.Text = &text
	}

	if anyChanged("logo", "logo-size", "logo-width", "logo-height", "logo-percent", "logo-opacity") {
		var logo config.LogoTemplate
		if t.Logo != nil {
			logo = *t.Logo
		}
		if changed("logo") {
			logo.Path = s.logo
		}
		if anyChanged("logo-size", "logo-width", "logo-height", "logo-percent") {
			logo.Size, logo.Width, logo.Height, logo.Percent = s.logoSize, s.logoWidth, s.logoHeight, s.logoPercent
		}
		if changed("logo-opacity") {
			v := s.logoOpacity
			logo.Opacity = &v
		}
		t.Logo = &logo
	}

	if anyChanged("size", "width", "height", "percent") {
		t.Size, t.Width, t.Height, t.Percent = s.size, s.width, s.height, s.percent
	}

	if changed("rotate") {
		t.Rotation = s.rotate
	}
	if changed("position") {
		t.Position = s.position
		t.X, t.Y = nil, nil
	}
	if anyChanged("x", "y") {
		x, y := s.x, s.y
		t.X, t.Y = &x, &y
	}

	if changed("format") {
		t.Format = s.format
	}
	if changed("quality") {
		t.Quality = s.quality
	}
	if changed("prefix") {
		t.Prefix = s.prefix
	}
	if changed("suffix") {
		t.Suffix = s.suffix
	}
}

func (s *styleFlags) applyShadow(changed func(string) bool, text *config.TextTemplate) {
	if changed("shadow") && !s.shadow {
		text.Shadow = nil
		return
	}
	if !changed("shadow") && text.Shadow == nil {
		return
	}

	var sh config.ShadowTemplate
	if text.Shadow != nil {
		sh = *text.Shadow
	}
	if changed("shadow-dx") {
		sh.DX = s.shadowDX
	}
	if changed("shadow-dy") {
		sh.DY = s.shadowDY
	}
	if changed("shadow-color") {
		sh.Color = s.shadowColor
	}
	if changed("shadow-opacity") {
		v := s.shadowOpacity
		sh.Opacity = &v
	}
	text.Shadow = &sh
}
