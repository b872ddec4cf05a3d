// Package presets names common output sizes usable wherever a resize directive is accepted.
package presets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/photomark/internal/watermark"
)

var Responsive = map[string]watermark.Resize{
	"sm": watermark.ResizeWidth{Width: 640},
	"md": watermark.ResizeWidth{Width: 1024},
	"lg": watermark.ResizeWidth{Width: 1920},
	"xl": watermark.ResizeWidth{Width: 2560},
}

var Scale = map[string]watermark.Resize{
	"half":    watermark.ResizePercent{Percent: 50},
	"quarter": watermark.ResizePercent{Percent: 25},
}

var All = map[string]watermark.Resize{
	"thumbnail": watermark.ResizeWidth{Width: 300},
	"sm":        Responsive["sm"],
	"md":        Responsive["md"],
	"lg":        Responsive["lg"],
	"xl":        Responsive["xl"],
	"half":      Scale["half"],
	"quarter":   Scale["quarter"],
}

func Get(name string) (watermark.Resize, bool) {
	r, ok := All[strings.ToLower(strings.TrimSpace(name))]
	return r, ok
}

func Names() []string {
	names := make([]string, 0, len(All))
	for name := range All {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe renders a resize directive for humans, e.g. "width 640" or "50%".
func Describe(r watermark.Resize) string {
	switch v := r.(type) {
	case watermark.ResizeExact:
		return fmt.Sprintf("%dx%d", v.Width, v.Height)
	case watermark.ResizeWidth:
		return fmt.Sprintf("width %d", v.Width)
	case watermark.ResizeHeight:
		return fmt.Sprintf("height %d", v.Height)
	case watermark.ResizePercent:
		return fmt.Sprintf("%g%%", v.Percent)
	default:
		return "original"
	}
}
