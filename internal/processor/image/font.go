package image

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/abdul-hamid-achik/photomark/internal/apperror"
	"github.com/abdul-hamid-achik/photomark/internal/logger"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

// FontResolver turns an optional font path and a size into a face. It
// walks the explicit path, then the configured system paths, then the
// embedded Go Regular font, then basicfont. It never fails.
type FontResolver struct {
	paths []string
	log   *slog.Logger

	mu     sync.Mutex
	parsed map[string]*truetype.Font
	failed map[string]bool
}

func NewFontResolver(paths []string) *FontResolver {
	return &FontResolver{
		paths:  append([]string(nil), paths...),
		log:    logger.Default(),
		parsed: make(map[string]*truetype.Font),
		failed: make(map[string]bool),
	}
}

// WithLogger returns r after pointing its diagnostics at l.
func (r *FontResolver) WithLogger(l *slog.Logger) *FontResolver {
	if l != nil {
		r.log = l
	}
	return r
}

// Face returns a fresh face for the first font in the chain that loads.
// Faces are not safe for concurrent use, so each call builds a new one.
func (r *FontResolver) Face(path string, size float64) font.Face {
	if size <= 0 {
		size = 24
	}

	candidates := r.paths
	if path != "" {
		candidates = append([]string{path}, r.paths...)
	}

	for _, p := range candidates {
		if f := r.load(p); f != nil {
			return newFace(f, size)
		}
	}

	if f := r.embedded(); f != nil {
		return newFace(f, size)
	}
	return basicfont.Face7x13
}

// SystemFont reports the first configured path that parses as a TrueType font.
func (r *FontResolver) SystemFont() (string, bool) {
	for _, p := range r.paths {
		if r.load(p) != nil {
			return p, true
		}
	}
	return "", false
}

func (r *FontResolver) load(path string) *truetype.Font {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.parsed[path]; ok {
		return f
	}
	if r.failed[path] {
		return nil
	}

	f, err := parseFontFile(path)
	if err != nil {
		r.failed[path] = true
		r.log.Debug("font unavailable",
			"path", path,
			"code", apperror.ErrFontLoad.Code,
			"error", err,
		)
		return nil
	}
	r.parsed[path] = f
	return f
}

const embeddedKey = "\x00goregular"

func (r *FontResolver) embedded() *truetype.Font {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.parsed[embeddedKey]; ok {
		return f
	}
	if r.failed[embeddedKey] {
		return nil
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		r.failed[embeddedKey] = true
		r.log.Warn("embedded font unavailable", "error", err)
		return nil
	}
	r.parsed[embeddedKey] = f
	return f
}

func parseFontFile(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

func newFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
