package image

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/photomark/internal/apperror"
	"github.com/abdul-hamid-achik/photomark/internal/watermark"
	"github.com/disintegration/imaging"
)

// ResolveFormat picks the encoder: an explicit override wins, otherwise the
// extension of path decides. Unknown extensions encode as PNG.
func ResolveFormat(path string, override watermark.Format) imaging.Format {
	switch override {
	case watermark.FormatJPEG:
		return imaging.JPEG
	case watermark.FormatPNG:
		return imaging.PNG
	}
	f, err := imaging.FormatFromFilename(path)
	if err != nil {
		return imaging.PNG
	}
	return f
}

// OutputExtension returns the extension, dot included, that an output
// generated from srcPath should carry. ".jpg" becomes ".jpeg".
func OutputExtension(srcPath string, override watermark.Format) string {
	switch override {
	case watermark.FormatJPEG:
		return ".jpeg"
	case watermark.FormatPNG:
		return ".png"
	}
	ext := strings.ToLower(filepath.Ext(srcPath))
	if _, err := imaging.FormatFromExtension(ext); err != nil {
		return ".png"
	}
	if ext == ".jpg" {
		return ".jpeg"
	}
	return ext
}

func ContentType(f imaging.Format) string {
	switch f {
	case imaging.JPEG:
		return "image/jpeg"
	case imaging.GIF:
		return "image/gif"
	case imaging.TIFF:
		return "image/tiff"
	case imaging.BMP:
		return "image/bmp"
	default:
		return "image/png"
	}
}

// Encode writes img in format f. JPEG output is flattened onto white first.
func Encode(w io.Writer, img image.Image, f imaging.Format, quality int) error {
	switch f {
	case imaging.JPEG:
		return imaging.Encode(w, Flatten(img), imaging.JPEG, imaging.JPEGQuality(watermark.ClampQuality(quality)))
	default:
		return imaging.Encode(w, img, f)
	}
}

// Flatten composites img over an opaque white background.
func Flatten(img image.Image) *image.NRGBA {
	if !HasAlpha(img) {
		return imaging.Clone(img)
	}
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// WriteFile encodes img to path through a temporary file in the same
// directory, so a failed write leaves nothing at path.
func WriteFile(path string, img image.Image, override watermark.Format, quality int) (err error) {
	if img == nil {
		return apperror.Wrap(errNoImage, apperror.ErrWriteFailure)
	}
	f := ResolveFormat(path, override)

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return apperror.Wrap(err, apperror.ErrWriteFailure)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err = Encode(tmp, img, f, quality); err != nil {
		return apperror.Wrap(fmt.Errorf("encode %s: %w", f, err), apperror.ErrWriteFailure)
	}
	if err = tmp.Chmod(outputMode(path)); err != nil {
		return apperror.Wrap(err, apperror.ErrWriteFailure)
	}
	if err = tmp.Close(); err != nil {
		return apperror.Wrap(err, apperror.ErrWriteFailure)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return apperror.Wrap(err, apperror.ErrWriteFailure)
	}
	return nil
}

var errNoImage = errors.New("nothing to encode")

const defaultFileMode os.FileMode = 0o644

// outputMode keeps the permissions of a file being replaced; CreateTemp alone
// would leave every output owner-only.
func outputMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return info.Mode().Perm()
	}
	return defaultFileMode
}
