package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/photomark/internal/logger"
	"github.com/abdul-hamid-achik/photomark/internal/processor"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type CaptureSource string

const (
	SourceEXIFOriginal CaptureSource = "exif_original"
	SourceEXIFDateTime CaptureSource = "exif_datetime"
	SourceModTime      CaptureSource = "mod_time"
)

const exifTimeLayout = "2006:01:02 15:04:05"

var errEmptyEXIFTime = errors.New("empty exif time")

type CaptureTime struct {
	Time   time.Time
	Source CaptureSource
}

// Label formats the capture date with a Go time layout.
func (c CaptureTime) Label(layout string) string {
	if layout == "" {
		layout = "2006-01-02"
	}
	return c.Time.Format(layout)
}

// ReadCaptureTime tries EXIF DateTimeOriginal, then EXIF DateTime, then the
// file's modification time. Metadata errors are logged and skipped.
func ReadCaptureTime(ctx context.Context, path string) (CaptureTime, bool) {
	log := logger.FromContext(ctx)

	f, err := os.Open(path)
	if err == nil {
		ct, ok, exifErr := captureFromEXIF(f)
		f.Close()
		if ok {
			return ct, true
		}
		if exifErr != nil {
			log.Debug("exif capture time unavailable", "path", path, "error", exifErr)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		log.Debug("mod time unavailable", "path", path, "error", err)
		return CaptureTime{}, false
	}
	return CaptureTime{Time: info.ModTime(), Source: SourceModTime}, true
}

// CaptureTimeFromEXIF reads only the embedded tags, for callers holding bytes rather than a file.
func CaptureTimeFromEXIF(r io.Reader) (CaptureTime, bool) {
	ct, ok, _ := captureFromEXIF(r)
	return ct, ok
}

func captureFromEXIF(r io.Reader) (CaptureTime, bool, error) {
	x, err := exif.Decode(r)
	if err != nil {
		return CaptureTime{}, false, err
	}

	var lastErr error
	for _, field := range []struct {
		name   exif.FieldName
		source CaptureSource
	}{
		{exif.DateTimeOriginal, SourceEXIFOriginal},
		{exif.DateTime, SourceEXIFDateTime},
	} {
		tag, err := x.Get(field.name)
		if err != nil {
			lastErr = err
			continue
		}
		raw, err := tag.StringVal()
		if err != nil {
			lastErr = err
			continue
		}
		t, err := parseEXIFTime(raw)
		if err != nil {
			lastErr = err
			continue
		}
		return CaptureTime{Time: t, Source: field.source}, true, nil
	}
	return CaptureTime{}, false, lastErr
}

func parseEXIFTime(raw string) (time.Time, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "\x00")
	if raw == "" {
		return time.Time{}, errEmptyEXIFTime
	}
	return time.ParseInLocation(exifTimeLayout, raw, time.Local)
}

var _ processor.Processor = (*MetadataProcessor)(nil)

// DetectContentType sniffs an image content type from the first bytes of a
// file. TIFF is recognised here since net/http does not know it.
func DetectContentType(head []byte) string {
	if bytes.HasPrefix(head, []byte("II*\x00")) || bytes.HasPrefix(head, []byte("MM\x00*")) {
		return "image/tiff"
	}
	return http.DetectContentType(head)
}

type MetadataProcessor struct {
	cfg *processor.Config
}

func NewMetadataProcessor(cfg *processor.Config) *MetadataProcessor {
	if cfg == nil {
		cfg = processor.DefaultConfig()
	}
	return &MetadataProcessor{cfg: cfg}
}

func (p *MetadataProcessor) Name() string {
	return "metadata"
}

func (p *MetadataProcessor) SupportedTypes() []string {
	return supportedContentTypes
}

type ImageMetadata struct {
	Width         int           `json:"width"`
	Height        int           `json:"height"`
	Format        string        `json:"format"`
	ColorMode     string        `json:"color_mode,omitempty"`
	HasAlpha      bool          `json:"has_alpha"`
	CapturedAt    *time.Time    `json:"captured_at,omitempty"`
	CaptureSource CaptureSource `json:"capture_source,omitempty"`
}

// Process reports dimensions, alpha presence and capture time. opts.ModTime
// stands in for the filesystem clock when no EXIF time is embedded.
func (p *MetadataProcessor) Process(ctx context.Context, opts *processor.Options, input io.Reader) (*processor.Result, error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", processor.ErrCorruptedFile, err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", processor.ErrCorruptedFile, err)
	}

	bounds := img.Bounds()
	meta := ImageMetadata{
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		Format:    format,
		ColorMode: colorMode(img),
		HasAlpha:  HasAlpha(img),
	}

	ct, ok := CaptureTimeFromEXIF(bytes.NewReader(data))
	if !ok && opts != nil && !opts.ModTime.IsZero() {
		ct, ok = CaptureTime{Time: opts.ModTime, Source: SourceModTime}, true
	}
	if ok {
		meta.CapturedAt = &ct.Time
		meta.CaptureSource = ct.Source
	}

	jsonData, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", processor.ErrProcessingFailed, err)
	}

	result := &processor.Result{
		Data:        bytes.NewReader(jsonData),
		ContentType: "application/json",
		Size:        int64(len(jsonData)),
		Metadata: processor.ResultMetadata{
			Width:         meta.Width,
			Height:        meta.Height,
			Format:        format,
			HasAlpha:      meta.HasAlpha,
			CaptureSource: string(ct.Source),
		},
	}
	if ok {
		result.Metadata.CapturedAt = ct.Time
	}
	return result, nil
}

func colorMode(img image.Image) string {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return "gray"
	case *image.Paletted:
		return "paletted"
	case *image.YCbCr:
		return "ycbcr"
	case *image.CMYK:
		return "cmyk"
	case *image.NRGBA, *image.NRGBA64:
		return "nrgba"
	default:
		return "rgba"
	}
}
