package image

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"

	"github.com/abdul-hamid-achik/photomark/internal/apperror"
	"github.com/abdul-hamid-achik/photomark/internal/logger"
	"github.com/abdul-hamid-achik/photomark/internal/processor"
	"github.com/abdul-hamid-achik/photomark/internal/tracing"
	"github.com/abdul-hamid-achik/photomark/internal/watermark"
	"github.com/disintegration/imaging"
	"go.opentelemetry.io/otel/attribute"
)

var _ processor.Processor = (*Engine)(nil)

var supportedContentTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/bmp",
	"image/tiff",
}

// Engine watermarks one image at a time, from a file or from a stream.
type Engine struct {
	config *processor.Config
	fonts  *FontResolver
}

func NewEngine(cfg *processor.Config) *Engine {
	if cfg == nil {
		cfg = processor.DefaultConfig()
	}
	return &Engine{
		config: cfg,
		fonts:  NewFontResolver(cfg.FontPaths),
	}
}

func (e *Engine) Name() string {
	return "watermark"
}

func (e *Engine) SupportedTypes() []string {
	return supportedContentTypes
}

func (e *Engine) Fonts() *FontResolver {
	return e.fonts
}

// DefaultSpec is watermark.Default with the engine's configured JPEG quality.
func (e *Engine) DefaultSpec() watermark.Spec {
	s := watermark.Default()
	if e.config.Quality > 0 {
		s.Quality = watermark.ClampQuality(e.config.Quality)
	}
	return s
}

// ProcessFile reads src, composites every configured layer and writes dst.
// Nothing is left at dst when it fails.
func (e *Engine) ProcessFile(ctx context.Context, src, dst string, spec watermark.Spec) (*processor.ResultMetadata, error) {
	log := logger.FromContext(ctx)

	spec = spec.Normalize()
	if err := spec.Validate(); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrInvalidConfig)
	}

	base, err := imaging.Open(src)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrUnreadableSource)
	}

	logo, err := e.loadLogo(spec)
	if err != nil {
		return nil, err
	}

	meta := &processor.ResultMetadata{
		HasAlpha: HasAlpha(base),
		Quality:  spec.Quality,
	}
	label := ""
	if ct, ok := ReadCaptureTime(ctx, src); ok {
		label = ct.Label(spec.BaseText.DateLayout)
		meta.CapturedAt = ct.Time
		meta.CaptureSource = string(ct.Source)
	}
	meta.Label = label

	out := Compose(ComposeInput{
		Base:   base,
		Label:  label,
		Logo:   logo,
		Spec:   spec,
		Fonts:  e.fonts,
		Margin: e.config.Margin,
	})

	_, span := tracing.StartSpan(ctx, "image.encode")
	err = WriteFile(dst, out, spec.Format, spec.Quality)
	span.End()
	if err != nil {
		return nil, err
	}

	b := out.Bounds()
	meta.Width, meta.Height = b.Dx(), b.Dy()
	meta.Format = formatName(ResolveFormat(dst, spec.Format))

	tracing.AddSpanAttributes(ctx,
		attribute.String("image.label", label),
		attribute.String("image.capture_source", meta.CaptureSource),
		attribute.String("image.format", meta.Format),
		attribute.Int("image.width", meta.Width),
		attribute.Int("image.height", meta.Height),
	)

	log.Debug("watermarked image",
		"src", src,
		"dst", dst,
		"label", label,
		"capture_source", meta.CaptureSource,
		"has_alpha", meta.HasAlpha,
	)
	return meta, nil
}

// Process watermarks an in-memory image. Without opts.Spec it uses DefaultSpec.
// Without opts.Label the label comes from embedded EXIF, then from
// opts.ModTime; with neither it is omitted.
func (e *Engine) Process(ctx context.Context, opts *processor.Options, input io.Reader) (*processor.Result, error) {
	if opts == nil {
		opts = &processor.Options{}
	}

	data, err := io.ReadAll(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", processor.ErrCorruptedFile, err)
	}
	base, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", processor.ErrCorruptedFile, err)
	}

	spec := e.DefaultSpec()
	if opts.Spec != nil {
		spec = *opts.Spec
	}
	spec = spec.Normalize()
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", processor.ErrInvalidConfig, err)
	}

	logo, err := e.loadLogo(spec)
	if err != nil {
		return nil, err
	}

	meta := processor.ResultMetadata{
		HasAlpha: HasAlpha(base),
		Quality:  spec.Quality,
		Label:    opts.Label,
	}
	if meta.Label == "" {
		ct, ok := CaptureTimeFromEXIF(bytes.NewReader(data))
		if !ok && !opts.ModTime.IsZero() {
			ct, ok = CaptureTime{Time: opts.ModTime, Source: SourceModTime}, true
		}
		if ok {
			meta.Label = ct.Label(spec.BaseText.DateLayout)
			meta.CapturedAt = ct.Time
			meta.CaptureSource = string(ct.Source)
		}
	}

	out := Compose(ComposeInput{
		Base:   base,
		Label:  meta.Label,
		Logo:   logo,
		Spec:   spec,
		Fonts:  e.fonts,
		Margin: e.config.Margin,
	})

	f := ResolveFormat("watermarked."+format, spec.Format)
	var buf bytes.Buffer
	if err := Encode(&buf, out, f, spec.Quality); err != nil {
		return nil, fmt.Errorf("%w: %v", processor.ErrProcessingFailed, err)
	}

	b := out.Bounds()
	meta.Width, meta.Height = b.Dx(), b.Dy()
	meta.Format = formatName(f)

	return &processor.Result{
		Data:        bytes.NewReader(buf.Bytes()),
		ContentType: ContentType(f),
		Filename:    "watermarked." + meta.Format,
		Size:        int64(buf.Len()),
		Metadata:    meta,
	}, nil
}

func (e *Engine) loadLogo(spec watermark.Spec) (image.Image, error) {
	if spec.Logo == nil {
		return nil, nil
	}
	return LoadLogo(spec.Logo.Path)
}

func formatName(f imaging.Format) string {
	switch f {
	case imaging.JPEG:
		return "jpeg"
	case imaging.GIF:
		return "gif"
	case imaging.TIFF:
		return "tiff"
	case imaging.BMP:
		return "bmp"
	default:
		return "png"
	}
}

// RegisterAll adds the watermark and metadata processors to r.
func RegisterAll(r *processor.Registry, cfg *processor.Config) *Engine {
	e := NewEngine(cfg)
	r.Register(e.Name(), e)
	meta := NewMetadataProcessor(cfg)
	r.Register(meta.Name(), meta)
	return e
}
