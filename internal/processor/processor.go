package processor

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/abdul-hamid-achik/photomark/internal/watermark"
)

var (
	ErrUnsupportedType  = errors.New("processor: unsupported file type")
	ErrProcessingFailed = errors.New("processor: processing failed")
	ErrInvalidConfig    = errors.New("processor: invalid configuration")
	ErrCorruptedFile    = errors.New("processor: file appears corrupted")
)

type Processor interface {
	Process(ctx context.Context, opts *Options, input io.Reader) (*Result, error)
	SupportedTypes() []string
	Name() string
}

type Options struct {
	Spec *watermark.Spec

	// Label overrides the capture-date text. When empty it is derived from
	// embedded metadata, then from ModTime.
	Label   string
	ModTime time.Time
}

type Result struct {
	Data        io.Reader
	ContentType string
	Filename    string
	Size        int64
	Metadata    ResultMetadata
}

type ResultMetadata struct {
	Width         int       `json:"width,omitempty"`
	Height        int       `json:"height,omitempty"`
	Format        string    `json:"format,omitempty"`
	Quality       int       `json:"quality,omitempty"`
	HasAlpha      bool      `json:"has_alpha"`
	Label         string    `json:"label,omitempty"`
	CapturedAt    time.Time `json:"captured_at,omitempty"`
	CaptureSource string    `json:"capture_source,omitempty"`
}

type Config struct {
	Quality   int
	Margin    int
	FontPaths []string
}

func DefaultConfig() *Config {
	return &Config{
		Quality: watermark.DefaultQuality,
		Margin:  20,
	}
}
