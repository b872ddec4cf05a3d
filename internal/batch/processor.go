// Package batch applies the watermark engine to many files, one at a time.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/photomark/internal/apperror"
	"github.com/abdul-hamid-achik/photomark/internal/logger"
	"github.com/abdul-hamid-achik/photomark/internal/processor"
	"github.com/abdul-hamid-achik/photomark/internal/tracing"
	"github.com/abdul-hamid-achik/photomark/internal/watermark"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Engine is the single-image entry point the batch drives.
type Engine interface {
	ProcessFile(ctx context.Context, src, dst string, spec watermark.Spec) (*processor.ResultMetadata, error)
}

// Recorder observes batch progress, typically for metrics.
type Recorder interface {
	ImageStarted(path string)
	ImageFinished(path, code string, duration time.Duration)
	BatchFinished(total, succeeded, failed int, duration time.Duration)
}

type Result struct {
	Source     string        `json:"source"`
	Output     string        `json:"output,omitempty"`
	Success    bool          `json:"success"`
	Code       string        `json:"code,omitempty"`
	Error      string        `json:"error,omitempty"`
	Label      string        `json:"label,omitempty"`
	DurationMS int64         `json:"duration_ms"`
	Duration   time.Duration `json:"-"`
	Err        error         `json:"-"`
}

type Summary struct {
	BatchID    string        `json:"batch_id"`
	OutputDir  string        `json:"output_dir"`
	Total      int           `json:"total"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Cancelled  bool          `json:"cancelled,omitempty"`
	Results    []Result      `json:"results"`
	DurationMS int64         `json:"duration_ms"`
	Duration   time.Duration `json:"-"`
}

// Err is nil when every file succeeded and the batch ran to completion.
func (s *Summary) Err() error {
	switch {
	case s.Failed > 0:
		return apperror.Wrap(fmt.Errorf("%d of %d images failed", s.Failed, s.Total), apperror.ErrPartialBatch)
	case s.Cancelled:
		return apperror.Wrap(context.Canceled, apperror.ErrPartialBatch)
	default:
		return nil
	}
}

type Processor struct {
	engine   Engine
	safety   bool
	onResult func(Result)
	log      zerolog.Logger
	recorder Recorder
}

type Option func(*Processor)

// WithSafety toggles the refusal to export into the inputs' own directory. It is on by default.
func WithSafety(enabled bool) Option {
	return func(p *Processor) { p.safety = enabled }
}

func WithOnResult(fn func(Result)) Option {
	return func(p *Processor) { p.onResult = fn }
}

func WithLogger(l zerolog.Logger) Option {
	return func(p *Processor) { p.log = l }
}

func WithRecorder(r Recorder) Option {
	return func(p *Processor) { p.recorder = r }
}

func New(engine Engine, opts ...Option) *Processor {
	p := &Processor{
		engine: engine,
		safety: true,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run validates outDir once, then processes files sequentially. A failing
// file is recorded and never stops the batch. Batch-level problems are
// returned before any file is touched.
func (p *Processor) Run(ctx context.Context, files []string, outDir string, spec watermark.Spec) (*Summary, error) {
	start := time.Now()
	batchID := uuid.NewString()
	log := p.log.With().Str("batch_id", batchID).Logger()
	ctx = logger.WithBatchID(ctx, batchID)

	ctx, span := tracing.StartBatchSpan(ctx, batchID, len(files), outDir)

	if err := p.validate(files, outDir); err != nil {
		tracing.RecordError(ctx, err)
		tracing.EndBatchSpan(span, 0, 0)
		if p.recorder != nil {
			p.recorder.BatchFinished(len(files), 0, 0, time.Since(start))
		}
		log.Error().Str("code", apperror.Code(err)).Err(err).Msg("batch rejected")
		return nil, err
	}

	summary := &Summary{
		BatchID:   batchID,
		OutputDir: outDir,
		Total:     len(files),
		Results:   make([]Result, 0, len(files)),
	}

	log.Info().Int("total", len(files)).Str("output_dir", outDir).Msg("batch started")

	for _, job := range PlanJobs(files, outDir, spec) {
		if ctx.Err() != nil {
			summary.Cancelled = true
			log.Warn().Int("done", len(summary.Results)).Msg("batch cancelled")
			break
		}

		result := p.processOne(ctx, job, spec)
		if result.Success {
			summary.Succeeded++
			log.Debug().Str("src", job.Source).Str("dst", job.Output).Dur("took", result.Duration).Msg("image done")
		} else {
			summary.Failed++
			log.Warn().Str("src", job.Source).Str("code", result.Code).Err(result.Err).Msg("image failed")
		}
		summary.Results = append(summary.Results, result)
		if p.onResult != nil {
			p.onResult(result)
		}
	}

	summary.Duration = time.Since(start)
	summary.DurationMS = summary.Duration.Milliseconds()

	tracing.EndBatchSpan(span, summary.Succeeded, summary.Failed)
	if p.recorder != nil {
		p.recorder.BatchFinished(summary.Total, summary.Succeeded, summary.Failed, summary.Duration)
	}

	log.Info().
		Int("succeeded", summary.Succeeded).
		Int("total", summary.Total).
		Dur("took", summary.Duration).
		Msg("batch finished")

	return summary, nil
}

func (p *Processor) processOne(ctx context.Context, job Job, spec watermark.Spec) Result {
	start := time.Now()
	ctx = logger.WithFile(ctx, job.Source)
	ctx, span := tracing.StartImageSpan(ctx, job.Source, job.Output)
	defer span.End()

	if p.recorder != nil {
		p.recorder.ImageStarted(job.Source)
	}

	result := Result{Source: job.Source, Output: job.Output}

	var (
		meta *processor.ResultMetadata
		err  error
	)
	if p.safety && samePath(job.Source, job.Output) {
		err = apperror.Wrap(fmt.Errorf("output %s would overwrite its source", job.Output), apperror.ErrUnsafeOutputDirectory)
	} else {
		meta, err = p.engine.ProcessFile(ctx, job.Source, job.Output, spec)
	}

	result.Duration = time.Since(start)
	result.DurationMS = result.Duration.Milliseconds()

	if err != nil {
		result.Err = err
		result.Code = apperror.Code(err)
		result.Error = err.Error()
		result.Output = ""
		tracing.RecordError(ctx, err)
	} else {
		result.Success = true
		if meta != nil {
			result.Label = meta.Label
		}
	}

	if p.recorder != nil {
		p.recorder.ImageFinished(job.Source, result.Code, result.Duration)
	}
	return result
}

func (p *Processor) validate(files []string, outDir string) error {
	if strings.TrimSpace(outDir) == "" {
		return apperror.Wrap(errors.New("output directory is empty"), apperror.ErrInvalidOutputDirectory)
	}
	if len(files) == 0 {
		return apperror.ErrNoInput
	}

	if p.safety && allInDir(files, outDir) {
		return apperror.Wrap(
			fmt.Errorf("every input lives in %s", outDir),
			apperror.ErrUnsafeOutputDirectory,
		)
	}

	if info, err := os.Stat(outDir); err == nil && !info.IsDir() {
		return apperror.Wrap(fmt.Errorf("%s is not a directory", outDir), apperror.ErrInvalidOutputDirectory)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return apperror.Wrap(err, apperror.ErrInvalidOutputDirectory)
	}
	return nil
}

func allInDir(files []string, dir string) bool {
	target := resolvePath(dir)
	for _, f := range files {
		if resolvePath(filepath.Dir(f)) != target {
			return false
		}
	}
	return true
}

func samePath(a, b string) bool {
	return resolvePath(a) == resolvePath(b)
}

// resolvePath makes a path absolute and follows symlinks when it exists.
func resolvePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}
