package batch

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/photomark/internal/apperror"
	"github.com/abdul-hamid-achik/photomark/internal/processor"
	imgproc "github.com/abdul-hamid-achik/photomark/internal/processor/image"
	"github.com/abdul-hamid-achik/photomark/internal/watermark"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeEngine) ProcessFile(ctx context.Context, src, dst string, spec watermark.Spec) (*processor.ResultMetadata, error) {
	f.mu.Lock()
	f.calls = append(f.calls, src)
	f.mu.Unlock()
	if err := f.fail[filepath.Base(src)]; err != nil {
		return nil, err
	}
	if err := os.WriteFile(dst, []byte("ok"), 0o644); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrWriteFailure)
	}
	return &processor.ResultMetadata{Label: "2024-01-01"}, nil
}

type fakeRecorder struct {
	started  int
	finished []string
	batches  [][3]int
}

func (r *fakeRecorder) ImageStarted(string) { r.started++ }
func (r *fakeRecorder) ImageFinished(path, code string, _ time.Duration) {
	r.finished = append(r.finished, code)
}
func (r *fakeRecorder) BatchFinished(total, succeeded, failed int, _ time.Duration) {
	r.batches = append(r.batches, [3]int{total, succeeded, failed})
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 60, 40))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+2], img.Pix[i+3] = 200, 255
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRun_RejectsExportIntoInputDirectory(t *testing.T) {
	dir := t.TempDir()
	files := []string{writePNG(t, dir, "a.png"), writePNG(t, dir, "b.png")}
	before := listDir(t, dir)

	engine := &fakeEngine{}
	rec := &fakeRecorder{}
	summary, err := New(engine, WithRecorder(rec)).Run(context.Background(), files, dir, watermark.Default())

	require.Error(t, err)
	assert.Nil(t, summary)
	assert.True(t, apperror.Is(err, apperror.ErrUnsafeOutputDirectory))
	assert.Equal(t, apperror.ExitUsage, apperror.ExitCode(err))
	assert.Empty(t, engine.calls)
	assert.Equal(t, before, listDir(t, dir))
	assert.Equal(t, [][3]int{{2, 0, 0}}, rec.batches)
}

func TestRun_RejectsThroughRelativeAndSymlinkedPaths(t *testing.T) {
	dir := t.TempDir()
	file := writePNG(t, dir, "a.png")
	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink(dir, link))

	_, err := New(&fakeEngine{}).Run(context.Background(), []string{file}, link+string(filepath.Separator), watermark.Default())
	assert.True(t, apperror.Is(err, apperror.ErrUnsafeOutputDirectory))
}

func TestRun_BatchLevelErrors(t *testing.T) {
	dir := t.TempDir()
	file := writePNG(t, dir, "a.png")
	notDir := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(notDir, []byte("x"), 0o644))

	tests := []struct {
		name   string
		files  []string
		outDir string
		want   *apperror.Error
	}{
		{"empty output directory", []string{file}, "", apperror.ErrInvalidOutputDirectory},
		{"blank output directory", []string{file}, "   ", apperror.ErrInvalidOutputDirectory},
		{"output is a file", []string{file}, notDir, apperror.ErrInvalidOutputDirectory},
		{"no input", nil, filepath.Join(dir, "out"), apperror.ErrNoInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{}
			_, err := New(engine).Run(context.Background(), tt.files, tt.outDir, watermark.Default())
			assert.True(t, apperror.Is(err, tt.want), "got %v", err)
			assert.Empty(t, engine.calls)
		})
	}
}

func TestRun_FailuresDoNotAbort(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "nested", "out")
	files := []string{
		writePNG(t, in, "a.png"),
		writePNG(t, in, "b.png"),
		writePNG(t, in, "c.png"),
	}

	engine := &fakeEngine{fail: map[string]error{
		"b.png": apperror.Wrap(errors.New("bad logo"), apperror.ErrInvalidLogo),
	}}
	rec := &fakeRecorder{}
	var seen []Result

	summary, err := New(engine,
		WithRecorder(rec),
		WithOnResult(func(r Result) { seen = append(seen, r) }),
		WithLogger(zerolog.Nop()),
	).Run(context.Background(), files, out, watermark.Default())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.NotEmpty(t, summary.BatchID)
	assert.Len(t, engine.calls, 3)
	assert.Len(t, seen, 3)

	failed := summary.Results[1]
	assert.False(t, failed.Success)
	assert.Equal(t, "invalid_logo", failed.Code)
	assert.Empty(t, failed.Output)

	assert.Equal(t, filepath.Join(out, "a.png"), summary.Results[0].Output)
	assert.Equal(t, "2024-01-01", summary.Results[0].Label)
	assert.ElementsMatch(t, []string{"a.png", "c.png"}, listDir(t, out))

	assert.Equal(t, 3, rec.started)
	assert.Equal(t, []string{"", "invalid_logo", ""}, rec.finished)
	assert.Equal(t, [][3]int{{3, 2, 1}}, rec.batches)

	assert.True(t, apperror.Is(summary.Err(), apperror.ErrPartialBatch))
}

func TestRun_MixedDirectoriesGuardEachFile(t *testing.T) {
	d1, d2 := t.TempDir(), t.TempDir()
	a := writePNG(t, d1, "a.png")
	b := writePNG(t, d2, "b.png")

	engine := &fakeEngine{}
	summary, err := New(engine).Run(context.Background(), []string{a, b}, d1, watermark.Default())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, "unsafe_output_directory", summary.Results[0].Code)
	assert.Equal(t, []string{b}, engine.calls)

	original, err := os.ReadFile(a)
	require.NoError(t, err)
	assert.NotEqual(t, []byte("ok"), original, "source must not be overwritten")
}

func TestRun_SafetyDisabled(t *testing.T) {
	dir := t.TempDir()
	files := []string{writePNG(t, dir, "a.png")}

	spec := watermark.Default()
	spec.Suffix = "_wm"
	spec.Format = watermark.FormatJPEG

	summary, err := New(&fakeEngine{}, WithSafety(false)).Run(context.Background(), files, dir, spec)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.FileExists(t, filepath.Join(dir, "a_wm.jpeg"))
	assert.NoError(t, summary.Err())
}

func TestRun_Cancellation(t *testing.T) {
	in := t.TempDir()
	files := []string{writePNG(t, in, "a.png"), writePNG(t, in, "b.png"), writePNG(t, in, "c.png")}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := &fakeEngine{}
	summary, err := New(engine, WithOnResult(func(Result) { cancel() })).
		Run(ctx, files, t.TempDir(), watermark.Default())
	require.NoError(t, err)

	assert.True(t, summary.Cancelled)
	assert.Len(t, summary.Results, 1)
	assert.Equal(t, 3, summary.Total)
	assert.Len(t, engine.calls, 1)
	assert.True(t, apperror.Is(summary.Err(), apperror.ErrPartialBatch))
}

func TestRun_WithRealEngine(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	files := []string{writePNG(t, in, "one.png"), writePNG(t, in, "two.png")}
	require.NoError(t, os.WriteFile(filepath.Join(in, "broken.png"), []byte("nope"), 0o644))
	files = append(files, filepath.Join(in, "broken.png"))

	spec := watermark.Default()
	spec.Prefix = "wm_"
	spec.Format = watermark.FormatJPEG
	spec.Resize = watermark.ResizeWidth{Width: 30}
	spec.CustomText = &watermark.CustomText{Content: "batch", Opacity: 80}

	summary, err := New(imgproc.NewEngine(nil)).Run(context.Background(), files, out, spec)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, "unreadable_source", summary.Results[2].Code)
	assert.ElementsMatch(t, []string{"wm_one.jpeg", "wm_two.jpeg"}, listDir(t, out))

	f, err := os.Open(filepath.Join(out, "wm_one.jpeg"))
	require.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 30, cfg.Width)
	assert.Equal(t, 20, cfg.Height)
}
