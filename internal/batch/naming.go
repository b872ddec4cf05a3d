package batch

import (
	"path/filepath"
	"strings"

	imgproc "github.com/abdul-hamid-achik/photomark/internal/processor/image"
	"github.com/abdul-hamid-achik/photomark/internal/watermark"
)

// Job pairs one source image with the path its watermarked copy goes to.
type Job struct {
	Source string
	Output string
}

// OutputName builds {prefix}{stem}{suffix}.{ext}. The extension follows the
// format override, else the source extension, with .jpg spelled .jpeg.
func OutputName(src, prefix, suffix string, format watermark.Format) string {
	base := filepath.Base(src)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return prefix + stem + suffix + imgproc.OutputExtension(src, format)
}

func PlanJobs(files []string, outDir string, spec watermark.Spec) []Job {
	jobs := make([]Job, 0, len(files))
	for _, f := range files {
		jobs = append(jobs, Job{
			Source: f,
			Output: filepath.Join(outDir, OutputName(f, spec.Prefix, spec.Suffix, spec.Format)),
		})
	}
	return jobs
}

// DefaultOutputDir is where a single input directory exports to when no
// output directory is given: a sibling-named child, <dir>/<dir>_watermark.
func DefaultOutputDir(inputDir string) string {
	clean := filepath.Clean(inputDir)
	name := filepath.Base(clean)
	if abs, err := filepath.Abs(clean); err == nil {
		name = filepath.Base(abs)
	}
	return filepath.Join(clean, name+"_watermark")
}
