package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/photomark/internal/apperror"
	"github.com/abdul-hamid-achik/photomark/internal/processor"
	imgproc "github.com/abdul-hamid-achik/photomark/internal/processor/image"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE...",
	Short: "Show size, format, alpha and capture time of images",
	Long: `Show what pm would read from each image before watermarking it.

The capture source tells which timestamp the date label would use:
exif_original, exif_datetime or mod_time.

Examples:
  pm inspect IMG_0042.jpg
  pm inspect ./photos/*.png --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

type inspectResult struct {
	Path string `json:"path"`
	imgproc.ImageMetadata
	Label string `json:"label,omitempty"`
	Error string `json:"error,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	watermarkEngine()

	layout := "2006-01-02"
	if tmpl, _, err := cfg.ResolveTemplate(""); err == nil && tmpl.DateLayout != "" {
		layout = tmpl.DateLayout
	}

	results := make([]inspectResult, 0, len(args))
	failed := 0
	for _, path := range args {
		r, err := inspectFile(cmd, processor.DefaultRegistry, path, layout)
		if err != nil {
			failed++
			r.Error = err.Error()
			printer.Error("%s: %v", path, err)
		}
		results = append(results, r)
	}

	if jsonOutput {
		if err := printer.JSON(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Error != "" {
				continue
			}
			printer.Section(r.Path)
			printer.KeyValue("Size", fmt.Sprintf("%dx%d", r.Width, r.Height))
			printer.KeyValue("Format", r.Format)
			printer.KeyValue("Color mode", r.ColorMode)
			printer.KeyValue("Alpha", fmt.Sprintf("%v", r.HasAlpha))
			if r.CapturedAt != nil {
				printer.KeyValue("Captured", r.CapturedAt.Format(time.RFC3339))
				printer.KeyValue("Source", string(r.CaptureSource))
				printer.KeyValue("Label", r.Label)
			}
		}
	}

	switch {
	case failed == len(args):
		return apperror.Wrap(fmt.Errorf("no readable images among %d files", len(args)), apperror.ErrUnreadableSource)
	case failed > 0:
		return apperror.Wrap(fmt.Errorf("%d of %d files unreadable", failed, len(args)), apperror.ErrPartialBatch)
	}
	return nil
}

// inspectFile picks the metadata processor registered for the sniffed content type.
func inspectFile(cmd *cobra.Command, registry *processor.Registry, path, layout string) (inspectResult, error) {
	r := inspectResult{Path: path}

	f, err := os.Open(path)
	if err != nil {
		return r, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return r, err
	}

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return r, err
	}
	proc, err := registry.Find(imgproc.DetectContentType(buf[:n]), "metadata")
	if err != nil {
		return r, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return r, err
	}

	res, err := proc.Process(cmd.Context(), &processor.Options{ModTime: info.ModTime()}, f)
	if err != nil {
		return r, err
	}
	if err := json.NewDecoder(res.Data).Decode(&r.ImageMetadata); err != nil {
		return r, err
	}
	if r.CapturedAt != nil {
		r.Label = imgproc.CaptureTime{Time: *r.CapturedAt, Source: r.CaptureSource}.Label(layout)
	}
	return r, nil
}
