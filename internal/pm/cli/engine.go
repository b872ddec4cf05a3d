package cli

import (
	"sync"

	"github.com/abdul-hamid-achik/photomark/internal/processor"
	imgproc "github.com/abdul-hamid-achik/photomark/internal/processor/image"
)

var (
	registerOnce sync.Once
	engine       *imgproc.Engine
)

// watermarkEngine registers the image processors on first use and returns the engine.
func watermarkEngine() *imgproc.Engine {
	registerOnce.Do(func() {
		pc := processor.DefaultConfig()
		if runtimeCfg != nil {
			pc.Quality = runtimeCfg.JPEGQuality
			pc.FontPaths = runtimeCfg.FontPaths
		}
		engine = imgproc.RegisterAll(processor.DefaultRegistry, pc)
	})
	return engine
}
