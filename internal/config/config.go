package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	Environment string
	LogLevel    string
	LogFormat   string

	// FontPaths are tried in order after an explicit font file and before the embedded face.
	FontPaths []string

	JPEGQuality int

	MetricsFile string

	TracingEnabled   bool
	OTLPEndpoint     string
	TraceSampleRate  float64
	TraceServiceName string
}

var DefaultFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/Library/Fonts/Arial.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"C:/Windows/Fonts/arial.ttf",
	"C:/Windows/Fonts/msyh.ttf",
	"C:/Windows/Fonts/simhei.ttf",
}

func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Environment = getEnvString("PHOTOMARK_ENV", "production")
	cfg.LogLevel = getEnvString("PHOTOMARK_LOG_LEVEL", "warn")
	cfg.LogFormat = getEnvString("PHOTOMARK_LOG_FORMAT", "text")

	cfg.FontPaths = DefaultFontPaths
	if value := os.Getenv("PHOTOMARK_FONT_PATHS"); value != "" {
		cfg.FontPaths = append(splitList(value), DefaultFontPaths...)
	}

	cfg.JPEGQuality = getEnvInt("PHOTOMARK_JPEG_QUALITY", 95)

	cfg.MetricsFile = os.Getenv("PHOTOMARK_METRICS_FILE")

	cfg.TracingEnabled = getEnvBool("PHOTOMARK_TRACING_ENABLED", false)
	cfg.OTLPEndpoint = os.Getenv("PHOTOMARK_OTLP_ENDPOINT")
	cfg.TraceSampleRate = getEnvFloat("PHOTOMARK_TRACE_SAMPLE_RATE", 1.0)
	cfg.TraceServiceName = getEnvString("PHOTOMARK_TRACE_SERVICE", "photomark")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, p := range strings.Split(value, string(os.PathListSeparator)) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, filepath.Clean(p))
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.JPEGQuality < 0 || c.JPEGQuality > 100 {
		return fmt.Errorf("invalid jpeg quality: %d", c.JPEGQuality)
	}

	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %q", c.LogFormat)
	}

	if c.TraceSampleRate < 0 || c.TraceSampleRate > 1 {
		return fmt.Errorf("invalid trace sample rate: %v", c.TraceSampleRate)
	}

	if c.TracingEnabled && c.OTLPEndpoint == "" {
		return fmt.Errorf("PHOTOMARK_OTLP_ENDPOINT is required when tracing is enabled")
	}

	return nil
}
