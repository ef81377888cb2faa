package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/tzuan16/uwimg/pkg/uwimg"
)

// Config holds the runtime settings of the uwflow commands.
type Config struct {
	Smoothing int
	Stride    int
	// Scale multiplies velocities when drawing; 0 means
	// uwimg.DefaultDrawScale(Smoothing, Div).
	Scale    float64
	Div      int
	Camera   int
	DebugDir string
	LogLevel slog.Level
}

// Default returns the built-in settings.
func Default() *Config {
	p := uwimg.NewFlowParams()
	return &Config{
		Smoothing: p.Smoothing,
		Stride:    p.Stride,
		Div:       8,
		LogLevel:  slog.LevelInfo,
	}
}

// Load reads an optional .env file from the working directory and then
// overrides the defaults with UWIMG_* environment variables.
func Load(files ...string) (*Config, error) {
	var errs []error
	// A missing .env file is not an error.
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		errs = append(errs, fmt.Errorf("reading env file: %w", err))
	}

	cfg := Default()
	cfg.Smoothing = envInt("UWIMG_SMOOTHING", cfg.Smoothing, &errs)
	cfg.Stride = envInt("UWIMG_STRIDE", cfg.Stride, &errs)
	cfg.Div = envInt("UWIMG_DIV", cfg.Div, &errs)
	cfg.Camera = envInt("UWIMG_CAMERA", cfg.Camera, &errs)
	cfg.Scale = envFloat("UWIMG_SCALE", cfg.Scale, &errs)
	cfg.DebugDir = os.Getenv("UWIMG_DEBUG_DIR")
	if v := os.Getenv("UWIMG_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.TrimSpace(v))); err != nil {
			errs = append(errs, fmt.Errorf("UWIMG_LOG_LEVEL: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Div < 1 {
		return fmt.Errorf("div must be at least 1, got %d", c.Div)
	}
	if c.Scale < 0 {
		return fmt.Errorf("scale must be non-negative, got %f", c.Scale)
	}
	return c.FlowParams().Validate()
}

// FlowParams converts the configuration to pipeline parameters.
func (c *Config) FlowParams() *uwimg.FlowParams {
	p := uwimg.NewFlowParams()
	p.Smoothing = c.Smoothing
	p.Stride = c.Stride
	p.SaveIntermediateFilesPath = c.DebugDir
	return p
}

// DrawScale is the factor applied to velocities when drawing them.
func (c *Config) DrawScale() float32 {
	if c.Scale > 0 {
		return float32(c.Scale)
	}
	return uwimg.DefaultDrawScale(c.Smoothing, c.Div)
}

func envInt(key string, def int, errs *[]error) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func envFloat(key string, def float64, errs *[]error) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return f
}
