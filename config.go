package decal

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the interaction tunables of an Editor. Zero values are not
// meaningful; start from DefaultConfig.
type Config struct {
	HistoryCapacity   int           `yaml:"historyCapacity"`   // snapshots kept for undo
	DoubleClickWindow time.Duration `yaml:"doubleClickWindow"` // second press on the selected sticker within this clones it
	DragThreshold     float64       `yaml:"dragThreshold"`     // net pointer travel (px) before a snapshot is pushed
	NudgeStep         float64       `yaml:"nudgeStep"`         // arrow key step (px)
	NudgeStepLarge    float64       `yaml:"nudgeStepLarge"`    // arrow key step with Shift (px)
	ResizeStepMin     float64       `yaml:"resizeStepMin"`     // per-frame scale factor floor while dragging a corner
	ResizeStepMax     float64       `yaml:"resizeStepMax"`     // per-frame scale factor ceiling
	MaxImageFootprint float64       `yaml:"maxImageFootprint"` // longer side cap (px) for new image stickers
	MaxUploadBytes    int64         `yaml:"maxUploadBytes"`    // image loader byte cap

	LogLevel  string `yaml:"logLevel"`  // "debug" | "info" | "warn" | "error"
	PrettyLog bool   `yaml:"prettyLog"` // true => zap dev (color), false => zap prod (JSON)
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		HistoryCapacity:   DefaultHistoryCapacity,
		DoubleClickWindow: 300 * time.Millisecond,
		DragThreshold:     5,
		NudgeStep:         1,
		NudgeStepLarge:    10,
		ResizeStepMin:     0.9,
		ResizeStepMax:     1.1,
		MaxImageFootprint: 150,
		MaxUploadBytes:    10 << 20,
		LogLevel:          "info",
		PrettyLog:         true,
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Keys absent from the file
// keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from DECAL_* environment variables. Unparseable
// values are ignored.
func (c *Config) ApplyEnv() {
	c.HistoryCapacity = getenvInt("DECAL_HISTORY_CAPACITY", c.HistoryCapacity)
	c.DoubleClickWindow = getenvDuration("DECAL_DOUBLE_CLICK_WINDOW", c.DoubleClickWindow)
	c.DragThreshold = getenvFloat("DECAL_DRAG_THRESHOLD", c.DragThreshold)
	c.MaxImageFootprint = getenvFloat("DECAL_MAX_IMAGE_FOOTPRINT", c.MaxImageFootprint)
	c.MaxUploadBytes = int64(getenvInt("DECAL_MAX_UPLOAD_BYTES", int(c.MaxUploadBytes)))
	c.LogLevel = getenv("DECAL_LOG_LEVEL", c.LogLevel)
	c.PrettyLog = getenvBool("DECAL_PRETTY_LOG", c.PrettyLog)
}

// Validate reports every out-of-range field.
func (c Config) Validate() error {
	var errs []error
	if c.HistoryCapacity < 1 {
		errs = append(errs, fmt.Errorf("historyCapacity must be >= 1, got %d", c.HistoryCapacity))
	}
	if c.DoubleClickWindow < 0 {
		errs = append(errs, fmt.Errorf("doubleClickWindow must be >= 0, got %v", c.DoubleClickWindow))
	}
	if c.DragThreshold < 0 {
		errs = append(errs, fmt.Errorf("dragThreshold must be >= 0, got %v", c.DragThreshold))
	}
	if c.ResizeStepMin <= 0 || c.ResizeStepMin > 1 || c.ResizeStepMax < 1 {
		errs = append(errs, fmt.Errorf("resize step range [%v, %v] must straddle 1", c.ResizeStepMin, c.ResizeStepMax))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("maxUploadBytes must be > 0, got %d", c.MaxUploadBytes))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
