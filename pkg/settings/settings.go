// Package settings loads runtime configuration. Values are layered:
// built-in defaults, then an optional YAML file, then a .env file, then
// AEROGEOM_* environment variables.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chazu/aerogeom/pkg/logging"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "AEROGEOM_"

// Settings holds all configuration values.
type Settings struct {
	Log logging.Config `yaml:"log"`

	// Deflection is the default tessellation deflection for mesh exports.
	Deflection float64 `yaml:"deflection"`

	// VTKMode is "simple" or "annotated".
	VTKMode string `yaml:"vtk_mode"`

	// ExportDir is prepended to relative export paths. Empty means the
	// working directory.
	ExportDir string `yaml:"export_dir"`

	// EvalTimeout bounds a single DSL evaluation.
	EvalTimeout time.Duration `yaml:"eval_timeout"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Log:         logging.Config{Level: "info", Format: "console"},
		Deflection:  0.01,
		VTKMode:     "simple",
		EvalTimeout: 5 * time.Second,
	}
}

// Load builds settings from defaults, the YAML file at yamlPath and the
// dotenv file at envPath, then applies the environment. Empty paths are
// skipped; a missing .env file is not an error, a missing YAML file is.
func Load(yamlPath, envPath string) (Settings, error) {
	s := Default()
	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return Settings{}, fmt.Errorf("settings: read %s: %w", yamlPath, err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("settings: parse %s: %w", yamlPath, err)
		}
	}
	if envPath != "" {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("settings: load %s: %w", envPath, err)
		}
	}
	if err := s.applyEnv(os.LookupEnv); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// applyEnv overrides fields from AEROGEOM_* variables found by lookup.
func (s *Settings) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	str("LOG_LEVEL", &s.Log.Level)
	str("LOG_FORMAT", &s.Log.Format)
	str("LOG_FILE", &s.Log.File)
	str("VTK_MODE", &s.VTKMode)
	str("EXPORT_DIR", &s.ExportDir)

	if v, ok := lookup(EnvPrefix + "DEFLECTION"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("settings: %sDEFLECTION: %w", EnvPrefix, err)
		}
		s.Deflection = f
	}
	if v, ok := lookup(EnvPrefix + "EVAL_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("settings: %sEVAL_TIMEOUT: %w", EnvPrefix, err)
		}
		s.EvalTimeout = d
	}
	return nil
}

// Validate rejects values no command could use.
func (s Settings) Validate() error {
	var errs []error
	if !(s.Deflection > 0) {
		errs = append(errs, fmt.Errorf("deflection must be positive, got %g", s.Deflection))
	}
	switch strings.ToLower(s.VTKMode) {
	case "simple", "annotated":
	default:
		errs = append(errs, fmt.Errorf("vtk_mode must be simple or annotated, got %q", s.VTKMode))
	}
	if s.EvalTimeout <= 0 {
		errs = append(errs, fmt.Errorf("eval_timeout must be positive, got %s", s.EvalTimeout))
	}
	switch strings.ToLower(s.Log.Format) {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log format must be console or json, got %q", s.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("settings: %w", errors.Join(errs...))
	}
	return nil
}
