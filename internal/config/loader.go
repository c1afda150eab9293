package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/TheAryan77/soyabean-api/internal/common/fsutil"
)

const (
	// DefaultModelURL is the Drive share link the leaf classifier is published under.
	DefaultModelURL = "https://drive.google.com/file/d/1L51r2z5htdD9z3XSA2DUS987ImtofrnZ/view?usp=drive_link"
	// DefaultModelPath is relative to the working directory.
	DefaultModelPath   = "model_2_new_dataset.onnx"
	DefaultPort        = 5000
	DefaultMaxUploadMB = 16
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified"; Defaults fills them in.
type Config struct {
	Addr               string   `json:"addr" yaml:"addr" toml:"addr"`
	Port               int      `json:"port" yaml:"port" toml:"port"`
	ModelURL           string   `json:"model_url" yaml:"model_url" toml:"model_url"`
	ModelPath          string   `json:"model_path" yaml:"model_path" toml:"model_path"`
	ONNXLibrary        string   `json:"onnx_library" yaml:"onnx_library" toml:"onnx_library"`
	MaxUploadMB        int      `json:"max_upload_mb" yaml:"max_upload_mb" toml:"max_upload_mb"`
	LogLevel           string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat          string   `json:"log_format" yaml:"log_format" toml:"log_format"`
	CORSEnabled        *bool    `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
	ReadTimeoutSec     int      `json:"read_timeout_seconds" yaml:"read_timeout_seconds" toml:"read_timeout_seconds"`
	WriteTimeoutSec    int      `json:"write_timeout_seconds" yaml:"write_timeout_seconds" toml:"write_timeout_seconds"`
	InferTimeoutSec    int      `json:"infer_timeout_seconds" yaml:"infer_timeout_seconds" toml:"infer_timeout_seconds"`
}

// Defaults returns the configuration used when nothing else is specified.
func Defaults() Config {
	on := true
	return Config{
		Port:               DefaultPort,
		ModelURL:           DefaultModelURL,
		ModelPath:          DefaultModelPath,
		MaxUploadMB:        DefaultMaxUploadMB,
		LogLevel:           "info",
		LogFormat:          "auto",
		CORSEnabled:        &on,
		CORSAllowedOrigins: []string{"*"},
		ReadTimeoutSec:     30,
		WriteTimeoutSec:    60,
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// Merge overlays the non-zero fields of o onto c.
func (c Config) Merge(o Config) Config {
	if o.Addr != "" {
		c.Addr = o.Addr
	}
	if o.Port != 0 {
		c.Port = o.Port
	}
	if o.ModelURL != "" {
		c.ModelURL = o.ModelURL
	}
	if o.ModelPath != "" {
		c.ModelPath = o.ModelPath
	}
	if o.ONNXLibrary != "" {
		c.ONNXLibrary = o.ONNXLibrary
	}
	if o.MaxUploadMB != 0 {
		c.MaxUploadMB = o.MaxUploadMB
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		c.LogFormat = o.LogFormat
	}
	if o.CORSEnabled != nil {
		v := *o.CORSEnabled
		c.CORSEnabled = &v
	}
	if len(o.CORSAllowedOrigins) > 0 {
		c.CORSAllowedOrigins = append([]string(nil), o.CORSAllowedOrigins...)
	}
	if o.ReadTimeoutSec != 0 {
		c.ReadTimeoutSec = o.ReadTimeoutSec
	}
	if o.WriteTimeoutSec != 0 {
		c.WriteTimeoutSec = o.WriteTimeoutSec
	}
	if o.InferTimeoutSec != 0 {
		c.InferTimeoutSec = o.InferTimeoutSec
	}
	return c
}

// ApplyEnv overrides fields from the process environment. lookup is usually
// os.LookupEnv; tests pass a map-backed func.
func (c Config) ApplyEnv(lookup func(string) (string, bool)) (Config, error) {
	if v, ok := lookup("PORT"); ok && v != "" {
		p, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return c, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = p
		// an explicit PORT wins over a file-level addr
		c.Addr = ""
	}
	if v, ok := lookup("MODEL_URL"); ok && v != "" {
		c.ModelURL = v
	}
	if v, ok := lookup("MODEL_PATH"); ok && v != "" {
		c.ModelPath = v
	}
	if v, ok := lookup("ONNXRUNTIME_LIB"); ok && v != "" {
		c.ONNXLibrary = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	return c, nil
}

// ExpandPaths resolves a leading '~' in the model and runtime library paths.
func (c Config) ExpandPaths() (Config, error) {
	var err error
	if c.ModelPath, err = fsutil.ExpandHome(c.ModelPath); err != nil {
		return c, fmt.Errorf("model_path: %w", err)
	}
	if c.ONNXLibrary, err = fsutil.ExpandHome(c.ONNXLibrary); err != nil {
		return c, fmt.Errorf("onnx_library: %w", err)
	}
	return c, nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ModelPath) == "" {
		return fmt.Errorf("model_path is required")
	}
	if c.Addr == "" && (c.Port <= 0 || c.Port > 65535) {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.MaxUploadMB < 0 {
		return fmt.Errorf("max_upload_mb must not be negative")
	}
	return nil
}

// ListenAddr returns Addr if set, else all interfaces on Port.
func (c Config) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}

// MaxUploadBytes converts MaxUploadMB to bytes, falling back to the default.
func (c Config) MaxUploadBytes() int64 {
	mb := c.MaxUploadMB
	if mb <= 0 {
		mb = DefaultMaxUploadMB
	}
	return int64(mb) << 20
}

// CORS reports whether CORS middleware should be installed.
func (c Config) CORS() bool { return c.CORSEnabled != nil && *c.CORSEnabled }
