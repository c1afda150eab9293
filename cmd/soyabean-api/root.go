package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/TheAryan77/soyabean-api/internal/artifact"
	"github.com/TheAryan77/soyabean-api/internal/config"
)

// newRootCmd builds the command tree. Running the root without a
// subcommand serves the API, so the binary drops into a container as is.
func newRootCmd(lookup func(string) (string, bool)) *cobra.Command {
	root := &cobra.Command{
		Use:           "soyabean-api",
		Short:         "Soybean leaf disease classification service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeCmd(cmd, lookup)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Path to config file (.yaml/.yml, .json, .toml)")
	pf.String("addr", "", "HTTP listen address, e.g. :5000 (overrides port)")
	pf.Int("port", 0, "HTTP port on all interfaces (defaults PORT or 5000)")
	pf.String("model-path", "", "Local path of the model artifact (defaults MODEL_PATH)")
	pf.String("model-url", "", "Download URL used when the model file is missing (defaults MODEL_URL)")
	pf.String("onnx-library", "", "Path to the onnxruntime shared library (defaults ONNXRUNTIME_LIB)")
	pf.String("log-level", "", "Log level: debug|info|warn|error (defaults LOG_LEVEL or info)")
	pf.String("log-format", "", "Log format: auto|console|json")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Fetch the model if needed, load it and serve HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeCmd(cmd, lookup)
		},
	}
	fetch := &cobra.Command{
		Use:     "fetch",
		Short:   "Download the model artifact and exit",
		Example: "  soyabean-api fetch --model-path /models/leaf.onnx",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, lookup)
			if err != nil {
				return err
			}
			logger := newLogger(cfg, os.Stderr)
			res, err := artifact.Ensure(logger.WithContext(cmd.Context()), cfg.ModelURL, cfg.ModelPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (downloaded=%t bytes=%d)\n", res.Path, res.Downloaded, res.Bytes)
			return nil
		},
	}
	root.AddCommand(serve, fetch)
	return root
}

func runServeCmd(cmd *cobra.Command, lookup func(string) (string, bool)) error {
	cfg, err := resolveConfig(cmd, lookup)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)
	log.Logger = logger
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return serve(ctx, cfg, logger)
}

// resolveConfig layers defaults, the config file, the environment and
// finally explicitly set flags, then validates the result.
func resolveConfig(cmd *cobra.Command, lookup func(string) (string, bool)) (config.Config, error) {
	cfg := config.Defaults()
	flags := cmd.Flags()

	if path, _ := flags.GetString("config"); path != "" {
		fileCfg, err := config.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = cfg.Merge(fileCfg)
	}

	cfg, err := cfg.ApplyEnv(lookup)
	if err != nil {
		return cfg, err
	}

	var fl config.Config
	fl.Addr, _ = flags.GetString("addr")
	fl.ModelPath, _ = flags.GetString("model-path")
	fl.ModelURL, _ = flags.GetString("model-url")
	fl.ONNXLibrary, _ = flags.GetString("onnx-library")
	fl.LogLevel, _ = flags.GetString("log-level")
	fl.LogFormat, _ = flags.GetString("log-format")
	if flags.Changed("port") {
		fl.Port, _ = flags.GetInt("port")
		if fl.Addr == "" {
			cfg.Addr = ""
		}
	}
	cfg = cfg.Merge(fl)

	if cfg, err = cfg.ExpandPaths(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. "auto" picks the console writer on a
// terminal and JSON lines otherwise.
func newLogger(cfg config.Config, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	console := false
	switch cfg.LogFormat {
	case "console":
		console = true
	case "json":
	default:
		if f, ok := w.(*os.File); ok {
			console = isatty.IsTerminal(f.Fd())
		}
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("svc", "soyabean-api").Logger()
}
