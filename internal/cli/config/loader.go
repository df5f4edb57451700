package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/defectgen/internal/errors"
)

// loggerKey and configKey store values in the command context.
type (
	loggerKey struct{}
	configKey struct{}
)

// EnvPrefix prefixes every environment variable read by Load.
// A double underscore separates nested keys: DEFECTGEN_SYMMETRY__SOURCE.
const EnvPrefix = "DEFECTGEN_"

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// flagKeys maps flag names whose config key is not the snake_case name.
var flagKeys = map[string]string{
	"symmetry":         "symmetry.source",
	"symmetry-command": "symmetry.command",
	"symmetry-file":    "symmetry.file",
	"symprec":          "symmetry.symprec",
}

// pathFlags hold paths; when set on the command line they are relative to
// the working directory rather than the project root.
var pathFlags = map[string]string{
	"structure":     "structure",
	"output-dir":    "output_dir",
	"symmetry-file": "symmetry.file",
}

// configExistsIn returns the config file in dir, or "".
func configExistsIn(dir string) string {
	for _, name := range ConfigFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findConfigUpward searches upward from startDir for a config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findConfigUpward(startDir string) string {
	dir := startDir
	for range maxUpwardSearchLevels {
		if found := configExistsIn(dir); found != "" {
			return found
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
//
// cfgFile is an explicit config file; when empty, defectgen.yaml is searched
// upward from the working directory. Relative paths from the file, the
// environment or the defaults resolve against the config file's directory;
// relative paths given as flags resolve against the working directory.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "get working directory")
	}

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"structure":        DefaultStructure,
		"output_dir":       DefaultOutputDir,
		"output_file":      DefaultOutputFile,
		"output":           DefaultOutput,
		"verbose":          false,
		"symmetry.source":  DefaultSource,
		"symmetry.symprec": DefaultSymprec,
	}, "."), nil); err != nil {
		return nil, errors.Wrap(err, "load defaults")
	}

	// 2. Config file
	used := cfgFile
	if used == "" {
		used = findConfigUpward(cwd)
	} else if _, err := os.Stat(used); err != nil {
		return nil, errors.WithHint(errors.Wrapf(err, "config file %s", used),
			"run 'defectgen init' to create defectgen.yaml")
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", used)
		}
	}

	// 3. Environment (DEFECTGEN_OUTPUT_DIR -> output_dir, DEFECTGEN_SYMMETRY__SOURCE -> symmetry.source)
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load environment")
	}

	// 4. Flags (only those explicitly set)
	flagPaths := make(map[string]string)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			if pathKey, ok := pathFlags[f.Name]; ok && f.Value.String() != "" {
				flagPaths[pathKey] = resolvePathRelativeTo(f.Value.String(), cwd)
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, errors.Wrap(err, "load flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	cfg.ProjectRoot = cwd
	if used != "" {
		abs, err := filepath.Abs(used)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve %s", used)
		}
		cfg.ConfigFile = abs
		cfg.ProjectRoot = filepath.Dir(abs)
	}

	resolve := func(key string, target *string) {
		if p, ok := flagPaths[key]; ok {
			*target = p
			return
		}
		*target = resolvePathRelativeTo(*target, cfg.ProjectRoot)
	}
	resolve("structure", &cfg.Structure)
	resolve("output_dir", &cfg.OutputDir)
	resolve("symmetry.file", &cfg.Symmetry.File)

	return &cfg, nil
}

// WithConfig stores cfg in ctx.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the config stored by WithConfig, or the defaults.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return Default()
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{
		Structure:    DefaultStructure,
		OutputDir:    DefaultOutputDir,
		OutputFile:   DefaultOutputFile,
		OutputFormat: DefaultOutput,
		Symmetry:     SymmetryConfig{Source: DefaultSource, Symprec: DefaultSymprec},
	}
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
