package config

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/go-faster/errors"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is the resolved shelf configuration.
type Config struct {
	APIURL             string
	DataDir            string
	LogFile            string
	LogLevel           string
	SearchDebounce     time.Duration
	MutationDelay      time.Duration
	RemovalDelay       time.Duration
	CheckoutDelay      time.Duration
	PersistProducts    bool
	SequencedMutations bool
}

const (
	defaultConfigPath     = "~/.config/shelf/config.toml"
	defaultAPIURL         = "https://fakestoreapi.com"
	defaultDataDir        = "~/.local/share/shelf"
	defaultLogName        = "shelf.log"
	defaultLogLevel       = "info"
	defaultSearchDebounce = 300 * time.Millisecond
	defaultMutationDelay  = 700 * time.Millisecond
	defaultRemovalDelay   = 300 * time.Millisecond
	defaultCheckoutDelay  = 2 * time.Second

	// EnvPrefix prefixes every environment override, e.g. SHELF_API_URL.
	EnvPrefix = "SHELF"
)

// fileConfig mirrors config.toml. Durations are strings like "300ms".
type fileConfig struct {
	APIURL             string `toml:"api_url"`
	DataDir            string `toml:"data_dir"`
	LogFile            string `toml:"log_file"`
	LogLevel           string `toml:"log_level"`
	SearchDebounce     string `toml:"search_debounce"`
	MutationDelay      string `toml:"mutation_delay"`
	RemovalDelay       string `toml:"removal_delay"`
	CheckoutDelay      string `toml:"checkout_delay"`
	PersistProducts    *bool  `toml:"persist_products"`
	SequencedMutations *bool  `toml:"sequenced_mutations"`
}

// envConfig holds SHELF_* overrides. Every field is a string so that an
// unset variable is distinguishable from a zero value.
type envConfig struct {
	APIURL             string `env:"API_URL"`
	DataDir            string `env:"DATA_DIR"`
	LogFile            string `env:"LOG_FILE"`
	LogLevel           string `env:"LOG_LEVEL"`
	SearchDebounce     string `env:"SEARCH_DEBOUNCE"`
	MutationDelay      string `env:"MUTATION_DELAY"`
	RemovalDelay       string `env:"REMOVAL_DELAY"`
	CheckoutDelay      string `env:"CHECKOUT_DELAY"`
	PersistProducts    string `env:"PERSIST_PRODUCTS"`
	SequencedMutations string `env:"SEQUENCED_MUTATIONS"`
}

// Default is the configuration used when no file or overrides exist.
func Default() Config {
	dataDir := mustExpand(defaultDataDir)
	return Config{
		APIURL:         defaultAPIURL,
		DataDir:        dataDir,
		LogFile:        filepath.Join(dataDir, defaultLogName),
		LogLevel:       defaultLogLevel,
		SearchDebounce: defaultSearchDebounce,
		MutationDelay:  defaultMutationDelay,
		RemovalDelay:   defaultRemovalDelay,
		CheckoutDelay:  defaultCheckoutDelay,
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Load reads the config file at path (or the default path), falls back to
// defaults when it is missing, then applies SHELF_* environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw fileConfig
	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer func() { _ = file.Close() }()
		data, err := io.ReadAll(file)
		if err != nil {
			return Config{}, errors.Wrap(err, "read config")
		}
		if err := toml.Unmarshal(data, &raw); err != nil {
			return Config{}, errors.Wrap(err, "parse config")
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, errors.Wrap(err, "open config")
	}

	var env envConfig
	loader := aconfig.LoaderFor(&env, aconfig.Config{
		SkipDefaults:     true,
		SkipFiles:        true,
		SkipFlags:        true,
		AllowUnknownEnvs: true,
		EnvPrefix:        EnvPrefix,
	})
	if err := loader.Load(); err != nil {
		return Config{}, errors.Wrap(err, "load environment")
	}
	raw.overlay(env)

	return raw.resolve()
}

func (f *fileConfig) overlay(env envConfig) {
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	set(&f.APIURL, env.APIURL)
	set(&f.DataDir, env.DataDir)
	set(&f.LogFile, env.LogFile)
	set(&f.LogLevel, env.LogLevel)
	set(&f.SearchDebounce, env.SearchDebounce)
	set(&f.MutationDelay, env.MutationDelay)
	set(&f.RemovalDelay, env.RemovalDelay)
	set(&f.CheckoutDelay, env.CheckoutDelay)
	if b, err := strconv.ParseBool(strings.TrimSpace(env.PersistProducts)); err == nil {
		f.PersistProducts = &b
	}
	if b, err := strconv.ParseBool(strings.TrimSpace(env.SequencedMutations)); err == nil {
		f.SequencedMutations = &b
	}
}

func (f fileConfig) resolve() (Config, error) {
	cfg := Default()

	if v := strings.TrimSpace(f.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(f.DataDir); v != "" {
		cfg.DataDir = mustExpand(v)
	}
	cfg.LogFile = filepath.Join(cfg.DataDir, defaultLogName)
	if v := strings.TrimSpace(f.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(f.LogLevel)); v != "" {
		switch v {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = v
		default:
			return Config{}, errors.Errorf("parse config: unknown log_level %q", f.LogLevel)
		}
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"search_debounce", f.SearchDebounce, &cfg.SearchDebounce},
		{"mutation_delay", f.MutationDelay, &cfg.MutationDelay},
		{"removal_delay", f.RemovalDelay, &cfg.RemovalDelay},
		{"checkout_delay", f.CheckoutDelay, &cfg.CheckoutDelay},
	}
	for _, d := range durations {
		v := strings.TrimSpace(d.raw)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "parse config: %s", d.name)
		}
		if parsed < 0 {
			return Config{}, errors.Errorf("parse config: %s must not be negative", d.name)
		}
		*d.dst = parsed
	}

	if f.PersistProducts != nil {
		cfg.PersistProducts = *f.PersistProducts
	}
	if f.SequencedMutations != nil {
		cfg.SequencedMutations = *f.SequencedMutations
	}
	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolve home dir")
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
