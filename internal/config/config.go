// Package config loads the settings of the datatree-mapper CLI from the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"datatree-mapper/internal/build"
)

// Environment variables read by Load.
const (
	EnvSchemaDir       = "DATATREE_SCHEMA_DIR"
	EnvNamespaceFile   = "DATATREE_NAMESPACE_FILE"
	EnvMapperCacheSize = "DATATREE_MAPPER_CACHE_SIZE"
	EnvLogLevel        = "DATATREE_LOG_LEVEL"
	EnvGenPackage      = "DATATREE_GEN_PACKAGE"
	EnvGenOutputDir    = "DATATREE_GEN_OUTPUT_DIR"
)

// ErrInvalid is returned when an environment variable cannot be parsed.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	SchemaDir       string
	NamespaceFile   string
	MapperCacheSize int
	LogLevel        string
	GenPackage      string
	GenOutputDir    string
}

func Default() Config {
	return Config{
		SchemaDir:       ".",
		NamespaceFile:   "namespace.yaml",
		MapperCacheSize: build.DefaultMapperCacheSize,
		LogLevel:        "warn",
		GenPackage:      "types",
		GenOutputDir:    "./generated",
	}
}

// Load applies DATATREE_* variables over Default. Variables from a .env file
// in the working directory are loaded first; a missing file is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	return FromEnv(os.LookupEnv)
}

// FromEnv applies the variables lookup finds over Default.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	strs := map[string]*string{
		EnvSchemaDir:     &cfg.SchemaDir,
		EnvNamespaceFile: &cfg.NamespaceFile,
		EnvLogLevel:      &cfg.LogLevel,
		EnvGenPackage:    &cfg.GenPackage,
		EnvGenOutputDir:  &cfg.GenOutputDir,
	}

	for key, dst := range strs {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup(EnvMapperCacheSize); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("%w: %s=%q must be a positive integer", ErrInvalid, EnvMapperCacheSize, v)
		}

		cfg.MapperCacheSize = n
	}

	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, s)
	}

	return level, nil
}

// Logger returns a text logger writing to stderr at the configured level.
func (c Config) Logger() *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
