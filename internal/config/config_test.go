package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datatree-mapper/internal/config"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		want    func(*config.Config)
		wantErr bool
	}{
		{
			name: "defaults",
			want: func(*config.Config) {},
		},
		{
			name: "overrides",
			vars: map[string]string{
				config.EnvSchemaDir:       "schemas",
				config.EnvNamespaceFile:   " core.namespace.yaml ",
				config.EnvMapperCacheSize: "16",
				config.EnvLogLevel:        "DEBUG",
				config.EnvGenPackage:      "model",
				config.EnvGenOutputDir:    "out",
			},
			want: func(c *config.Config) {
				c.SchemaDir = "schemas"
				c.NamespaceFile = "core.namespace.yaml"
				c.MapperCacheSize = 16
				c.LogLevel = "DEBUG"
				c.GenPackage = "model"
				c.GenOutputDir = "out"
			},
		},
		{
			name: "blank values keep defaults",
			vars: map[string]string{config.EnvSchemaDir: "  ", config.EnvMapperCacheSize: ""},
			want: func(*config.Config) {},
		},
		{
			name:    "invalid cache size",
			vars:    map[string]string{config.EnvMapperCacheSize: "many"},
			wantErr: true,
		},
		{
			name:    "non-positive cache size",
			vars:    map[string]string{config.EnvMapperCacheSize: "0"},
			wantErr: true,
		},
		{
			name:    "invalid log level",
			vars:    map[string]string{config.EnvLogLevel: "loud"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := config.FromEnv(env(tt.vars))
			if tt.wantErr {
				require.ErrorIs(t, err, config.ErrInvalid)
				return
			}

			require.NoError(t, err)

			want := config.Default()
			tt.want(&want)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DATATREE_GEN_PACKAGE=fromdotenv\n"), 0o600))

	t.Chdir(dir)
	t.Setenv(config.EnvGenOutputDir, "fromenv")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "fromdotenv", cfg.GenPackage)
	assert.Equal(t, "fromenv", cfg.GenOutputDir)

	// godotenv.Load sets the process environment; drop it for later tests
	require.NoError(t, os.Unsetenv(config.EnvGenPackage))
}

func TestParseLevel(t *testing.T) {
	level, err := config.ParseLevel("info")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)

	assert.NotNil(t, config.Config{LogLevel: "bogus"}.Logger())
}
