package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_SERVER_ADDR", ":9090")
	t.Setenv("APP_CATALOG_SOURCE", "files")
	t.Setenv("APP_CATALOG_DIR", "/srv/manifests")
	t.Setenv("APP_MATCHER_STRICT_CONSISTENCY", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, SourceFiles, cfg.Catalog.Source)
	assert.Equal(t, "/srv/manifests", cfg.Catalog.Dir)
	assert.True(t, cfg.Matcher.StrictConsistency)
	assert.Equal(t, 200*time.Millisecond, cfg.Debounce())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "files without dir", mutate: func(c *Config) { c.Catalog.Source = SourceFiles }, wantErr: true},
		{name: "unknown source", mutate: func(c *Config) { c.Catalog.Source = "s3" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			tt.mutate(&c)
			err := validate(&c)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ":8080", c.Server.Addr)
			assert.Equal(t, SourcePostgres, c.Catalog.Source)
			assert.Equal(t, 5*time.Second, c.Backoff())
			assert.Equal(t, "postgres://:@:5432/?sslmode=disable", c.DSN())
		})
	}
}
