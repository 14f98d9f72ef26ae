package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("JASKMAP_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 144.9631, cfg.Map.CenterLng)
	require.Equal(t, -37.8136, cfg.Map.CenterLat)
	require.Equal(t, 12.0, cfg.Map.Zoom)
	require.Equal(t, 300*time.Millisecond, cfg.Map.SettleDelay)
	require.Equal(t, 1, cfg.Map.ClickTolerancePx)
	require.Equal(t, "/explore", cfg.Route.Initial)
	require.Equal(t, 10*time.Second, cfg.Features.Timeout)
	require.False(t, cfg.Geolocation.Enabled)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[map]
zoom = 9.5
settle_delay = "1s"

[features]
url = "https://example.com/features.geojson"

[geolocation]
enabled = true
lng = 10.5
lat = 20.25
`), 0o600))
	t.Setenv("JASKMAP_CONFIG", path)
	t.Setenv("JASKMAP_ROUTE_INITIAL", "/explore;x=1;y=2;z=3")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9.5, cfg.Map.Zoom)
	require.Equal(t, time.Second, cfg.Map.SettleDelay)
	require.Equal(t, "https://example.com/features.geojson", cfg.Features.URL)
	require.Equal(t, "/explore;x=1;y=2;z=3", cfg.Route.Initial)
	require.True(t, cfg.Geolocation.Enabled)
	require.Equal(t, 20.25, cfg.Geolocation.Lat)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	t.Setenv("JASKMAP_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	_, err := Load()
	require.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	t.Setenv("JASKMAP_CONFIG", path)

	cfg := Config{
		Map:      MapConfig{CenterLng: 1, CenterLat: 2, Zoom: 3, SettleDelay: 250 * time.Millisecond, ClickTolerancePx: 2},
		Features: FeaturesConfig{URL: "features.geojson", Timeout: 5 * time.Second},
		Route:    RouteConfig{Initial: "/explore"},
		Log:      LogConfig{Level: "debug", Format: "json", Path: "jaskmap.log"},
	}
	require.NoError(t, Save(cfg))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, cfg.Map, got.Map)
	require.Equal(t, cfg.Features, got.Features)
	require.Equal(t, cfg.Log, got.Log)
}
