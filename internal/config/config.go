package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Map         MapConfig
	Features    FeaturesConfig
	Route       RouteConfig
	Log         LogConfig
	Metrics     MetricsConfig
	Geolocation GeolocationConfig
}

// MapConfig holds the starting viewport and gesture settings.
type MapConfig struct {
	CenterLng        float64       `mapstructure:"center_lng"`
	CenterLat        float64       `mapstructure:"center_lat"`
	Zoom             float64       `mapstructure:"zoom"`
	SettleDelay      time.Duration `mapstructure:"settle_delay"`
	ClickTolerancePx int           `mapstructure:"click_tolerance_px"`
}

// FeaturesConfig locates the feature document fetched at startup.
type FeaturesConfig struct {
	URL     string
	Timeout time.Duration
}

// RouteConfig holds the URL the explore screen opens at.
type RouteConfig struct {
	Initial string
}

// LogConfig holds slog settings. The TUI owns the terminal, so logs go to Path.
type LogConfig struct {
	Level  string
	Format string
	Path   string
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string
}

// GeolocationConfig seeds a fixed device position.
type GeolocationConfig struct {
	Enabled bool
	Lng     float64
	Lat     float64
}

// Load reads configuration from file and env. Env var overrides use prefix JASKMAP_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("map.center_lng", 144.9631)
	v.SetDefault("map.center_lat", -37.8136)
	v.SetDefault("map.zoom", 12.0)
	v.SetDefault("map.settle_delay", 300*time.Millisecond)
	v.SetDefault("map.click_tolerance_px", 1)
	v.SetDefault("features.url", "assets/data/features.geojson")
	v.SetDefault("features.timeout", 10*time.Second)
	v.SetDefault("route.initial", "/explore")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.path", filepath.Join(os.TempDir(), "jaskmap.log"))
	v.SetDefault("metrics.addr", "")
	v.SetDefault("geolocation.enabled", false)
	v.SetDefault("geolocation.lng", 0.0)
	v.SetDefault("geolocation.lat", 0.0)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("JASKMAP_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "jaskmap"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("JASKMAP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := os.Getenv("JASKMAP_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "jaskmap", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("map.center_lng", cfg.Map.CenterLng)
	v.Set("map.center_lat", cfg.Map.CenterLat)
	v.Set("map.zoom", cfg.Map.Zoom)
	v.Set("map.settle_delay", cfg.Map.SettleDelay.String())
	v.Set("map.click_tolerance_px", cfg.Map.ClickTolerancePx)
	v.Set("features.url", cfg.Features.URL)
	v.Set("features.timeout", cfg.Features.Timeout.String())
	v.Set("route.initial", cfg.Route.Initial)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("log.path", cfg.Log.Path)
	v.Set("metrics.addr", cfg.Metrics.Addr)
	v.Set("geolocation.enabled", cfg.Geolocation.Enabled)
	v.Set("geolocation.lng", cfg.Geolocation.Lng)
	v.Set("geolocation.lat", cfg.Geolocation.Lat)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
