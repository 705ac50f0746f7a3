package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// MapProviderStatic fetches a pre-rendered tile from the Mapbox Static
// Images API; MapProviderScreenshot renders a Leaflet page in headless
// Chrome and captures it. The strategy is fixed at deployment time.
const (
	MapProviderStatic     = "static"
	MapProviderScreenshot = "screenshot"
)

// Config holds all service settings. Credentials are resolved separately
// through the Registry so fixture values can be injected in tests.
type Config struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	MapProvider    string        `mapstructure:"map_provider"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	CaptureTimeout time.Duration `mapstructure:"capture_timeout"`
	SettleDelay    time.Duration `mapstructure:"settle_delay"`
}

// Load reads the optional config file at path and applies defaults. An
// empty path loads defaults only.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("addr", ":8080")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("map_provider", MapProviderStatic)
	v.SetDefault("request_timeout", "10s")
	v.SetDefault("capture_timeout", "30s")
	v.SetDefault("settle_delay", "3s")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := ValidateMapProvider(cfg.MapProvider); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ValidateMapProvider rejects map strategies other than the two implemented.
func ValidateMapProvider(provider string) error {
	if provider != MapProviderStatic && provider != MapProviderScreenshot {
		return fmt.Errorf("unknown map_provider %q", provider)
	}
	return nil
}
