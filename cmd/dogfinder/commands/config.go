package commands

import (
	"time"

	"dogfinder/internal/catalog"
	"dogfinder/internal/components/telemetry"
	"dogfinder/pkg/configutil"
	"dogfinder/pkg/migrations"
)

const appName = "dogfinder"

const defaultConfigPath = "<config_dir>/dogfinder.json5"

type Config struct {
	BaseUrl        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	// DetailCacheSize is the amount of dog records kept in memory, a negative
	// value disables the cache.
	DetailCacheSize int               `json:"detail_cache_size"`
	Verbose         bool              `json:"verbose"`
	Db              migrations.Config `json:"db"`
	Telemetry       telemetry.Config  `json:"telemetry"`
}

func defaultConfig() Config {
	return Config{
		BaseUrl:         catalog.DefaultBaseUrl,
		TimeoutSeconds:  30,
		DetailCacheSize: 2000,
		Db: migrations.Config{
			File: "<config_dir>/dogfinder.db",
		},
	}
}

func (c Config) timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// loadConfig reads the config file at path on top of the defaults and
// resolves every path in it.
func loadConfig(path string) (Config, error) {
	resolved, err := configutil.ResolvePath(appName, path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := configutil.ReadConfigWithDefaults(resolved, defaultConfig())
	if err != nil {
		return Config{}, err
	}
	if cfg.Db.Url == "" {
		cfg.Db.File, err = configutil.ResolvePath(appName, cfg.Db.File)
		if err != nil {
			return Config{}, err
		}
	}
	if cfg.DetailCacheSize < 0 {
		cfg.DetailCacheSize = 0
	}
	return cfg, nil
}
