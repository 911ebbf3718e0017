package config

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

type StorageConfig struct {
	Driver string
	Path   string
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type LibraryConfig struct {
	Seed        bool
	OverdueDays int
}

type AppConfig struct {
	Environment string
	Storage     StorageConfig
	Redis       RedisConfig
	Library     LibraryConfig
}

// Load resolves the configuration from defaults, library.yaml (when present)
// and LIBRARY_* environment variables. If v is nil a fresh viper instance is
// used; callers pass their own to layer bound CLI flags on top.
func Load(v *viper.Viper, configFile string) (*AppConfig, error) {
	if v == nil {
		v = viper.New()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("library")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("LIBRARY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.Storage.Driver {
	case DriverSQLite, DriverRedis:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Library.OverdueDays < 0 {
		return fmt.Errorf("library.overduedays must be >= 0, got %d", c.Library.OverdueDays)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.path", "library.db")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.keyprefix", "library:")

	v.SetDefault("library.seed", true)
	v.SetDefault("library.overduedays", 14)
}
