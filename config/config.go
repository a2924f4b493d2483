package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Reference ReferenceConfig `mapstructure:"reference"`
	Security  SecurityConfig  `mapstructure:"security"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Debug    bool   `mapstructure:"debug"`
	AdminKey string `mapstructure:"admin_key"`
}

type DatabaseConfig struct {
	Mode            string        `mapstructure:"mode"` // sqlite | mysql | postgres
	SQLitePath      string        `mapstructure:"sqlite_path"`
	MySQLDSN        string        `mapstructure:"mysql_dsn"`
	PostgresDSN     string        `mapstructure:"postgres_dsn"`
	PoolMaxOpen     int           `mapstructure:"pool_max_open"`
	PoolMaxIdle     int           `mapstructure:"pool_max_idle"`
	PoolMaxLifetime time.Duration `mapstructure:"pool_max_lifetime"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
}

type ReferenceConfig struct {
	DataPath string `mapstructure:"data_path"` // directory holding rarities.json and types.json
}

type SecurityConfig struct {
	// PassKey is the shared secret every API caller must present, either
	// directly or when requesting a service token.
	PassKey        string        `mapstructure:"pass_key"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	// AdminAllowCIDR restricts admin endpoints to the listed networks.
	// Empty means no IP restriction (the admin key still applies).
	AdminAllowCIDR []string `mapstructure:"admin_allow_cidr"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/economy.db")
	v.SetDefault("database.pool_max_open", 50)
	v.SetDefault("database.pool_max_idle", 10)
	v.SetDefault("database.pool_max_lifetime", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("reference.data_path", "./data")
	v.SetDefault("security.token_ttl", "24h")
	v.SetDefault("security.rate_limit_rps", 100)
	v.SetDefault("security.rate_limit_burst", 200)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
