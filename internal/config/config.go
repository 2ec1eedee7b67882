package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	MarketDB  MarketDBConfig  `mapstructure:"market_db"`
	Cron      CronConfig      `mapstructure:"cron"`
	Targets   TargetsConfig   `mapstructure:"targets"`
	Valuation ValuationConfig `mapstructure:"valuation"`
	Auth      AuthConfig      `mapstructure:"auth"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

// DBConfig describes the business store (insights, valuation methods, snapshots,
// user tags and watchlists).
type DBConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

// MarketDBConfig describes the market reference store. An empty DSN reuses the
// business connection.
type MarketDBConfig struct {
	DBConfig    `mapstructure:",squash"`
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

type CronConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	TargetRefresh string `mapstructure:"target_refresh"`

	// ValuationSnapshot schedules SnapshotAll for the current day. Empty disables it.
	ValuationSnapshot string `mapstructure:"valuation_snapshot"`
}

type TargetsConfig struct {
	PreviewLimit       int `mapstructure:"preview_limit"`
	MaxPreviewLimit    int `mapstructure:"max_preview_limit"`
	RefreshConcurrency int `mapstructure:"refresh_concurrency"`
}

type ValuationConfig struct {
	PriceLookback    int  `mapstructure:"price_lookback"`
	SeedBuiltins     bool `mapstructure:"seed_builtins"`
	BatchConcurrency int  `mapstructure:"batch_concurrency"`
}

type AuthConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("IV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	setDefaults(v)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")

	// AutomaticEnv only resolves keys viper already knows about, so every
	// market_db key needs a default even when empty.
	v.SetDefault("market_db.driver", "postgres")
	v.SetDefault("market_db.dsn", "")
	v.SetDefault("market_db.max_open_conns", 10)
	v.SetDefault("market_db.max_idle_conns", 2)
	v.SetDefault("market_db.conn_max_lifetime", "30m")
	v.SetDefault("market_db.conn_max_idle_time", "5m")
	v.SetDefault("market_db.timezone", "UTC")
	v.SetDefault("market_db.auto_migrate", false)

	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.target_refresh", "@every 15m")
	v.SetDefault("cron.valuation_snapshot", "")

	v.SetDefault("targets.preview_limit", 200)
	v.SetDefault("targets.max_preview_limit", 5000)
	v.SetDefault("targets.refresh_concurrency", 4)

	v.SetDefault("valuation.price_lookback", 64)
	v.SetDefault("valuation.seed_builtins", true)
	v.SetDefault("valuation.batch_concurrency", 4)

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "insightval")
}
