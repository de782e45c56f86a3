package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Name string `mapstructure:"name"`
		Port string `mapstructure:"port"`
	} `mapstructure:"app"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	Postgres struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		DBName   string `mapstructure:"dbname"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"postgres"`

	Exchange struct {
		BaseURL         string        `mapstructure:"base_url"`
		Timeout         time.Duration `mapstructure:"timeout"`
		CacheTTL        time.Duration `mapstructure:"cache_ttl"`
		SweepSchedule   string        `mapstructure:"sweep_schedule"`
		RefreshSchedule string        `mapstructure:"refresh_schedule"`
	} `mapstructure:"exchange"`

	Auth struct {
		URL     string        `mapstructure:"url"`
		AnonKey string        `mapstructure:"anon_key"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"auth"`

	Cors struct {
		AllowHeaders []string `mapstructure:"allow_headers"`
	} `mapstructure:"cors"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "subpage-service")
	v.SetDefault("app.port", "8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.dbname", "subpage")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.sslmode", "disable")

	v.SetDefault("exchange.base_url", "https://api.exchangerate-api.com/v4")
	v.SetDefault("exchange.timeout", 5*time.Second)
	v.SetDefault("exchange.cache_ttl", 5*time.Minute)
	v.SetDefault("exchange.sweep_schedule", "@every 1m")
	v.SetDefault("exchange.refresh_schedule", "@every 30m")

	v.SetDefault("auth.url", "")
	v.SetDefault("auth.anon_key", "")
	v.SetDefault("auth.timeout", 10*time.Second)

	v.SetDefault("cors.allow_headers", []string{"authorization", "x-client-info", "apikey", "content-type"})
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")
	v.AddConfigPath("../../config")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// env-only deployments run without a config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
