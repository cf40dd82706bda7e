package bootstrap

import (
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort     string `mapstructure:"SERVER_PORT"`
	MongoURI       string `mapstructure:"MONGO_URI"`
	MongoDatabase  string `mapstructure:"MONGO_DATABASE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	KatagoAPIURL   string `mapstructure:"KATAGO_API_URL"`
	KatagoAPIKey   string `mapstructure:"KATAGO_API_KEY"`
	KatagoTimeout  int    `mapstructure:"KATAGO_TIMEOUT_SECONDS"`
	IsLocalCors    bool   `mapstructure:"LOCAL_CORS"`
	PageLimitGames int    `mapstructure:"PAGE_LIMIT_GAMES"`
}

func Setup(cfgPath string) (*Config, error) {
	viper.SetConfigFile(cfgPath)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = "webgo"
	}
	if cfg.KatagoTimeout <= 0 {
		cfg.KatagoTimeout = 10
	}
	if cfg.PageLimitGames <= 0 {
		cfg.PageLimitGames = 50
	}
}
