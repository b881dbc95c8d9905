package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Ensemble   EnsembleConfig
	Transition TransitionConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type EnsembleConfig struct {
	Strategy        string
	AutosaveMinutes int
	Seed            int64 // 0 means time-seeded
}

type TransitionConfig struct {
	Duration       float64
	Stagger        float64
	DurationSpread float64
	Glissando      bool
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "3000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("ensemble.strategy", "round-robin")
	viper.SetDefault("ensemble.autosave_minutes", 5)
	viper.SetDefault("ensemble.seed", 0)
	viper.SetDefault("transition.duration", 10.0)
	viper.SetDefault("transition.stagger", 0.0)
	viper.SetDefault("transition.duration_spread", 0.0)
	viper.SetDefault("transition.glissando", true)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetString("server.port"),
			Env:  viper.GetString("server.env"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("jwt.secret"),
		},
		Ensemble: EnsembleConfig{
			Strategy:        viper.GetString("ensemble.strategy"),
			AutosaveMinutes: viper.GetInt("ensemble.autosave_minutes"),
			Seed:            viper.GetInt64("ensemble.seed"),
		},
		Transition: TransitionConfig{
			Duration:       viper.GetFloat64("transition.duration"),
			Stagger:        viper.GetFloat64("transition.stagger"),
			DurationSpread: viper.GetFloat64("transition.duration_spread"),
			Glissando:      viper.GetBool("transition.glissando"),
		},
	}

	return cfg, nil
}
