package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis      Redis  `yaml:"redis"`
	Engine     Engine `yaml:"engine"`
	Oracle     Oracle `yaml:"oracle"`
}

type Redis struct {
	Host    string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	GameTTL time.Duration `yaml:"game-ttl" env:"REDIS_GAME_TTL" env-default:"24h"`
}

type Engine struct {
	DefaultDifficulty string `yaml:"default-difficulty" env:"ENGINE_DEFAULT_DIFFICULTY" env-default:"hard"`
	// Seed - seed of the random strategies, 0 means seeded from the clock.
	Seed int64 `yaml:"seed" env:"ENGINE_SEED" env-default:"0"`
}

// Oracle - external move suggester, disabled when URL is empty.
type Oracle struct {
	URL     string        `yaml:"url" env:"ORACLE_URL" env-default:""`
	Timeout time.Duration `yaml:"timeout" env:"ORACLE_TIMEOUT" env-default:"2s"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that *Oracle) IsEnabled() bool {
	return that.URL != ""
}
