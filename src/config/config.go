// Package config loads engine and server settings from an optional YAML
// file (CONFIG_PATH) layered under environment variables.
package config

import (
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPServer struct {
	Port string `yaml:"port" env:"PORT" env-default:"8080"`
}

type Logging struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
	File   string `yaml:"file" env:"LOG_FILE" env-default:""`
}

type RateLimit struct {
	Disabled bool   `yaml:"disabled" env:"RATE_LIMIT_DISABLED" env-default:"false"`
	Max      int    `yaml:"max" env:"RATE_LIMIT_MAX" env-default:"100"`
	Window   string `yaml:"window" env:"RATE_LIMIT_WINDOW" env-default:"1s"`
}

type Engine struct {
	GFDEnabled        bool   `yaml:"gfd_enabled" env:"GFD_ENABLED" env-default:"true"`
	SessionCloseLocal string `yaml:"session_close_local" env:"SESSION_CLOSE_LOCAL" env-default:"16:00"`
	OrderbookMaxDepth int    `yaml:"orderbook_max_depth" env:"ORDERBOOK_MAX_DEPTH" env-default:"1000"`
}

type Config struct {
	HTTPServer      `yaml:"http_server"`
	Logging         `yaml:"logging"`
	RateLimit       `yaml:"rate_limit"`
	Engine          `yaml:"engine"`
	ShutdownTimeout string `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// MustLoad reads CONFIG_PATH if set, falling back to environment variables
// and the defaults above. It never returns a zero Config: any read error is
// fatal.
func MustLoad() *Config {
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	var err error
	if configPath != "" {
		if _, statErr := os.Stat(configPath); statErr != nil {
			log.Fatalf("config file does not exist: %s", configPath)
		}
		err = cleanenv.ReadConfig(configPath, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		log.Fatalf("unable to load config: %s", err.Error())
	}

	return &cfg
}
