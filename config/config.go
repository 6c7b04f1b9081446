// Package config reads server and client settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/joeshaw/envdecode"
)

// Config holds every setting the war command understands
type Config struct {
	Host        string        `env:"WAR_HOST"`
	Port        int           `env:"WAR_PORT"`
	HTTPAddr    string        `env:"WAR_HTTP_ADDR"`
	IOTimeout   time.Duration `env:"WAR_IO_TIMEOUT"`
	Concurrency int           `env:"WAR_CONCURRENCY"`
	LogLevel    string        `env:"WAR_LOG_LEVEL"`
}

// Default is the configuration used when nothing is set
func Default() Config {
	return Config{
		Host:        "127.0.0.1",
		Port:        4444,
		IOTimeout:   30 * time.Second,
		Concurrency: 1000,
		LogLevel:    "info",
	}
}

// Load starts from Default and overrides anything set in the environment.
// A variable that is set but does not parse is an error.
func Load() (Config, error) {
	cfg := Default()
	err := envdecode.StrictDecode(&cfg)
	if err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("could not read configuration: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.IOTimeout < 0 {
		return fmt.Errorf("negative io timeout %s", c.IOTimeout)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}

// Addr is the host:port the game server listens on
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
