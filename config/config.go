// Package config defines the runtime configuration of the duel server
// and loads it from a YAML file with sane defaults.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// Config holds every tuneable of one server process.
type Config struct {
	// ListenAddr is the interface address to bind; empty or 0.0.0.0
	// means all interfaces.
	ListenAddr string `yaml:"ListenAddr"`

	// Port is the TCP port to listen on.
	Port int `yaml:"Port"`

	// MaxConnections caps concurrently open client connections; 0 means
	// no cap. Connections over the cap are accepted and closed at once.
	MaxConnections int `yaml:"MaxConnections"`

	// IdleTimeoutSec disconnects a client after this many seconds
	// without readable data (keep-alives count as data).
	IdleTimeoutSec uint32 `yaml:"IdleTimeoutSec"`

	// MaxLineBytes bounds a single protocol line; longer lines tear the
	// connection down as a transport failure.
	MaxLineBytes int `yaml:"MaxLineBytes"`

	// ReservationTTLSec expires reconnection reservations after this
	// many seconds; 0 keeps them until the session dies.
	ReservationTTLSec uint32 `yaml:"ReservationTTLSec"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"LogLevel"`

	// LogFile is an optional path for a JSON log sink in addition to
	// stderr.
	LogFile string `yaml:"LogFile"`
}

// Default returns the configuration used when no file or flag overrides
// a value.
func Default() Config {
	return Config{
		ListenAddr:     "0.0.0.0",
		Port:           1111,
		MaxConnections: 0,
		IdleTimeoutSec: 30,
		MaxLineBytes:   256,
		LogLevel:       "info",
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults unchanged.
//
// Returns:
//   - The merged configuration
//   - An error if the file cannot be read, parsed, or validated
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks ranges and address syntax.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.MaxConnections < 0 {
		return fmt.Errorf("max connections must not be negative")
	}
	if c.MaxLineBytes < 8 {
		return fmt.Errorf("max line bytes %d too small", c.MaxLineBytes)
	}
	if c.ListenAddr != "" && net.ParseIP(c.ListenAddr) == nil {
		return fmt.Errorf("invalid listen address %q", c.ListenAddr)
	}

	return nil
}

// Addr returns the host:port string passed to net.Listen.
func (c Config) Addr() string {
	return net.JoinHostPort(c.ListenAddr, strconv.Itoa(c.Port))
}

// IdleTimeout returns the idle eviction window as a duration.
func (c Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSec) * time.Second
}

// ReservationTTL returns the reservation expiry as a duration; zero
// means no expiry.
func (c Config) ReservationTTL() time.Duration {
	return time.Duration(c.ReservationTTLSec) * time.Second
}
