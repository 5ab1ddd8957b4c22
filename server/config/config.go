package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/pelletier/go-toml"
)

const DefaultListenAddress = "0.0.0.0:8545"

var (
	ErrInvalidListenAddress = errors.New("invalid listen address")
	ErrInvalidSource        = errors.New("invalid bureau source")
	ErrInvalidUnitDivisor   = errors.New("invalid unit divisor")
)

var listenAddressRegex = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}:\d+$`)

// Source is a single configured bureau document source
type Source struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

// Config defines the base-level server configuration
type Config struct {
	// The associated CORS config, if any
	CORSConfig *CORS `toml:"cors_config"`

	// The bureau document sources to scrape. When empty, the built-in
	// default source list is used
	Sources []Source `toml:"sources"`

	// Smallest-unit correction table: bureaux listed here publish
	// prices in the currency's smallest unit and have their scraped
	// values divided by the given divisor
	UnitDivisors map[string]int64 `toml:"unit_divisors"`

	// The geocoding endpoint used to resolve bureau addresses
	GeocoderURL string `toml:"geocoder_url"`

	// The address at which the server will be served.
	// Format should be: <IP>:<PORT>
	ListenAddress string `toml:"listen_address"`
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		ListenAddress: DefaultListenAddress,
		CORSConfig:    DefaultCORSConfig(),
		UnitDivisors:  make(map[string]int64),
	}
}

// ValidateConfig validates the server configuration
func ValidateConfig(config *Config) error {
	// Validate the listen address
	if !listenAddressRegex.MatchString(config.ListenAddress) {
		return ErrInvalidListenAddress
	}

	// Validate the configured sources
	for _, source := range config.Sources {
		if source.Name == "" || source.URL == "" {
			return fmt.Errorf(
				"%w: name=%q, url=%q",
				ErrInvalidSource,
				source.Name,
				source.URL,
			)
		}
	}

	// Validate the unit correction table
	for bureau, divisor := range config.UnitDivisors {
		if divisor <= 0 {
			return fmt.Errorf(
				"%w: bureau=%q, divisor=%d",
				ErrInvalidUnitDivisor,
				bureau,
				divisor,
			)
		}
	}

	return nil
}

// Read reads the configuration from the given path
func Read(path string) (*Config, error) {
	// Read the config file
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Parse it
	var cfg Config

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
