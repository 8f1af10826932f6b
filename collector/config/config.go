// Package config loads the collector configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the collector configuration. Every field can also be set with
// a command line flag, which takes precedence over the file.
type Config struct {
	// ListenAddr is the address the intake endpoints listen on.
	ListenAddr string `toml:"listen_addr"`
	// DataDir is the directory archives are written to.
	DataDir string `toml:"data_dir"`
	// Compress enables gzip compression of archives.
	Compress bool `toml:"compress"`
	// CertFile and KeyFile enable TLS when both are set.
	CertFile string `toml:"cert_file"`
	KeyFile  string `toml:"key_file"`
	// Debug lowers the log level to debug.
	Debug bool `toml:"debug"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ListenAddr: ":4433",
		DataDir:    "/var/spool/qlog",
		Compress:   true,
	}
}

// Load reads a TOML configuration file, filling unset fields with
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the collector cannot start with.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("config: listen_addr must not be empty")
	}
	if c.DataDir == "" {
		return fmt.Errorf("config: data_dir must not be empty")
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return fmt.Errorf("config: cert_file and key_file must be set together")
	}
	return nil
}
