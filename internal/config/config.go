// Package config loads pdf-splitter settings. Values are resolved once at
// startup and passed to the components that need them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/Epistemic-Technology/pdf-splitter/internal/logger"
)

const (
	DefaultInboxContainer       = "samples-workitems"
	DefaultDestinationContainer = "samples-workitems-pages"
	DefaultAddr                 = ":8080"
)

// Config is the complete runtime configuration
type Config struct {
	Storage StorageConfig    `toml:"storage"`
	Server  ServerConfig     `toml:"server"`
	Log     logger.LogConfig `toml:"log"`
}

// StorageConfig configures the object store and the event-triggered splitter
type StorageConfig struct {
	ConnectionString string `toml:"connection_string"`
	// InboxContainer is watched for uploads
	InboxContainer string `toml:"inbox_container"`
	// DestinationContainer receives the pages of uploads
	DestinationContainer string `toml:"destination_container"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Storage: StorageConfig{
			InboxContainer:       DefaultInboxContainer,
			DestinationContainer: DefaultDestinationContainer,
		},
		Server: ServerConfig{Addr: DefaultAddr},
	}
}

// DefaultPath returns ~/.pdf-splitter/config.toml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".pdf-splitter", "config.toml"), nil
}

// Load builds the configuration from defaults, the TOML file at path and the
// environment, in increasing precedence. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Storage.ConnectionString = getEnvString("AzureWebJobsStorage",
		getEnvString("AZURE_STORAGE_CONNECTION_STRING", c.Storage.ConnectionString))
	c.Storage.InboxContainer = getEnvString("PDFSPLIT_INBOX_CONTAINER", c.Storage.InboxContainer)
	c.Storage.DestinationContainer = getEnvString("PDFSPLIT_DESTINATION_CONTAINER", c.Storage.DestinationContainer)

	if port := os.Getenv("FUNCTIONS_CUSTOMHANDLER_PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	c.Server.Addr = getEnvString("PDFSPLIT_ADDR", c.Server.Addr)
}

// Validate checks the event-triggered splitter settings. Writing pages into
// the inbox would retrigger the splitter on its own output.
func (c Config) Validate() error {
	if c.Storage.InboxContainer == "" {
		return errors.New("storage.inbox_container must be set")
	}
	if c.Storage.DestinationContainer == "" {
		return errors.New("storage.destination_container must be set")
	}
	if c.Storage.InboxContainer == c.Storage.DestinationContainer {
		return fmt.Errorf("storage.destination_container must differ from storage.inbox_container (%s)", c.Storage.InboxContainer)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr must be set")
	}
	return nil
}

// StorageConfigured reports whether a connection string is available
func (c Config) StorageConfigured() bool {
	return c.Storage.ConnectionString != ""
}

func getEnvString(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
