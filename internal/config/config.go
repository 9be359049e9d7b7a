// Package config loads the optional lockappend configuration file. The file
// holds KEY=value lines; blank lines and lines starting with '#' are skipped.
// A missing file is not an error, every key falls back to Defaults.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultFileName is the config file looked up in the user's home directory
const DefaultFileName = ".lockappend.conf"

// Config holds key-value settings read from a config file
type Config struct {
	filePath string
	data     map[string]string
}

// New creates a new Config instance. An empty path selects
// ~/.lockappend.conf.
func New(filePath string) *Config {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		filePath = filepath.Join(home, DefaultFileName)
	}

	return &Config{
		filePath: filePath,
		data:     make(map[string]string),
	}
}

// Load reads configuration from file
func (c *Config) Load() error {
	// If file doesn't exist, that's okay - defaults apply
	if _, err := os.Stat(c.filePath); os.IsNotExist(err) {
		return nil
	}

	file, err := os.Open(c.filePath)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key=value
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			c.data[key] = value
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// Get retrieves a configuration value
func (c *Config) Get(key string) (string, error) {
	value, exists := c.data[key]
	if !exists {
		return "", fmt.Errorf("config key not found: %s", key)
	}
	return value, nil
}

// GetOrDefault retrieves a value or returns default if not found
// First checks the config, then the Defaults table, then the provided fallback
func (c *Config) GetOrDefault(key, defaultValue string) string {
	if value, exists := c.data[key]; exists {
		return value
	}
	if tableDefault, exists := Defaults[key]; exists {
		return tableDefault
	}
	return defaultValue
}

// GetBool parses a boolean value, falling back to the Defaults table
func (c *Config) GetBool(key string) (bool, error) {
	raw := c.GetOrDefault(key, "false")
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid boolean for %s: %q", key, raw)
	}
	return value, nil
}

// FilePath returns the configuration file path
func (c *Config) FilePath() string {
	return c.filePath
}
