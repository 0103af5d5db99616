package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	FileName = "config.yaml"
	dirMode  = 0700
	fileMode = 0600

	envPrefix = "CARDIORISK_"

	defaultAddress = "0.0.0.0"
	defaultPort    = 8080
)

// Config represents app config object.
type Config struct {
	Address      string `yaml:"address" json:"address"`
	Port         int    `yaml:"port" json:"port"`
	ModelPath    string `yaml:"model" json:"model"`
	MetadataPath string `yaml:"metadata" json:"metadata"`
	ModelName    string `yaml:"name" json:"name"`
	DBPath       string `yaml:"db" json:"db"`
	LogLevel     string `yaml:"log_level" json:"log_level"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Address:  defaultAddress,
		Port:     defaultPort,
		LogLevel: "info",
	}
}

// ListenAddress returns host:port, bracketing IPv6 hosts.
func (c *Config) ListenAddress() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

// Load builds the configuration from defaults, the optional YAML file at
// path, a .env file in the working directory, and then the environment.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("error unmarshalling config file %s: %w", path, err)
		}
		slog.Debug("config file loaded", "path", path)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Address, envPrefix+"ADDRESS")
	setString(&c.ModelPath, envPrefix+"MODEL")
	setString(&c.MetadataPath, envPrefix+"METADATA")
	setString(&c.ModelName, envPrefix+"NAME")
	setString(&c.DBPath, envPrefix+"DB")
	setString(&c.LogLevel, envPrefix+"LOG_LEVEL")

	for _, key := range []string{"PORT", envPrefix + "PORT"} {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			continue
		}
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 || p > 65535 {
			return fmt.Errorf("invalid port in %s: %q", key, v)
		}
		c.Port = p
	}
	return nil
}

func setString(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}

// Save writes c as YAML to path, creating the parent directory if needed.
func Save(path string, c *Config) error {
	if path == "" {
		return errors.New("config path required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return fmt.Errorf("failed to create config dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// GetOrCreateHomeDir returns the application directory under the user's
// home. The created flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("failed to get user home dir: %w", err)
	}
	slog.Debug("home dir", "path", home)

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dir)
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, fmt.Errorf("failed to create dir %s: %w", dir, err)
		}
		created = true
	}
	return dir, created, nil
}
