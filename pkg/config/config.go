package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	yaml "gopkg.in/yaml.v3"
)

type UU struct {
	Name     string `yaml:"name,omitempty"`
	Mode     string `yaml:"mode,omitempty"`
	Backtick bool   `yaml:"backtick,omitempty"`
}

// FileMode parses Mode as an octal permission. An empty Mode yields 0.
func (u UU) FileMode() (uint32, error) {
	if u.Mode == "" {
		return 0, nil
	}
	m, err := strconv.ParseUint(u.Mode, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("uu mode %q is not an octal number", u.Mode)
	}
	return uint32(m), nil
}

type BinHex struct {
	Name    string `yaml:"name,omitempty"`
	Creator string `yaml:"creator,omitempty"`
	Type    string `yaml:"type,omitempty"`
}

type Config struct {
	Output         string   `yaml:"output,omitempty"`
	Color          *bool    `yaml:"color,omitempty"`
	DisabledCodecs []string `yaml:"disabled-codecs,omitempty"`
	UU             UU       `yaml:"uu,omitempty"`
	BinHex         BinHex   `yaml:"binhex,omitempty"`
	// configPath is the file path used for reading and writing this config.
	configPath string `yaml:"-"`
}

// Path returns the file this config is read from and written to.
func (c *Config) Path() string {
	return c.configPath
}

// ColorEnabled reports whether colored output is wanted. Unset means yes.
func (c *Config) ColorEnabled() bool {
	return c.Color == nil || *c.Color
}

func (c *Config) IsDisabled(name string) bool {
	return slices.ContainsFunc(c.DisabledCodecs, func(d string) bool {
		return strings.EqualFold(d, name)
	})
}

// SetOutput stores the default output format and writes the config. The
// change is reverted if the write fails.
func (c *Config) SetOutput(output string) error {
	old := c.Output
	c.Output = output
	if err := c.Write(); err != nil {
		c.Output = old
		return err
	}
	return nil
}

// Disable adds name to the disabled codecs and writes the config.
func (c *Config) Disable(name string) error {
	if c.IsDisabled(name) {
		return nil
	}
	old := c.DisabledCodecs
	c.DisabledCodecs = append(slices.Clip(old), name)
	if err := c.Write(); err != nil {
		c.DisabledCodecs = old
		return err
	}
	return nil
}

// Enable removes name from the disabled codecs and writes the config.
func (c *Config) Enable(name string) error {
	if !c.IsDisabled(name) {
		return fmt.Errorf("codec %v is not disabled", name)
	}
	old := c.DisabledCodecs
	c.DisabledCodecs = slices.DeleteFunc(slices.Clone(old), func(d string) bool {
		return strings.EqualFold(d, name)
	})
	if err := c.Write(); err != nil {
		c.DisabledCodecs = old
		return err
	}
	return nil
}

func (c *Config) Write() error {
	configPath := c.configPath
	if configPath == "" {
		var err error
		configPath, err = getDefaultConfigPath()
		if err != nil {
			return err
		}
	}
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(configDir, "config.*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	tmpPath := tmpFile.Name()

	encoder := yaml.NewEncoder(tmpFile)
	encoder.SetIndent(2)
	if err := encoder.Encode(c); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode config: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp config file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp config file: %w", err)
	}
	c.configPath = configPath
	return nil
}

// ReadConfig reads the config at cfgPath, or at the default location when
// cfgPath is empty. A missing default file yields an empty config; an
// explicit path must exist.
func ReadConfig(cfgPath string) (c Config, err error) {
	resolvedPath, err := resolveConfigPath(cfgPath)
	if err != nil {
		return Config{}, err
	}

	file, err := os.OpenFile(resolvedPath, os.O_RDONLY, 0644)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{configPath: resolvedPath}, nil
		}
		return Config{}, fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	c.configPath = resolvedPath
	return c, nil
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func resolveConfigPath(cfgPath string) (string, error) {
	if cfgPath == "" {
		return getDefaultConfigPath()
	}
	expanded, err := homedir.Expand(cfgPath)
	if err != nil {
		return "", fmt.Errorf("expand config path: %w", err)
	}
	if !fileExists(expanded) {
		return "", fmt.Errorf("config file %q does not exist", cfgPath)
	}
	return expanded, nil
}

func getDefaultConfigPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}

	return filepath.Join(home, ".trydecode", "config"), nil
}
