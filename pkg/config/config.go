/*
Package config manages TOML config for wordrank.
*/
package config

import (
	"math"
	"os"
	"path/filepath"

	"github.com/bastiangx/wordrank/internal/utils"
	"github.com/charmbracelet/log"
)

const configFileName = "config.toml"

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Dict   DictConfig   `toml:"dict"`
	Fuzzy  FuzzyConfig  `toml:"fuzzy"`
	CLI    CliConfig    `toml:"cli"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit     int  `toml:"max_limit"`
	DefaultLimit int  `toml:"default_limit"`
	MaxPrefix    int  `toml:"max_prefix"`
	EnableFilter bool `toml:"enable_filter"`
	ReloadEvery  int  `toml:"reload_every"`
}

// DictConfig holds corpus options.
type DictConfig struct {
	Path       string `toml:"path"`
	MaxEntries int    `toml:"max_entries"`
}

// FuzzyConfig controls the edit-distance fallback.
type FuzzyConfig struct {
	WidthFactor float64 `toml:"width_factor"`
	Exact       bool    `toml:"exact"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit    int  `toml:"default_limit"`
	DefaultMaxLen   int  `toml:"default_max_len"`
	DefaultNoFilter bool `toml:"default_no_filter"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxLimit:     64,
			DefaultLimit: 10,
			MaxPrefix:    60,
			EnableFilter: false,
			ReloadEvery:  100,
		},
		Dict: DictConfig{
			Path:       "corpus.txt",
			MaxEntries: 10_000_000,
		},
		Fuzzy: FuzzyConfig{
			WidthFactor: 0.2,
			Exact:       false,
		},
		CLI: CliConfig{
			DefaultLimit:    10,
			DefaultMaxLen:   60,
			DefaultNoFilter: true,
		},
	}
}

// GetConfigDir returns the config directory with fallback priority:
// 1. platform config dir (XDG on linux)
// 2. ~/.wordrank, tmp, executable dir
// 3. user config dir from the stdlib when the resolver cannot start
func GetConfigDir() (string, error) {
	return configDir(resolveConfigPath)
}

func resolveConfigPath() (string, error) {
	resolver, err := utils.NewPathResolver()
	if err != nil {
		return "", err
	}
	return resolver.GetConfigPath(configFileName)
}

func configDir(resolve func() (string, error)) (string, error) {
	path, err := resolve()
	if err == nil {
		return filepath.Dir(path), nil
	}
	log.Debugf("Path resolver unavailable: %v", err)

	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "wordrank")
	if result := utils.CheckDirStatus(dir); !result.Writable {
		if result.Error != nil {
			return "", result.Error
		}
		log.Warnf("Config directory %s is not writable", dir)
	}
	return dir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFileName), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/wordrank/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. Values that fail to decode keep
// their defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.sanitize()
	return config, nil
}

// tryPartialParse keeps every well-typed key of a file that failed strict
// decoding.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if dictSection, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		extractDictConfig(dictSection, &config.Dict)
	}
	if fuzzySection, ok := utils.ExtractSection(tempConfig, "fuzzy"); ok {
		extractFuzzyConfig(fuzzySection, &config.Fuzzy)
	}
	if cliSection, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(cliSection, &config.CLI)
	}
	config.sanitize()
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		server.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "max_prefix"); ok {
		server.MaxPrefix = val
	}
	if val, ok := utils.ExtractBool(data, "enable_filter"); ok {
		server.EnableFilter = val
	}
	if val, ok := utils.ExtractInt64(data, "reload_every"); ok {
		server.ReloadEvery = val
	}
}

func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		dict.Path = val
	}
	if val, ok := utils.ExtractInt64(data, "max_entries"); ok {
		dict.MaxEntries = val
	}
}

func extractFuzzyConfig(data map[string]any, fuzzy *FuzzyConfig) {
	if val, ok := utils.ExtractFloat64(data, "width_factor"); ok {
		fuzzy.WidthFactor = val
	}
	if val, ok := utils.ExtractBool(data, "exact"); ok {
		fuzzy.Exact = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "default_max_len"); ok {
		cli.DefaultMaxLen = val
	}
	if val, ok := utils.ExtractBool(data, "default_no_filter"); ok {
		cli.DefaultNoFilter = val
	}
}

// sanitize replaces out-of-range values with defaults.
func (c *Config) sanitize() {
	def := DefaultConfig()
	if c.Server.MaxLimit < 1 {
		log.Warnf("server.max_limit %d is invalid, using %d", c.Server.MaxLimit, def.Server.MaxLimit)
		c.Server.MaxLimit = def.Server.MaxLimit
	}
	if c.Server.DefaultLimit < 1 {
		c.Server.DefaultLimit = def.Server.DefaultLimit
	}
	if c.Server.DefaultLimit > c.Server.MaxLimit {
		c.Server.DefaultLimit = c.Server.MaxLimit
	}
	if c.Server.MaxPrefix < 1 {
		c.Server.MaxPrefix = def.Server.MaxPrefix
	}
	if c.Server.ReloadEvery < 0 {
		c.Server.ReloadEvery = 0
	}
	if c.Dict.MaxEntries < 1 {
		c.Dict.MaxEntries = def.Dict.MaxEntries
	}
	if w := c.Fuzzy.WidthFactor; w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		log.Warnf("fuzzy.width_factor %v is invalid, using %v", w, def.Fuzzy.WidthFactor)
		c.Fuzzy.WidthFactor = def.Fuzzy.WidthFactor
	}
	if c.CLI.DefaultLimit < 1 {
		c.CLI.DefaultLimit = def.CLI.DefaultLimit
	}
	if c.CLI.DefaultMaxLen < 1 {
		c.CLI.DefaultMaxLen = def.CLI.DefaultMaxLen
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		return "builtin defaults"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
