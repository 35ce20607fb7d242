package config

import (
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

const AppName = "dexls"

// YamlConfigPath is the default config location, XDG style.
var YamlConfigPath = filepath.Join(getXDGConfigPath(runtime.GOOS), "config.yml")

var ErrNotFoundConfig = xerrors.New("config file not found")

// Config is the server configuration. Everything is optional; a missing
// config file means default behavior with an empty catalog until the
// editor pushes one through workspace/didChangeConfiguration.
type Config struct {
	// Catalog is a YAML table catalog loaded at startup.
	Catalog string `json:"catalog" yaml:"catalog"`
	// Snapshot is an offline sqlite catalog export, used when no YAML
	// catalog is given.
	Snapshot string `json:"snapshot" yaml:"snapshot"`
	// LintDebounceMs overrides the background lint debounce delay.
	LintDebounceMs int `json:"lintDebounceMs" yaml:"lintDebounceMs"`
	// DisabledRules lists lint rule ids to skip in both passes.
	DisabledRules []string `json:"disabledRules" yaml:"disabledRules"`
	// MaxSuggestions caps completion results below the built-in limit.
	MaxSuggestions int `json:"maxSuggestions" yaml:"maxSuggestions"`
	// LogFile receives server logs instead of stderr.
	LogFile string `json:"logFile" yaml:"logFile"`
}

func newConfig() *Config {
	return &Config{}
}

// GetDefaultConfig loads the config from the default path.
func GetDefaultConfig() (*Config, error) {
	cfg := newConfig()
	if !IsFileExist(YamlConfigPath) {
		return nil, ErrNotFoundConfig
	}
	if err := cfg.Load(YamlConfigPath); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetConfig loads the config from an explicit path.
func GetConfig(fp string) (*Config, error) {
	cfg := newConfig()
	expand, err := expandPath(fp)
	if err != nil {
		return nil, xerrors.Errorf("cannot expand config path, %+v", err)
	}
	if !IsFileExist(expand) {
		return nil, ErrNotFoundConfig
	}
	if err := cfg.Load(expand); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Load(fp string) error {
	b, err := os.ReadFile(fp)
	if err != nil {
		return xerrors.Errorf("cannot read config, %+v", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return xerrors.Errorf("failed unmarshal yaml, %+v", err)
	}
	return nil
}

func IsFileExist(fPath string) bool {
	_, err := os.Stat(fPath)
	return err == nil || !os.IsNotExist(err)
}

func expandPath(fp string) (string, error) {
	if len(fp) > 0 && fp[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, fp[1:]), nil
	}
	return filepath.Abs(fp)
}

func getXDGConfigPath(goos string) string {
	var dir string
	if goos == "windows" {
		dir = os.Getenv("APPDATA")
		if dir == "" {
			dir = filepath.Join(os.Getenv("USERPROFILE"), "Application Data", AppName)
		}
		dir = filepath.Join(dir, AppName)
	} else {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			dir = filepath.Join(xdg, AppName)
		} else {
			dir = filepath.Join(os.Getenv("HOME"), ".config", AppName)
		}
	}
	return dir
}
