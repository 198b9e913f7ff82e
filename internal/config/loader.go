package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/expml/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".expml.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/expml"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. EXPML_RUNS_DIR.
	EnvPrefix = "EXPML"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'expml config init' to create one, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .expml.yaml in current directory
// 3. .expml.yaml in parent directories (stops at git root or home)
// 4. ~/.config/expml/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	home, _ := os.UserHomeDir()
	if path := findUpwards(cwd, home); path != "" {
		return path, nil
	}

	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// findUpwards checks dir and its parents for ConfigFileName. It stops after
// a git root and never climbs above home.
func findUpwards(dir, home string) string {
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		if isGitRoot(dir) {
			return ""
		}
		parent := filepath.Dir(dir)
		if parent == dir || (home != "" && parent == home) {
			return ""
		}
		dir = parent
	}
}

// LoadOrDefault loads config from the found path, or returns defaults if
// nothing is found. Environment overrides apply in both cases.
func LoadOrDefault(explicit string) (*Config, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}

	if path == "" {
		return parseConfig(viper.New(), "")
	}

	return Load(path)
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	setDefaults(v, cfg)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// AutomaticEnv only sees keys viper already knows about.
	v.AutomaticEnv()

	if err := v.Unmarshal(cfg); err != nil {
		where := "the config"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+where)
	}

	return cfg, nil
}

// setDefaults registers every key with viper so partial files merge over defaults.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("runs_dir", d.RunsDir)
	v.SetDefault("refresh_interval", d.RefreshInterval.String())
	v.SetDefault("layout.card_min_width", d.Layout.CardMinWidth)
	v.SetDefault("layout.card_height", d.Layout.CardHeight)
	v.SetDefault("layout.sidebar_width", d.Layout.SidebarWidth)
	v.SetDefault("layout.sidebar_min_width", d.Layout.SidebarMinWidth)
	v.SetDefault("layout.main_min_width", d.Layout.MainMinWidth)
	v.SetDefault("display.color", d.Display.Color)
	v.SetDefault("display.glyphs", d.Display.Glyphs)
	v.SetDefault("display.hints", d.Display.Hints)
	v.SetDefault("log.level", d.Log.Level)
}

// isGitRoot checks if a directory is a git repository root.
func isGitRoot(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if err != nil {
		return false
	}
	return info.IsDir()
}
