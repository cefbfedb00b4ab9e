package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Input delimiter: "," ";" or "tab". Empty picks tab for .tsv files and comma otherwise.
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`

	DefaultIndex string `mapstructure:"default_index" yaml:"default_index"`
	ExcludeValue string `mapstructure:"exclude_value" yaml:"exclude_value"`

	CountName    string `mapstructure:"count_name" yaml:"count_name"`
	FreqName     string `mapstructure:"freq_name" yaml:"freq_name"`
	RichnessName string `mapstructure:"richness_name" yaml:"richness_name"`

	// Rows printed per table when writing Markdown to stdout; 0 prints all.
	PreviewRows int `mapstructure:"preview_rows" yaml:"preview_rows"`
}

var defaults = map[string]any{
	"delimiter":     "",
	"log_level":     "warn",
	"default_index": "gini_index",
	"exclude_value": "Shared",
	"count_name":    "count",
	"freq_name":     "freq",
	"richness_name": "richness",
	"preview_rows":  50,
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Global {
	return &Global{
		Delimiter:    defaults["delimiter"].(string),
		LogLevel:     defaults["log_level"].(string),
		DefaultIndex: defaults["default_index"].(string),
		ExcludeValue: defaults["exclude_value"].(string),
		CountName:    defaults["count_name"].(string),
		FreqName:     defaults["freq_name"].(string),
		RichnessName: defaults["richness_name"].(string),
		PreviewRows:  defaults["preview_rows"].(int),
	}
}

// DelimiterRune maps the configured delimiter name to a rune. Empty means auto.
func (c *Global) DelimiterRune() (rune, error) {
	switch c.Delimiter {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case ";":
		return ';', nil
	case "\t", "tab":
		return '\t', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %q (use ','|';'|'tab')", c.Delimiter)
	}
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".vdjstat"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.vdjstat/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (VDJSTAT_*) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("VDJSTAT")
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
