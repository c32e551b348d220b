package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rafabd1/PIIHound/output"
	"github.com/rafabd1/PIIHound/utils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables read by Resolve
const EnvPrefix = "PIIHOUND"

// DefaultFile is the config file looked up when --config is not given
const DefaultFile = "piihound.yaml"

// CustomRule is an extra false-positive context rule from the config file.
type CustomRule struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Regex       string `yaml:"regex" mapstructure:"regex"`
	Description string `yaml:"description" mapstructure:"description"`
}

// Configuration holds all configuration parameters for the application
type Configuration struct {
	// Matching
	Strict      bool     `yaml:"strict" mapstructure:"strict"`
	CustomTerms []string `yaml:"custom_terms" mapstructure:"custom_terms"`

	// Code line context rules
	RuleCategories        []string     `yaml:"rule_categories" mapstructure:"rule_categories"`
	ExcludeRuleCategories []string     `yaml:"exclude_rule_categories" mapstructure:"exclude_rule_categories"`
	CustomRules           []CustomRule `yaml:"custom_rules" mapstructure:"custom_rules"`

	// Report
	Output string `yaml:"output" mapstructure:"output"`
	Format string `yaml:"format" mapstructure:"format"`

	// Scanning
	Concurrency int      `yaml:"concurrency" mapstructure:"concurrency"`
	MaxRows     int      `yaml:"max_rows" mapstructure:"max_rows"`
	MaxSamples  int      `yaml:"max_samples" mapstructure:"max_samples"`
	MaxFileSize int64    `yaml:"max_file_size" mapstructure:"max_file_size"`
	ExcludeDirs []string `yaml:"exclude_dirs" mapstructure:"exclude_dirs"`

	// Application behavior
	Verbose    bool `yaml:"verbose" mapstructure:"verbose"`
	Silent     bool `yaml:"silent" mapstructure:"silent"`
	NoProgress bool `yaml:"no_progress" mapstructure:"no_progress"`
}

// Default returns the built-in configuration
func Default() Configuration {
	return Configuration{
		Format:                string(output.FormatMarkdown),
		Concurrency:           1,
		MaxRows:               1000,
		MaxSamples:            5,
		MaxFileSize:           50 * 1024 * 1024,
		CustomTerms:           []string{},
		ExcludeDirs:           []string{},
		RuleCategories:        []string{},
		ExcludeRuleCategories: []string{},
		CustomRules:           []CustomRule{},
	}
}

// Load reads a YAML file over the defaults. A missing file yields the defaults.
func Load(path string) (Configuration, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, utils.NewError(utils.ConfigError, fmt.Sprintf("failed to read config %s", path), err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, utils.NewError(utils.ConfigError, fmt.Sprintf("invalid config %s", path), err)
	}

	return cfg, cfg.Validate()
}

// Save writes cfg to path as YAML, creating parent directories.
func Save(path string, cfg Configuration) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return utils.NewError(utils.ConfigError, "failed to create config directory", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return utils.NewError(utils.ConfigError, "failed to encode config", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return utils.NewError(utils.ConfigError, fmt.Sprintf("failed to write config %s", path), err)
	}
	return nil
}

func (c Configuration) Validate() error {
	if _, err := output.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.Concurrency < 0 {
		return utils.NewError(utils.ConfigError, "concurrency must not be negative", nil)
	}
	if c.MaxRows < 0 || c.MaxSamples < 0 || c.MaxFileSize < 0 {
		return utils.NewError(utils.ConfigError, "limits must not be negative", nil)
	}
	if c.Verbose && c.Silent {
		return utils.NewError(utils.ConfigError, "verbose and silent are mutually exclusive", nil)
	}
	if len(c.RuleCategories) > 0 && len(c.ExcludeRuleCategories) > 0 {
		return utils.NewError(utils.ConfigError, "rule_categories and exclude_rule_categories cannot be combined", nil)
	}
	for i, rule := range c.CustomRules {
		if strings.TrimSpace(rule.Name) == "" || rule.Regex == "" {
			return utils.NewError(utils.ConfigError, fmt.Sprintf("custom rule %d needs a name and a regex", i+1), nil)
		}
	}
	return nil
}

/*
Layers environment variables and bound flags over base. Precedence is
flag, then PIIHOUND_* environment, then base (file values over defaults).
Flags must already be bound to v with BindPFlag.
*/
func Resolve(v *viper.Viper, base Configuration) (Configuration, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("strict", base.Strict)
	v.SetDefault("custom_terms", base.CustomTerms)
	v.SetDefault("rule_categories", base.RuleCategories)
	v.SetDefault("exclude_rule_categories", base.ExcludeRuleCategories)
	v.SetDefault("output", base.Output)
	v.SetDefault("format", base.Format)
	v.SetDefault("concurrency", base.Concurrency)
	v.SetDefault("max_rows", base.MaxRows)
	v.SetDefault("max_samples", base.MaxSamples)
	v.SetDefault("max_file_size", base.MaxFileSize)
	v.SetDefault("exclude_dirs", base.ExcludeDirs)
	v.SetDefault("verbose", base.Verbose)
	v.SetDefault("silent", base.Silent)
	v.SetDefault("no_progress", base.NoProgress)

	cfg := Configuration{
		Strict:                v.GetBool("strict"),
		CustomTerms:           splitList(v.GetStringSlice("custom_terms")),
		RuleCategories:        splitList(v.GetStringSlice("rule_categories")),
		ExcludeRuleCategories: splitList(v.GetStringSlice("exclude_rule_categories")),
		CustomRules:           base.CustomRules, // config file only
		Output:                v.GetString("output"),
		Format:                v.GetString("format"),
		Concurrency:           v.GetInt("concurrency"),
		MaxRows:               v.GetInt("max_rows"),
		MaxSamples:            v.GetInt("max_samples"),
		MaxFileSize:           v.GetInt64("max_file_size"),
		ExcludeDirs:           splitList(v.GetStringSlice("exclude_dirs")),
		Verbose:               v.GetBool("verbose"),
		Silent:                v.GetBool("silent"),
		NoProgress:            v.GetBool("no_progress"),
	}

	return cfg, cfg.Validate()
}

// splitList accepts both list values and comma-separated strings from env.
func splitList(values []string) []string {
	out := []string{}
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
