package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/loanlens-cli/internal/utils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	DatasetPath       string  `mapstructure:"dataset_path" yaml:"dataset_path"`
	Seed              int64   `mapstructure:"seed" yaml:"seed"`
	TestRatio         float64 `mapstructure:"test_ratio" yaml:"test_ratio"`
	SampleRows        int     `mapstructure:"sample_rows" yaml:"sample_rows"`
	HistogramBinWidth float64 `mapstructure:"histogram_bin_width" yaml:"histogram_bin_width"`
	ChartDir          string  `mapstructure:"chart_dir" yaml:"chart_dir"`
	CacheTTLSec       int     `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec"`

	// HTTP server
	HTTPAddr       string  `mapstructure:"http_addr" yaml:"http_addr"`
	DataDir        string  `mapstructure:"data_dir" yaml:"data_dir"`
	TrustProxy     bool    `mapstructure:"trust_proxy" yaml:"trust_proxy"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" yaml:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" yaml:"rate_limit_burst"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		DatasetPath:       "loan_data.csv",
		Seed:              42,
		TestRatio:         0.2,
		SampleRows:        5,
		HistogramBinWidth: 5,
		CacheTTLSec:       600,
		HTTPAddr:          "127.0.0.1:8080",
		RateLimitRPS:      10,
		RateLimitBurst:    20,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// DefaultPath returns ~/.loanlens/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".loanlens", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.loanlens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	return utils.SafeWriteFile(path, b)
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("LOANLENS")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("dataset_path", d.DatasetPath)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("test_ratio", d.TestRatio)
	v.SetDefault("sample_rows", d.SampleRows)
	v.SetDefault("histogram_bin_width", d.HistogramBinWidth)
	v.SetDefault("chart_dir", d.ChartDir)
	v.SetDefault("cache_ttl_sec", d.CacheTTLSec)
	v.SetDefault("http_addr", d.HTTPAddr)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("trust_proxy", d.TrustProxy)
	v.SetDefault("rate_limit_rps", d.RateLimitRPS)
	v.SetDefault("rate_limit_burst", d.RateLimitBurst)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".loanlens"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Global) Validate() error {
	if c.TestRatio <= 0 || c.TestRatio >= 1 {
		return fmt.Errorf("invalid test_ratio %v: must be in (0, 1)", c.TestRatio)
	}
	if c.HistogramBinWidth <= 0 {
		return fmt.Errorf("invalid histogram_bin_width %v: must be > 0", c.HistogramBinWidth)
	}
	if c.SampleRows < 0 {
		return fmt.Errorf("invalid sample_rows %d: must be >= 0", c.SampleRows)
	}
	return nil
}
