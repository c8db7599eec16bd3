package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/loanlens-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set LoanLens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "dataset_path: %s\n", cfg.DatasetPath)
		fmt.Fprintf(w, "seed: %d\n", cfg.Seed)
		fmt.Fprintf(w, "test_ratio: %.3f\n", cfg.TestRatio)
		fmt.Fprintf(w, "sample_rows: %d\n", cfg.SampleRows)
		fmt.Fprintf(w, "histogram_bin_width: %g\n", cfg.HistogramBinWidth)
		if cfg.ChartDir != "" {
			fmt.Fprintf(w, "chart_dir: %s\n", cfg.ChartDir)
		}
		fmt.Fprintf(w, "cache_ttl_sec: %d\n", cfg.CacheTTLSec)
		fmt.Fprintf(w, "http_addr: %s\n", cfg.HTTPAddr)
		if cfg.DataDir != "" {
			fmt.Fprintf(w, "data_dir: %s\n", cfg.DataDir)
		}
		fmt.Fprintf(w, "trust_proxy: %t\n", cfg.TrustProxy)
		fmt.Fprintf(w, "rate_limit_rps: %g\n", cfg.RateLimitRPS)
		fmt.Fprintf(w, "rate_limit_burst: %d\n", cfg.RateLimitBurst)
		fmt.Fprintf(w, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(w, "log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Start from the file, not from flag overrides.
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			c = cfgpkg.Defaults()
		}
		switch key {
		case "dataset_path":
			c.DatasetPath = val
		case "seed":
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid int for seed: %w", err)
			}
			c.Seed = i
		case "test_ratio":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for test_ratio: %w", err)
			}
			c.TestRatio = f
		case "sample_rows":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for sample_rows: %w", err)
			}
			c.SampleRows = i
		case "histogram_bin_width":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for histogram_bin_width: %w", err)
			}
			c.HistogramBinWidth = f
		case "chart_dir":
			c.ChartDir = val
		case "cache_ttl_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for cache_ttl_sec: %v", val)
			}
			c.CacheTTLSec = i
		case "http_addr":
			c.HTTPAddr = val
		case "data_dir":
			c.DataDir = val
		case "trust_proxy":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for trust_proxy: %w", err)
			}
			c.TrustProxy = b
		case "rate_limit_rps":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for rate_limit_rps: %w", err)
			}
			c.RateLimitRPS = f
		case "rate_limit_burst":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for rate_limit_burst: %w", err)
			}
			c.RateLimitBurst = i
		case "log_level":
			switch strings.ToLower(val) {
			case "debug", "info", "warn", "warning", "error":
				c.LogLevel = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
			}
		case "log_format":
			switch strings.ToLower(val) {
			case "text", "json":
				c.LogFormat = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
