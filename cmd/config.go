package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/vdjstat/internal/config"
	"github.com/KaramelBytes/vdjstat/internal/diversity"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set vdjstat configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "delimiter: %q\n", c.Delimiter)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "default_index: %s\n", c.DefaultIndex)
		fmt.Fprintf(out, "exclude_value: %s\n", c.ExcludeValue)
		fmt.Fprintf(out, "count_name: %s\n", c.CountName)
		fmt.Fprintf(out, "freq_name: %s\n", c.FreqName)
		fmt.Fprintf(out, "richness_name: %s\n", c.RichnessName)
		fmt.Fprintf(out, "preview_rows: %d\n", c.PreviewRows)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "delimiter":
			prev := cfg.Delimiter
			cfg.Delimiter = val
			if _, err := cfg.DelimiterRune(); err != nil {
				cfg.Delimiter = prev
				return err
			}
		case "log_level":
			if _, err := zapcore.ParseLevel(val); err != nil {
				return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
			}
			cfg.LogLevel = val
		case "default_index":
			if _, err := diversity.Lookup(val); err != nil {
				return fmt.Errorf("invalid default_index: %w", err)
			}
			cfg.DefaultIndex = val
		case "exclude_value":
			cfg.ExcludeValue = val
		case "count_name":
			cfg.CountName = val
		case "freq_name":
			cfg.FreqName = val
		case "richness_name":
			cfg.RichnessName = val
		case "preview_rows":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for preview_rows: %v", val)
			}
			cfg.PreviewRows = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
