package cmd

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/sheetflash/internal/config"
	"github.com/Lumos-Labs-HQ/sheetflash/internal/converter"
	"github.com/Lumos-Labs-HQ/sheetflash/internal/types"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ResolveFilePath(viper.ConfigFileUsed())
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyOverrides lets flags win over the config file.
func applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("file") {
		cfg.FilePath, _ = cmd.Flags().GetString("file")
	}
	if cmd.Flags().Changed("strict") {
		cfg.Strict, _ = cmd.Flags().GetBool("strict")
	}
}

// convert runs the configured sheet plan and returns the pruned payload.
// In strict mode the error is returned together with the report.
func convert(ctx context.Context, cfg *config.Config) ([]*types.Row, converter.Report, error) {
	opts := cfg.ConverterOptions()
	opts.Logger = logger

	conv, err := converter.Open(opts)
	if err != nil {
		return nil, converter.Report{}, err
	}
	defer conv.Close()

	color.Cyan("📖 Reading %s", cfg.FilePath)
	rows, err := conv.Run(ctx, cfg.Root, cfg.Children)
	return rows, conv.Report(), err
}

func printReport(report converter.Report) {
	for _, s := range report.Sheets {
		color.White("   %-20s read %-5d accepted %-5d attached %-5d skipped %d",
			s.Name, s.Read, s.Accepted, s.Attached, s.Skipped)
	}

	if len(report.Unlinked) > 0 {
		color.Yellow("⚠️  %d rows could not be attached:", len(report.Unlinked))
		for _, u := range report.Unlinked {
			reason := "no matching parent"
			if u.Reason != "" {
				reason = u.Reason
			}
			color.Yellow("   %s row %d (%s = %s): %s", u.Sheet, u.Row, u.FK, converter.KeyString(u.Key), reason)
		}
	}
	if len(report.Collisions) > 0 {
		color.Yellow("⚠️  %d rows matched more than one parent (first match used):", len(report.Collisions))
		for _, c := range report.Collisions {
			color.Yellow("   %s row %d (%s = %s) matched %d rows", c.Sheet, c.Row, c.FK, converter.KeyString(c.Key), c.Matches)
		}
	}
}
