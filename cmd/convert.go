package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/Lumos-Labs-HQ/sheetflash/internal/converter"
	"github.com/Lumos-Labs-HQ/sheetflash/internal/export"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert the workbook into a nested payload",
	Long: `
Read the root sheet and every child sheet from the config, link child rows
under their parents, and write the pruned payload.

Examples:
  sheetflash convert
  sheetflash convert --format yaml
  sheetflash convert --stdout --select '$[*].post.create[*].postId'
  sheetflash convert --strict`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyOverrides(cmd, cfg)

		format := cfg.Output.Format
		if cmd.Flags().Changed("format") {
			format, _ = cmd.Flags().GetString("format")
		}
		selector, _ := cmd.Flags().GetString("select")
		toStdout, _ := cmd.Flags().GetBool("stdout")

		rows, report, err := convert(cmd.Context(), cfg)
		if !toStdout {
			printReport(report)
		}
		if err != nil {
			if errors.Is(err, converter.ErrUnlinked) {
				color.Red("❌ Strict mode: %v", err)
			}
			return err
		}

		if toStdout {
			data, err := export.Render(rows, format, selector)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		}

		if err := cfg.EnsureDirectories(); err != nil {
			return fmt.Errorf("failed to create directories: %w", err)
		}
		path, err := export.Write(rows, cfg.Output.Path, format, selector)
		if err != nil {
			return err
		}

		color.Green("✅ Converted %d root rows", len(rows))
		color.Cyan("📁 Payload written to %s", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().String("file", "", "Workbook path (overrides file_path)")
	convertCmd.Flags().String("format", "json", "Output format: json or yaml")
	convertCmd.Flags().String("select", "", "JSONPath expression to select part of the payload")
	convertCmd.Flags().Bool("stdout", false, "Print the payload instead of writing a file")
	convertCmd.Flags().Bool("strict", false, "Fail when a child row has no parent or several")
}
