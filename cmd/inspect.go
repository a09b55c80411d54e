package cmd

import (
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/sheetflash/internal/config"
	"github.com/Lumos-Labs-HQ/sheetflash/internal/sheet"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [workbook]",
	Short: "List the sheets of a workbook with their header columns",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.ResolveFilePath(viper.ConfigFileUsed())
			path = cfg.FilePath
		}
		headerRow, _ := cmd.Flags().GetInt("header-row")

		wb, err := sheet.Open(path)
		if err != nil {
			return err
		}
		defer wb.Close()

		infos, err := sheet.Inspect(cmd.Context(), wb, headerRow)
		if err != nil {
			return err
		}

		color.Cyan("📒 %s (%d sheets)", path, len(infos))
		for _, info := range infos {
			color.Green("  %s", info.Name)
			fmt.Printf("     rows:    %d\n", info.DataRows)
			fmt.Printf("     columns: %s\n", strings.Join(info.Columns, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Int("header-row", 1, "1-based row holding column names")
}
