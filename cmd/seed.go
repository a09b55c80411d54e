package cmd

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/Lumos-Labs-HQ/sheetflash/internal/database"
	"github.com/Lumos-Labs-HQ/sheetflash/internal/seeder"
	"github.com/Lumos-Labs-HQ/sheetflash/internal/utils"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Convert the workbook and insert the rows into the database",
	Long: `
Convert the workbook, then insert every row into the table named after its
sheet (root) or relation (children). Parents are inserted before their
children inside one transaction.

Single-id relation columns are written as plain foreign key values. Relations
holding several ids are skipped.

Examples:
  sheetflash seed
  sheetflash seed --dry-run
  sheetflash seed --table post=posts --truncate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyOverrides(cmd, cfg)

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		truncate, _ := cmd.Flags().GetBool("truncate")
		force, _ := cmd.Flags().GetBool("force")
		noTx, _ := cmd.Flags().GetBool("no-transaction")
		tables, _ := cmd.Flags().GetStringToString("table")
		if cmd.Flags().Changed("provider") {
			cfg.Database.Provider, _ = cmd.Flags().GetString("provider")
		}

		if truncate && !dryRun {
			prompt := &utils.InputUtils{In: os.Stdin, Out: os.Stdout}
			if !prompt.AskConfirmation("⚠️  Existing rows in the target tables will be deleted. Continue?", force) {
				color.Yellow("Seeding cancelled")
				return nil
			}
		}

		rows, report, err := convert(cmd.Context(), cfg)
		printReport(report)
		if err != nil {
			return err
		}

		seedCfg := seeder.SeedConfig{
			RootTable:     cfg.Root.Name,
			Tables:        tables,
			Truncate:      truncate,
			Force:         force,
			NoTransaction: noTx,
		}

		var (
			db      *sql.DB
			dialect database.Dialect
		)
		if dryRun {
			seedCfg.DryRun = os.Stdout
			dialect, err = database.NewDialect(cfg.Database.Provider)
			if err != nil {
				return err
			}
		} else {
			dbURL, err := cfg.GetDatabaseURL()
			if err != nil {
				return err
			}
			db, dialect, err = database.Open(cmd.Context(), cfg.Database.Provider, dbURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()
		}

		stats, err := seeder.NewSeeder(db, dialect, logger).Seed(cmd.Context(), rows, seedCfg)
		if err != nil {
			return err
		}
		if stats.Skipped > 0 {
			color.Yellow("⚠️  Skipped %d multi-id relation fields", stats.Skipped)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().String("file", "", "Workbook path (overrides file_path)")
	seedCmd.Flags().Bool("strict", false, "Fail when a child row has no parent or several")
	seedCmd.Flags().Bool("dry-run", false, "Print the INSERT statements instead of running them")
	seedCmd.Flags().String("provider", "", "Database provider (overrides database.provider)")
	seedCmd.Flags().StringToString("table", nil, "Map a relation name to a table, e.g. post=posts")
	seedCmd.Flags().Bool("truncate", false, "Clear the target tables before seeding")
	seedCmd.Flags().Bool("force", false, "Skip confirmations and continue after failed inserts")
	seedCmd.Flags().Bool("no-transaction", false, "Do not wrap inserts in a transaction")
}
