package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Lumos-Labs-HQ/sheetflash/internal/config"
	"github.com/Lumos-Labs-HQ/sheetflash/template"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	sqliteFlag     bool
	postgresqlFlag bool
	mysqlFlag      bool
)

var initCmd = &cobra.Command{
	Use:   "init [workbook]",
	Short: "Initialize a new SheetFlash project",
	Long:  `Create sheetflash.config.json with a sample sheet plan, a matching SQL schema for seeding, and a .env with DATABASE_URL.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbType := template.PostgreSQL
		flagCount := 0

		if sqliteFlag {
			dbType = template.SQLite
			flagCount++
		}
		if postgresqlFlag {
			dbType = template.PostgreSQL
			flagCount++
		}
		if mysqlFlag {
			dbType = template.MySQL
			flagCount++
		}

		if flagCount > 1 {
			return fmt.Errorf("please specify only one database type (--sqlite, --postgresql, or --mysql)")
		}

		workbook := ""
		if len(args) == 1 {
			workbook = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")
		return initializeProject(".", dbType, workbook, force)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&sqliteFlag, "sqlite", false, "Initialize project for SQLite database")
	initCmd.Flags().BoolVar(&postgresqlFlag, "postgresql", false, "Initialize project for PostgreSQL database")
	initCmd.Flags().BoolVar(&mysqlFlag, "mysql", false, "Initialize project for MySQL database")
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config")
}

func initializeProject(dir string, dbType template.DatabaseType, workbook string, force bool) error {
	configPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
	}

	tmpl := template.NewProjectTemplate(dbType, workbook)

	directories := tmpl.GetDirectoryStructure()
	for _, d := range directories {
		if err := os.MkdirAll(filepath.Join(dir, d), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}

	files := map[string]string{
		config.FileName: tmpl.GetConfig(),
	}
	schemaPath := filepath.Join("db", "schema.sql")
	schemaExists := false
	if _, err := os.Stat(filepath.Join(dir, schemaPath)); err == nil {
		schemaExists = true
	} else {
		files[schemaPath] = tmpl.GetSchema()
	}

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to create file %s: %w", name, err)
		}
	}

	// Handle .env file separately to preserve existing variables
	if err := handleEnvFile(filepath.Join(dir, ".env"), tmpl.GetEnvTemplate()); err != nil {
		return fmt.Errorf("failed to handle .env file: %w", err)
	}

	color.Green("✅ Successfully initialized SheetFlash project with %s database support", dbType)
	fmt.Println()
	fmt.Println("📝 Configuration file created:")
	fmt.Printf("   %s\n", config.FileName)

	if os.Getenv("DATABASE_URL") != "" {
		fmt.Println()
		fmt.Println("ℹ️  Using existing DATABASE_URL from environment")
	}
	if schemaExists {
		fmt.Printf("ℹ️  Skipped %s (already exists)\n", schemaPath)
	}

	fmt.Println()
	fmt.Printf("🚀 Next steps:\n")
	fmt.Printf("   sheetflash inspect          # Check sheet names and headers\n")
	fmt.Printf("   sheetflash convert          # Write the payload\n")
	fmt.Printf("   sheetflash seed --dry-run   # Preview inserts\n")

	return nil
}

func handleEnvFile(envPath, defaultEnvContent string) error {
	existingContent, err := os.ReadFile(envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return os.WriteFile(envPath, []byte(defaultEnvContent), 0644)
		}
		return err
	}

	existingStr := string(existingContent)
	if strings.Contains(existingStr, "DATABASE_URL") {
		return nil
	}

	if len(existingStr) > 0 && !strings.HasSuffix(existingStr, "\n") {
		existingStr += "\n"
	}

	existingStr += "\n# Added by SheetFlash\n" + defaultEnvContent

	return os.WriteFile(envPath, []byte(existingStr), 0644)
}
