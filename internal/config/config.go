package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Lumos-Labs-HQ/sheetflash/internal/converter"
	"github.com/Lumos-Labs-HQ/sheetflash/internal/types"
	"github.com/spf13/viper"
)

const FileName = "sheetflash.config.json"

type Config struct {
	Version   string                  `json:"version" mapstructure:"version"`
	FilePath  string                  `json:"file_path" mapstructure:"file_path"`
	Delimiter string                  `json:"delimiter" mapstructure:"delimiter"`
	PKSuffix  string                  `json:"pk_suffix" mapstructure:"pk_suffix"`
	Strict    bool                    `json:"strict" mapstructure:"strict"`
	Root      types.SheetOption       `json:"root" mapstructure:"root"`
	Children  []types.SubCreateOption `json:"children" mapstructure:"children"`
	Output    Output                  `json:"output" mapstructure:"output"`
	Database  Database                `json:"database" mapstructure:"database"`
}

type Output struct {
	Path   string `json:"path" mapstructure:"path"`
	Format string `json:"format" mapstructure:"format"`
}

type Database struct {
	Provider string `json:"provider" mapstructure:"provider"`
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Set defaults
	if cfg.Version == "" {
		cfg.Version = "1"
	}
	if cfg.FilePath == "" {
		cfg.FilePath = "data.xlsx"
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = converter.DefaultDelimiter
	}
	if cfg.PKSuffix == "" && !viper.IsSet("pk_suffix") {
		cfg.PKSuffix = "Id"
	}
	applySheetDefaults(&cfg.Root)
	for i := range cfg.Children {
		applySheetDefaults(&cfg.Children[i].SheetOption)
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = "sheetflash_out"
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "json"
	}
	if cfg.Database.Provider == "" {
		cfg.Database.Provider = "postgresql"
	}
	if cfg.Database.URLEnv == "" {
		cfg.Database.URLEnv = "DATABASE_URL"
	}

	return &cfg, nil
}

// Sheets default to a header on row 1 and data from the row after it.
func applySheetDefaults(opt *types.SheetOption) {
	if opt.RowNameIndex == 0 {
		opt.RowNameIndex = 1
	}
	if opt.StartRowIndex == 0 {
		opt.StartRowIndex = opt.RowNameIndex + 1
	}
}

func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

func (c *Config) EnsureDirectories() error {
	dir := c.Output.Path
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

func (c *Config) Validate() error {
	supportedProviders := []string{"postgresql", "postgres", "mysql", "sqlite", "sqlite3"}
	supported := false
	for _, provider := range supportedProviders {
		if c.Database.Provider == provider {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported database provider: %s. Supported providers: %v", c.Database.Provider, supportedProviders)
	}

	switch c.Output.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format: %s. Supported formats: [json yaml]", c.Output.Format)
	}

	if c.FilePath == "" {
		return fmt.Errorf("file_path cannot be empty")
	}

	if err := c.Root.Validate(); err != nil {
		return fmt.Errorf("root: %w", err)
	}

	graph := converter.NewDependencyGraph(c.Root.Name)
	for _, child := range c.Children {
		if err := child.Validate(); err != nil {
			return fmt.Errorf("children: %w", err)
		}
		if err := graph.AddSheet(child); err != nil {
			return fmt.Errorf("children: %w", err)
		}
	}
	if _, err := graph.BuildOrder(); err != nil {
		return fmt.Errorf("children: %w", err)
	}

	return nil
}

// ConverterOptions maps the config onto a conversion session.
func (c *Config) ConverterOptions() converter.Options {
	return converter.Options{
		FilePath:  c.FilePath,
		Delimiter: c.Delimiter,
		PKSuffix:  c.PKSuffix,
		Strict:    c.Strict,
	}
}

// ResolveFilePath makes a relative workbook path relative to the config file.
func (c *Config) ResolveFilePath(configFile string) {
	if configFile == "" || filepath.IsAbs(c.FilePath) {
		return
	}
	c.FilePath = filepath.Join(filepath.Dir(configFile), c.FilePath)
}

func IsInitialized() bool {
	_, err := os.Stat(FileName)
	return err == nil
}
