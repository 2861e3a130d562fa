package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"productimg/pkg/auth"
	"productimg/pkg/config"
	"productimg/pkg/ui"
)

var forceInit bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Create, inspect and validate productimg configuration files.

Configuration is resolved in this order (first wins):
  1. Command line flags
  2. Environment variables (PRODUCTIMG_*, also read from .env)
  3. Configuration file
  4. Built-in defaults`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write an example configuration file",
	Long:  `Write a configuration file holding every default, including the full category table.`,
	Example: `  # Create .productimg.yaml in the current directory
  productimg config init

  # Create a file at a custom location
  productimg config init ~/.config/productimg/config.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration for problems",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)

	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite an existing file")
}

const exampleHeader = `# productimg configuration
#
# Every key is optional; missing keys keep their defaults.
# Environment variables (PRODUCTIMG_*) and flags override this file.
#
# Get an access key at https://unsplash.com/developers, or leave the
# placeholder and run 'productimg auth login' instead.

`

// writeExampleConfig writes the defaults to path, refusing to replace an
// existing file unless force is set
func writeExampleConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s", path)
		}
	}

	cfg := config.DefaultConfig()
	cfg.Unsplash.AccessKey = config.PlaceholderAccessKey

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	return os.WriteFile(path, append([]byte(exampleHeader), data...), 0600)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := ".productimg.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	if err := writeExampleConfig(path, forceInit); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		return err
	}

	ui.PrintSuccess("Configuration file created: " + path)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Add your access key, or run 'productimg auth login'")
	fmt.Println("2. Run 'productimg config validate' to check the configuration")
	fmt.Println("3. Fetch images with 'productimg'")
	return nil
}

// redacted returns a copy of cfg safe to print
func redacted(cfg *config.Config) config.Config {
	display := *cfg
	if cfg.HasAccessKey() {
		display.Unsplash.AccessKey = auth.MaskKey(cfg.Unsplash.AccessKey)
	}
	return display
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}

	display := redacted(cfg)
	data, err := yaml.Marshal(&display)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		return err
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	if configFile != "" {
		fmt.Printf("\nConfiguration file: %s\n", configFile)
	}
	return nil
}

// configWarnings lists problems that do not stop a run from starting
func configWarnings(cfg *config.Config) []string {
	var warnings []string
	if !cfg.HasAccessKey() {
		warnings = append(warnings, "Unsplash access key not configured (a stored key will be tried)")
	}
	if cfg.RateLimit.Delay == 0 {
		warnings = append(warnings, "rate_limit.delay is 0; consecutive requests are not paced")
	}
	if cfg.RateLimit.RequestsPerHour > 0 && cfg.TermCount() > cfg.RateLimit.RequestsPerHour {
		warnings = append(warnings, fmt.Sprintf("%d terms exceed the hourly budget of %d requests", cfg.TermCount(), cfg.RateLimit.RequestsPerHour))
	}
	return warnings
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		ui.PrintInfo("Validating configuration", configFile)
	}

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		return err
	}

	warnings := configWarnings(cfg)
	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Output directory: %s\n", cfg.Output.BaseDirectory)
	fmt.Printf("  Categories: %d (%d terms)\n", len(cfg.Categories), cfg.TermCount())
	fmt.Printf("  Bounding box: %dx%d, quality %d, engine %s\n", cfg.Image.MaxWidth, cfg.Image.MaxHeight, cfg.Image.Quality, cfg.Image.Engine)
	fmt.Printf("  Delay: %s, budget: %d requests/hour\n", cfg.RateLimit.Delay, cfg.RateLimit.RequestsPerHour)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
	return nil
}
