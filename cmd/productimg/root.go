package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"productimg/pkg/logger"
	"productimg/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
	verbose    bool
)

// rootCmd runs a fetch when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "productimg",
	Short: "Fetch product photos from Unsplash for a pet store catalogue",
	Long: `productimg downloads one photo per search term from the Unsplash random
photo API, fits it within a bounding box and stores it as a JPEG under
<output>/<category>/<term>.jpg.

Terms are processed in table order with a pause between API calls. A failed
term is reported and skipped; the run only aborts when the output directories
cannot be created.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Version = version
		if quiet {
			ui.Quiet = true
		}
		if cmd.Name() != "help" && !quiet {
			ui.PrintLogo()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.productimg.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print a line for every term")

	rootCmd.SetVersionTemplate(`productimg {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}
