package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"productimg/pkg/auth"
	"productimg/pkg/config"
	apperrors "productimg/pkg/errors"
	"productimg/pkg/fetcher"
	"productimg/pkg/logger"
	"productimg/pkg/ui"
)

// errMissingAccessKey is returned when no store yields an Unsplash key
var errMissingAccessKey = errors.New("no Unsplash access key configured")

var (
	// Fetch command flags
	outputDir       string
	accessKey       string
	maxSize         int
	quality         int
	delay           time.Duration
	engine          string
	requestsPerHour int
	timeout         time.Duration
	noManifest      bool
	dryRun          bool
	requireKey      bool
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download one product photo per search term",
	Long: `Walk the category table in order and save one photo per search term.

The access key is resolved from (first match wins):
  - the --access-key flag
  - PRODUCTIMG_ACCESS_KEY or UNSPLASH_ACCESS_KEY
  - unsplash.access_key in the configuration file
  - a key stored with 'productimg auth login'

Without a key every lookup is rejected by the API and each term is
skipped; pass --require-key to stop before fetching instead.`,
	Example: `  # Run with defaults into ./assets/images/products
  productimg

  # Smaller thumbnails into a custom directory
  productimg fetch --output ./public/products --max-size 400 --quality 75

  # Show what would be fetched without calling the API
  productimg fetch --dry-run`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	addFetchFlags(fetchCmd.Flags())
	// the root command runs a fetch too
	addFetchFlags(rootCmd.Flags())
}

func addFetchFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&outputDir, "output", "o", "", "base output directory (default: assets/images/products)")
	fs.StringVar(&accessKey, "access-key", "", "Unsplash access key")
	fs.IntVar(&maxSize, "max-size", 800, "bounding box edge in pixels")
	fs.IntVar(&quality, "quality", 85, "JPEG quality (1-100)")
	fs.DurationVar(&delay, "delay", time.Second, "pause between search terms")
	fs.StringVar(&engine, "engine", "imaging", "resize engine (imaging, nfnt)")
	fs.IntVar(&requestsPerHour, "requests-per-hour", 50, "API request budget per hour (0 disables)")
	fs.DurationVar(&timeout, "timeout", 0, "per-request timeout (0 waits indefinitely)")
	fs.BoolVar(&noManifest, "no-manifest", false, "do not write credits.json")
	fs.BoolVar(&dryRun, "dry-run", false, "print the plan without network calls")
	fs.BoolVar(&requireKey, "require-key", false, "exit with an error when no access key is configured")
}

// collectFlags returns only the flags set on the command line so that
// defaults never shadow the environment or the config file
func collectFlags(fs *pflag.FlagSet) map[string]interface{} {
	flags := make(map[string]interface{})
	if fs.Changed("output") {
		flags["output"] = outputDir
	}
	if fs.Changed("access-key") {
		flags["access-key"] = accessKey
	}
	if fs.Changed("max-size") {
		flags["max-size"] = maxSize
	}
	if fs.Changed("quality") {
		flags["quality"] = quality
	}
	if fs.Changed("delay") {
		flags["delay"] = delay
	}
	if fs.Changed("engine") {
		flags["engine"] = engine
	}
	if fs.Changed("requests-per-hour") {
		flags["requests-per-hour"] = requestsPerHour
	}
	if fs.Changed("timeout") {
		flags["timeout"] = timeout
	}
	if fs.Changed("no-manifest") {
		flags["manifest"] = !noManifest
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	return flags
}

// keyLookup resolves a stored access key by profile name
type keyLookup interface {
	AccessKey(name string) string
}

// openCredentialStores opens the stored-key backends
var openCredentialStores = func() (keyLookup, error) {
	manager, err := auth.NewManager()
	if err != nil {
		return nil, err
	}
	return manager, nil
}

// resolveAccessKey falls back to the credential stores when the
// configuration carries no usable key
func resolveAccessKey(cfg *config.Config, stores keyLookup) error {
	if cfg.HasAccessKey() {
		return nil
	}
	if stores != nil {
		if key := stores.AccessKey(auth.DefaultProfile); key != "" {
			cfg.Unsplash.AccessKey = key
			return nil
		}
	}
	return errMissingAccessKey
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, collectFlags(cmd.Flags()))
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		return err
	}

	if !dryRun {
		stores, err := openCredentialStores()
		if err != nil {
			logger.WithError(err).Warn("Credential stores unavailable")
		}
		if err := resolveAccessKey(cfg, stores); err != nil {
			auth.ShowAccessKeyGuide(os.Stderr)
			if requireKey {
				ui.PrintError("Missing access key", err.Error())
				return err
			}
			ui.PrintWarning("Missing access key", "every term will be skipped")
			logger.WithError(err).Warn("Continuing without an access key")
		}
	}

	ui.PrintInfo("Output", cfg.Output.BaseDirectory)
	ui.PrintInfo("Terms", fmt.Sprintf("%d in %d categories", cfg.TermCount(), len(cfg.Categories)))
	if dryRun {
		ui.PrintWarning("Dry run: no requests will be made")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := ui.NewProgressDisplay(cfg.TermCount(), verbose || dryRun)
	f, err := fetcher.New(cfg,
		fetcher.WithProgress(progress),
		fetcher.WithDryRun(dryRun),
	)
	if err != nil {
		ui.PrintError("Failed to initialize fetcher", err.Error())
		return err
	}

	summary, err := f.Run(ctx)
	if err != nil {
		if apperrors.IsFatal(err) {
			ui.PrintError("Cannot create output directories", err.Error())
		} else {
			ui.PrintError("Run failed", err.Error())
		}
		return err
	}

	if summary.Cancelled {
		ui.PrintWarning("Interrupted", fmt.Sprintf("%d of %d terms processed", summary.Total(), cfg.TermCount()))
	}
	return nil
}
