package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"mangapages/pkg/cache"
	"mangapages/pkg/chart"
	"mangapages/pkg/config"
	"mangapages/pkg/logger"
	"mangapages/pkg/mangadex"
	"mangapages/pkg/ratelimit"
	"mangapages/pkg/scraper"
	"mangapages/pkg/storage"
	"mangapages/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noBrowser  bool
	cacheDir   string
	outputDir  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mangapages [manga-id...]",
	Short: "Chart page counts per chapter for MangaDex titles",
	Long: `mangapages fetches the page count of every chapter of a list of manga from
the MangaDex v2 API and draws a page count per chapter chart for each title.

Page counts are cached in <cache-dir>/<manga-id>.json after the first run, so
a title is only crawled once. Charts are written as <title>.svg and
<title>.png and previewed in the browser.

With no arguments the configured list of titles is processed.`,
	Example: `  # Process the default titles
  mangapages

  # Process two titles without opening the browser
  mangapages 607 429 --no-browser

  # Keep caches and charts in separate directories
  mangapages --cache-dir ./cache --output ./charts`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Red("Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .mangapages.yaml or ~/.config/mangapages/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&noBrowser, "no-browser", false, "do not open chart previews in the browser")
	rootCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "directory for page count cache files")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for rendered charts")

	rootCmd.SetVersionTemplate(`mangapages {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// collectFlags builds the override map passed to config.Load
func collectFlags(cmd *cobra.Command, args []string) (map[string]interface{}, error) {
	flags := make(map[string]interface{})
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if cmd.Flags().Changed("cache-dir") {
		flags["cache-dir"] = cacheDir
	}
	if cmd.Flags().Changed("output") {
		flags["output"] = outputDir
	}
	if noBrowser {
		flags["no-browser"] = true
	}

	if len(args) > 0 {
		ids := make([]int, 0, len(args))
		for _, arg := range args {
			id, err := config.ParseTitleID(arg)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		flags["titles"] = ids
	}

	return flags, nil
}

// newScraper wires the MangaDex client, cache and renderer from cfg
func newScraper(cfg *config.Config, log logger.Logger) (*scraper.Scraper, error) {
	limiter := ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	client, err := mangadex.NewClient(cfg.MangaDex, cfg.Retry, limiter, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create MangaDex client: %w", err)
	}

	store, err := cache.NewStore(cfg.Cache.Directory, log)
	if err != nil {
		return nil, err
	}

	files, err := storage.NewManager(cfg.Chart.OutputDir)
	if err != nil {
		return nil, err
	}

	renderer := chart.NewRenderer(cfg.Chart, files, log)

	return scraper.New(cfg, client, store, renderer, log), nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	flags, err := collectFlags(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).InfoWithFields("mangapages starting", map[string]interface{}{
		"titles":    len(cfg.Titles),
		"cache_dir": cfg.Cache.Directory,
		"output":    cfg.Chart.OutputDir,
	})

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newScraper(cfg, log)
	if err != nil {
		return err
	}

	if err := s.Run(ctx, cfg.Titles); err != nil {
		return err
	}

	log.Info("All titles processed")
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
