package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phanxgames/decal"
)

var (
	// Global flags
	cfgFile  string
	logLevel string
	pretty   bool

	cfg    decal.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "decal",
	Short: "Sticker editor tooling",
	Long: `decal drives the sticker editor without a window: it replays input
scripts against a base photo, exports the composed image at any scale and
checks images against the upload rules.

Examples:
  decal replay photo.jpg session.yaml --scales 1,2   # Replay and export 1x and 2x
  decal inspect sticker.png                          # Validate an image
  decal replay photo.jpg s.yaml --format webp -o out # Export WebP into out/`,
	Version:           "0.4.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { _ = logger.Sync() },
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "human-readable console logs")
}

// setup resolves the config in order: defaults, config file, .env and
// DECAL_* environment, then flags.
func setup(c *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg = decal.DefaultConfig()
	if cfgFile != "" {
		var err error
		if cfg, err = decal.LoadConfig(cfgFile); err != nil {
			return err
		}
	}
	cfg.ApplyEnv()
	if c.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if c.Flags().Changed("pretty") {
		cfg.PrettyLog = pretty
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	l, err := decal.NewLogger(cfg.LogLevel, cfg.PrettyLog)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	logger = l
	return nil
}
