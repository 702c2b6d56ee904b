// Package cmd - signalscout CLI commands
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"SignalScout/internal/config"
	"SignalScout/internal/logger"
)

// Version is set at build time with -ldflags "-X SignalScout/cmd/signalscout/cmd.Version=...".
var Version = "dev"

var (
	cfgFile string
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "signalscout",
	Short: "Technical indicator signals and stock screening",
	Long: `SignalScout computes technical indicators on daily bars, evaluates
buy/hold signals with price targets, and screens a symbol universe for
day-trade and swing candidates.

Commands:
    analyze <SYMBOL>...        - signal and price targets per symbol
    screen --mode daytrade     - rank the configured universe
    serve                      - HTTP API, cron screens and Telegram bot
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", defaultCfg, "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(screenCmd)
	rootCmd.AddCommand(serveCmd)
}

func initConfig() error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if verbose {
		c.Log.Level = "debug"
	}
	if err := logger.Init(logger.Config{
		Level:          c.Log.Level,
		Format:         c.Log.Format,
		FileEnabled:    c.Log.FileEnabled,
		FilePath:       c.Log.FilePath,
		RotationSize:   c.Log.RotationSize,
		RetentionDays:  c.Log.RetentionDays,
		ServiceName:    "signalscout",
		ServiceVersion: Version,
	}); err != nil {
		return err
	}
	log.Debug().Str("config", cfgFile).Str("provider", c.DataSource.Provider).Msg("config loaded")
	cfg = c
	return nil
}
