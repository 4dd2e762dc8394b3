package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/harrisonrobin/workbench/pkg/config"
	"github.com/harrisonrobin/workbench/pkg/store"
)

var (
	// Global flags
	sessionFile string
	logLevel    string

	cfg    *config.Config
	logger *zap.Logger
	board  *store.Store
)

var rootCmd = &cobra.Command{
	Use:   "workbench",
	Short: "Shared task board and app lifecycle for the workspace shell",
	Long: `workbench keeps the task board shared by the workspace apps and tracks
which app is active.

Tasks come from Markdown documents or agent JSON and can be mirrored to
Google Tasks. The board lives in a session file between invocations.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if sessionFile != "" {
			cfg.SessionFile = sessionFile
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		logger, err = newLogger(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		board = store.New()
		if err := board.Load(cfg.SessionFile); err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		defer func() { _ = logger.Sync() }()
		if err := board.Save(cfg.SessionFile); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	},
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zcfg.Build()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session", "", "Session file holding the board (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(activateCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
