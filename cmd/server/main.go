package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mindmate/mindmate-backend/internal/config"
	"github.com/mindmate/mindmate-backend/internal/logger"
)

var (
	cfg     *config.Config
	log     *zap.Logger
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "mindmate",
	Short: "MindMate mental wellness backend",
	Long: `MindMate serves the chat companion, private journal, mood tracker and
guided exercises behind the MindMate web client.

Run without arguments to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is normal outside local development.
		_ = godotenv.Load()

		cfg = config.Load()
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		var err error
		log, err = logger.New(level, cfg.IsProduction())
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedMoodsCmd, chatCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
