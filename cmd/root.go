package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mediareach/press-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "press-cli",
	Short: "Approval-gated press release distribution",
	Long:  "Generates a press release for a topic, discovers media contacts through a layered scraping pipeline, and distributes the approved text via email and social platforms.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
