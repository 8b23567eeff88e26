package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/compliance-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "compliance-cli",
	Short: "Telecom compliance analysis assistant",
	Long:  "Scans call-detail records for TRAI threshold breaches, scores compliance risk and penalty exposure, and explains findings with an LLM grounded in a regulatory knowledge base.",
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
