package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ikjoobang/xivix-best-map/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "bestmap",
	Short: "Location-based business viability analysis",
	Long:  "Aggregates Kakao, Naver, and SEMAS store data around a point, reconciles it into a deduplicated competitor picture, and reports density, risk tier, and optional advisory text.",
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
