package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"modpack-merger/logger"
)

var analyzeDeep bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze [pack archive]...",
	Short: "Load packs and report compatibility and dependency issues",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configDir, _ := cmd.Flags().GetString("config")
		cfg := bootstrap(configDir)
		s := newSession(cfg)

		if err := loadPacksFromPaths(s, args); err != nil {
			logger.Log.Fatalw("failed to load packs", zap.Error(err))
		}

		if analyzeDeep {
			if err := s.RequestDeepAnalysis(context.Background()); err != nil {
				logger.Log.Fatalw("deep analysis failed", zap.Error(err))
			}
			fmt.Printf("dependency issues: %d\n", len(s.DependencyIssues))
			for _, issue := range s.DependencyIssues {
				fmt.Printf("  [%s] %s requires %s %s (have %q)\n", issue.Kind, issue.RequiredBy, issue.ModID, issue.RequiredRange, issue.PresentVersion)
			}
		}

		printPackSummary(s)
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeDeep, "deep", false, "also run metadata-enriched dependency analysis")
	rootCmd.AddCommand(analyzeCmd)
}
