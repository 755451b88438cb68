package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"modpack-merger/logger"
)

var listCmd = &cobra.Command{
	Use:   "list [pack archive]...",
	Short: "Load packs in priority order and print the resolved file list",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configDir, _ := cmd.Flags().GetString("config")
		cfg := bootstrap(configDir)
		s := newSession(cfg)

		if err := loadPacksFromPaths(s, args); err != nil {
			logger.Log.Fatalw("failed to load packs", zap.Error(err))
		}

		printPackSummary(s)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
