package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"modpack-merger/logger"
)

var removeIndex int

var removeCmd = &cobra.Command{
	Use:   "remove [pack archive]...",
	Short: "Load packs, drop one by index, and print the resulting file list",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configDir, _ := cmd.Flags().GetString("config")
		cfg := bootstrap(configDir)
		s := newSession(cfg)

		if err := loadPacksFromPaths(s, args); err != nil {
			logger.Log.Fatalw("failed to load packs", zap.Error(err))
		}

		if removeIndex < 0 || removeIndex >= len(s.Packs) {
			logger.Log.Fatalw("index out of range", zap.Int("index", removeIndex), zap.Int("loaded", len(s.Packs)))
		}
		target := s.Packs[removeIndex]

		if err := s.RemovePack(target.ID); err != nil {
			logger.Log.Fatalw("remove failed", zap.Error(err))
		}

		printPackSummary(s)
	},
}

func init() {
	removeCmd.Flags().IntVar(&removeIndex, "index", 0, "index of the pack to remove")
	rootCmd.AddCommand(removeCmd)
}
