package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"modpack-merger/internal/session"
	"modpack-merger/logger"
)

var (
	reorderIndex     int
	reorderDirection string
)

var reorderCmd = &cobra.Command{
	Use:   "reorder [pack archive]...",
	Short: "Load packs, move one pack up or down in priority, and print the result",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configDir, _ := cmd.Flags().GetString("config")
		cfg := bootstrap(configDir)
		s := newSession(cfg)

		if err := loadPacksFromPaths(s, args); err != nil {
			logger.Log.Fatalw("failed to load packs", zap.Error(err))
		}

		var dir session.Direction
		switch reorderDirection {
		case "up":
			dir = session.DirectionUp
		case "down":
			dir = session.DirectionDown
		default:
			logger.Log.Fatalw("unknown --direction", zap.String("direction", reorderDirection))
		}

		if err := s.Reorder(reorderIndex, dir); err != nil {
			logger.Log.Fatalw("reorder failed", zap.Error(err))
		}

		printPackSummary(s)
	},
}

func init() {
	reorderCmd.Flags().IntVar(&reorderIndex, "index", 0, "index of the pack to move")
	reorderCmd.Flags().StringVar(&reorderDirection, "direction", "up", "direction to move: up|down")
	rootCmd.AddCommand(reorderCmd)
}
