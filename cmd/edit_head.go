package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"modpack-merger/internal/modpack"
	"modpack-merger/logger"
)

var (
	editHeadIndex   int
	editHeadVersion string
	editHeadLoader  string
)

var editHeadCmd = &cobra.Command{
	Use:   "edit-head [pack archive]...",
	Short: "Load packs and correct a standard pack's minecraft version or loader",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configDir, _ := cmd.Flags().GetString("config")
		cfg := bootstrap(configDir)
		s := newSession(cfg)

		if err := loadPacksFromPaths(s, args); err != nil {
			logger.Log.Fatalw("failed to load packs", zap.Error(err))
		}

		if editHeadIndex < 0 || editHeadIndex >= len(s.Packs) {
			logger.Log.Fatalw("index out of range", zap.Int("index", editHeadIndex), zap.Int("loaded", len(s.Packs)))
		}
		target := s.Packs[editHeadIndex]

		if err := s.EditHeadLoaderOrVersion(target.ID, editHeadVersion, modpack.Loader(editHeadLoader)); err != nil {
			logger.Log.Fatalw("edit-head failed", zap.Error(err))
		}

		printPackSummary(s)
	},
}

func init() {
	editHeadCmd.Flags().IntVar(&editHeadIndex, "index", 0, "index of the pack to edit")
	editHeadCmd.Flags().StringVar(&editHeadVersion, "version", "", "minecraft version to set")
	editHeadCmd.Flags().StringVar(&editHeadLoader, "loader", "", "loader to set: fabric|forge|neoforge|quilt")
	rootCmd.AddCommand(editHeadCmd)
}
