package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"modpack-merger/db"
	"modpack-merger/internal/emit"
	"modpack-merger/logger"
)

var (
	emitMode      string
	emitOut       string
	emitVersionID string
	emitName      string
)

var emitCmd = &cobra.Command{
	Use:   "emit [pack archive]...",
	Short: "Resolve the loaded packs and write the merged archive",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configDir, _ := cmd.Flags().GetString("config")
		cfg := bootstrap(configDir)
		s := newSession(cfg)

		if err := loadPacksFromPaths(s, args); err != nil {
			logger.Log.Fatalw("failed to load packs", zap.Error(err))
		}

		var mode emit.Mode
		switch emitMode {
		case "full":
			mode = emit.ModeFullArchive
		case "index":
			mode = emit.ModeIndexDescriptor
		default:
			logger.Log.Fatalw("unknown --mode", zap.String("mode", emitMode))
		}

		out, err := os.Create(emitOut)
		if err != nil {
			logger.Log.Fatalw("failed to create output file", zap.Error(err))
		}
		defer out.Close()

		opts := emit.Options{Mode: mode, VersionID: emitVersionID, Name: emitName}
		if err := s.RequestEmit(context.Background(), opts, out); err != nil {
			logger.Log.Fatalw("emit failed", zap.Error(err))
		}

		var order []db.PackSnapshot
		for _, pack := range s.Packs {
			order = append(order, db.PackSnapshot{ID: pack.ID, Name: pack.Name})
		}
		fileCount := 0
		for _, pack := range s.Packs {
			for _, f := range pack.Files {
				if f.Enabled {
					fileCount++
				}
			}
		}
		if _, err := db.RecordEmit(emitMode, emitVersionID, emitName, fileCount, order, emitOut); err != nil {
			logger.Log.Warnw("failed to record emit history", zap.Error(err))
		}

		fmt.Printf("wrote %s (%d files, mode=%s)\n", emitOut, fileCount, emitMode)
	},
}

func init() {
	emitCmd.Flags().StringVar(&emitMode, "mode", "full", "output mode: full|index")
	emitCmd.Flags().StringVar(&emitOut, "out", "output.zip", "output archive path")
	emitCmd.Flags().StringVar(&emitVersionID, "version-id", "", "versionId for the emitted modrinth.index.json (index mode only)")
	emitCmd.Flags().StringVar(&emitName, "name", "", "name for the emitted modrinth.index.json (index mode only)")
	rootCmd.AddCommand(emitCmd)
}
