package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"modpack-merger/db"
	"modpack-merger/logger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past emits recorded in the local database",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		configDir, _ := cmd.Flags().GetString("config")
		bootstrap(configDir)

		records, err := db.ListEmitHistory()
		if err != nil {
			logger.Log.Fatalw("failed to list emit history", zap.Error(err))
		}

		if len(records) == 0 {
			fmt.Println("no recorded emits")
			return
		}
		for _, rec := range records {
			fmt.Printf("#%d  %s  mode=%s  files=%d  out=%s\n", rec.ID, rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.Mode, rec.FileCount, rec.OutputPath)
			snaps, err := rec.PackSnapshots()
			if err != nil {
				logger.Log.Warnw("failed to decode pack order", zap.Error(err))
				continue
			}
			for _, snap := range snaps {
				fmt.Printf("  - %s\n", snap.Name)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
