package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "modpack-merger",
	Short: "Merge heterogeneous Minecraft modpack archives into one pack",
	Long: `modpack-merger ingests multiple modpack archives (Modrinth-style
indexed packs, CurseForge or MultiMC/Prism standard packs), reconciles
them under a user-supplied priority order, and emits either a portable
instance archive or a canonical modrinth.index.json descriptor archive.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", ".", "directory to look for a .env config file in")
}
