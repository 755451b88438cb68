package cmd

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"modpack-merger/config"
	"modpack-merger/db"
	"modpack-merger/internal/cache"
	"modpack-merger/internal/fetch"
	"modpack-merger/internal/session"
	"modpack-merger/logger"
)

// bootstrap loads configuration and initializes the emit-history
// database, the shared shape every subcommand starts from.
func bootstrap(configDir string) config.Config {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		logger.Log.Fatalw("failed to load configuration", zap.Error(err))
	}
	db.InitDatabase(cfg.DatabasePath)
	logger.Log.Infow("database initialized", zap.String("path", cfg.DatabasePath))
	return cfg
}

// newSession builds a session.Session wired to the engine's fetcher,
// metadata cache, and log sink.
func newSession(cfg config.Config) *session.Session {
	f := fetch.New(cfg.UserAgent, time.Duration(cfg.FetchTimeoutSeconds)*time.Second)
	return session.New(cache.New(), f, logger.ZapSink{}, cfg.BatchSize)
}

// loadPacksFromPaths reads each archive path in order and loads it into
// s, in the order given — that order becomes the pack priority order.
func loadPacksFromPaths(s *session.Session, paths []string) error {
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading pack archive %q: %w", p, err)
		}
		if err := s.LoadPack(p, raw); err != nil {
			return fmt.Errorf("loading pack %q: %w", p, err)
		}
	}
	return nil
}

// printPackSummary prints each loaded pack's resolved file list: path,
// enabled/excluded state, and conflict reason where applicable.
func printPackSummary(s *session.Session) {
	for _, pack := range s.Packs {
		fmt.Printf("%s  (%s, %s/%s)\n", pack.Name, pack.Type, pack.MinecraftVersion, pack.Loader)
		for _, f := range pack.Files {
			status := "kept"
			if !f.Enabled {
				status = "excluded: " + f.ConflictReason
			}
			fmt.Printf("  %-50s %s\n", f.Path, status)
		}
	}
	if len(s.CompatIssues) > 0 {
		fmt.Println("\ncompatibility issues:")
		for _, issue := range s.CompatIssues {
			fmt.Printf("  [%s] %s\n", issue.Kind, issue.Message)
		}
	}
}
