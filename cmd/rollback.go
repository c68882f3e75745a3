package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"

	"workshop-catalog-updater/catalog"
	"workshop-catalog-updater/config"
	"workshop-catalog-updater/logger"
	"workshop-catalog-updater/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rollbackCmd represents the rollback command
var rollbackCmd = &cobra.Command{
	Use:   "rollback [version]",
	Short: "Restores a prior catalog snapshot as the active one",
	Long: `Restores a prior snapshot's content as the next catalog version.
Example: workshop-catalog-updater rollback 12

Snapshots are immutable and version numbers only ever increase, so the old
content is re-saved under a new version rather than the files being touched.
Without an argument, the snapshot before the current one is restored.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		target := 0
		if len(args) == 1 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 1 {
				logger.Log.Fatalw("Invalid version argument", zap.String("arg", args[0]))
			}
			target = v
		}
		rollbackCatalog(target)
	},
}

func init() {
	rootCmd.AddCommand(rollbackCmd)
}

// rollbackCatalog re-saves the target snapshot's content as the next version.
func rollbackCatalog(target int) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
	}

	latest, _, err := store.LatestVersion(cfg.CatalogDir)
	if err != nil {
		logger.Log.Fatalw("Failed to inspect catalog directory", zap.Error(err))
	}
	if latest < 2 {
		logger.Log.Fatal("Nothing to roll back to.")
	}
	if target == 0 {
		target = latest - 1
	}
	if target >= latest {
		logger.Log.Fatalw("Rollback target is not older than the current version",
			zap.Int("target", target), zap.Int("current", latest))
	}

	path := filepath.Join(cfg.CatalogDir, store.SnapshotName(target))
	cat, err := store.Load(path)
	if err != nil {
		logger.Log.Fatalw("Failed to load rollback target", zap.Error(err))
	}

	// Save bumps from the highest existing version, not the restored one.
	cat.Version = latest

	notes := catalog.NewChangeNotes()
	notes.Changed("catalog content restored from version %d", target)

	if err := store.Save(cat, cfg.CatalogDir, notes); err != nil {
		logger.Log.Fatalw("Failed to save restored snapshot", zap.Error(err))
	}

	logger.Log.Infow("Rollback successful",
		zap.Int("restored_from", target),
		zap.Int("new_version", cat.Version),
	)
	fmt.Printf("Successfully restored version %d as version %d\n", target, cat.Version)
}
