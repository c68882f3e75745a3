package cmd

import (
	"time"

	"workshop-catalog-updater/catalog"
	"workshop-catalog-updater/config"
	"workshop-catalog-updater/logger"
	"workshop-catalog-updater/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Creates the version-1 snapshot with the built-in entries",
	Long: `Creates the initial catalog snapshot containing only the built-in
(base game and expansion) entries at their reserved IDs. Required once before
the first update run.`,
	Run: func(_ *cobra.Command, _ []string) {
		runSeed()
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

// builtinEntries maps the built-in content to its reserved IDs.
var builtinEntries = []struct {
	ID   int64
	Name string
}{
	{1, "Core"},
	{2, "Royalty"},
	{3, "Ideology"},
	{4, "Biotech"},
	{5, "Anomaly"},
}

// builtinPublishDate is the fixed historical publish date stamped on every
// built-in entry.
var builtinPublishDate = time.Date(2018, 10, 17, 0, 0, 0, 0, time.UTC)

func runSeed() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
	}

	if version, _, err := store.LatestVersion(cfg.CatalogDir); err != nil {
		logger.Log.Fatalw("Failed to inspect catalog directory", zap.Error(err))
	} else if version > 0 {
		logger.Log.Fatalw("Catalog already seeded", zap.Int("version", version))
	}

	cat := catalog.New(cfg.GameVersion)
	up := catalog.NewUpdater(cat, logger.Log)
	up.SetReviewDate(time.Now())

	for _, entry := range builtinEntries {
		m := up.AddMod(entry.ID, entry.Name, false)
		if m == nil {
			continue
		}
		up.UpdateMod(m, catalog.ModChanges{
			Published: &builtinPublishDate,
			Stability: builtinStability(),
		}, false)
	}

	if err := store.Save(cat, cfg.CatalogDir, up.Notes()); err != nil {
		logger.Log.Fatalw("Failed to save seed snapshot", zap.Error(err))
	}
	logger.Log.Infow("Seed snapshot written",
		zap.Int("version", cat.Version),
		zap.Int("builtins", len(builtinEntries)),
	)
}

func builtinStability() *catalog.Stability {
	s := catalog.StabilityStable
	return &s
}
