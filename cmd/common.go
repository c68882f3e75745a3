package cmd

import (
	"workshop-catalog-updater/catalog"
	"workshop-catalog-updater/config"
	"workshop-catalog-updater/db"
	"workshop-catalog-updater/logger"
	"workshop-catalog-updater/store"

	"go.uber.org/zap"
)

// bootstrap handles shared initialization logic for commands: configuration,
// the session-journal database, and the active (latest) catalog snapshot.
func bootstrap(path string) (config.Config, *catalog.Catalog) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
	}

	db.InitDatabase(cfg.DatabasePath)
	logger.Log.Infow("Session journal initialized", zap.String("path", cfg.DatabasePath))

	cat, err := store.LoadLatest(cfg.CatalogDir)
	if err != nil {
		logger.Log.Fatalw("Failed to load latest catalog snapshot", zap.Error(err))
	}
	if cat == nil {
		logger.Log.Fatal("No catalog snapshot found. Run 'workshop-catalog-updater seed' first.")
	}
	logger.Log.Infow("Catalog loaded",
		zap.Int("version", cat.Version),
		zap.Int("mods", len(cat.Mods)),
	)

	return cfg, cat
}
