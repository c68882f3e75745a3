package cmd

import (
	"time"

	"workshop-catalog-updater/catalog"
	"workshop-catalog-updater/crawler"
	"workshop-catalog-updater/db"
	"workshop-catalog-updater/logger"
	"workshop-catalog-updater/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Crawls the workshop and writes a new catalog snapshot",
	Long: `Crawls the workshop listing pages, then every known mod's detail page,
merges the extracted facts into the catalog (curator-pinned fields are never
overwritten), and writes the next numbered snapshot with its change notes.`,
	Run: func(cmd *cobra.Command, _ []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		useTUI, _ := cmd.Flags().GetBool("tui")

		if useTUI {
			runUpdateTUI(dryRun)
			return
		}
		logger.Log.Info("Running update command...")
		runUpdate(dryRun, nil)
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().Bool("dry-run", false, "Crawl and merge without saving a snapshot")
	updateCmd.Flags().Bool("tui", false, "Show live session progress")
}

// runUpdate executes one full catalog-update session. progress may be nil.
func runUpdate(dryRun bool, progress chan<- crawler.Progress) {
	if progress != nil {
		defer close(progress)
	}

	cfg, cat := bootstrap(".")

	session := db.Session{StartedAt: time.Now(), DryRun: dryRun}
	if err := db.DB.Create(&session).Error; err != nil {
		logger.Log.Warnw("Failed to record session start", zap.Error(err))
	}

	up := catalog.NewUpdater(cat, logger.Log)
	up.SetReviewDate(session.StartedAt)

	dl := crawler.NewHTTPDownloader(cfg.UserAgent, cfg.TempDir())
	cr := crawler.New(cfg, dl, up, logger.Log)
	if progress != nil {
		cr.SetProgress(progress)
	}
	cr.OnFetchFailure = func(modID int64, url string, err error) {
		failure := db.FetchFailure{
			SessionID: session.ID,
			ModID:     modID,
			URL:       url,
			Reason:    err.Error(),
		}
		if dbErr := db.DB.Create(&failure).Error; dbErr != nil {
			logger.Log.Warnw("Failed to record fetch failure", zap.Error(dbErr))
		}
	}

	reportLastSession(session.ID)

	if err := cr.Run(); err != nil {
		logger.Log.Errorw("Crawl session failed", zap.Error(err))
	}
	stats := cr.Stats()

	switch {
	case dryRun:
		logger.Log.Infof("Dry run: %d change-note lines would be written.", up.Notes().Len())
	case up.Notes().IsEmpty():
		logger.Log.Info("No effective changes this session, keeping current snapshot.")
	default:
		if err := store.Save(cat, cfg.CatalogDir, up.Notes()); err != nil {
			logger.Log.Errorw("Failed to save catalog snapshot; prior snapshot remains valid",
				zap.Error(err))
		} else {
			session.CatalogVersion = cat.Version
			logger.Log.Infow("Catalog snapshot saved",
				zap.Int("version", cat.Version),
				zap.String("file", store.SnapshotName(cat.Version)),
			)
		}
	}

	session.FinishedAt = time.Now()
	session.PagesFetched = stats.PagesFetched
	session.ModsSeen = stats.ModsSeen
	session.DetailPages = stats.DetailPages
	session.DownloadFailures = stats.DownloadFailures
	session.Aborted = stats.Aborted
	if err := db.DB.Save(&session).Error; err != nil {
		logger.Log.Warnw("Failed to record session end", zap.Error(err))
	}

	logger.Log.Infof("Finished. %d listing pages, %d mods seen, %d detail pages, %d failures.",
		stats.PagesFetched, stats.ModsSeen, stats.DetailPages, stats.DownloadFailures)
}

// reportLastSession logs what the previous run did, for operator context.
func reportLastSession(currentID uint) {
	var last db.Session
	result := db.DB.Where("id <> ?", currentID).Order("started_at DESC").First(&last)
	if result.Error != nil {
		return
	}
	logger.Log.Infow("Previous session",
		zap.Time("started", last.StartedAt),
		zap.Int("catalog_version", last.CatalogVersion),
		zap.Int("mods_seen", last.ModsSeen),
		zap.Int("failures", last.DownloadFailures),
		zap.Bool("aborted", last.Aborted),
	)
}
