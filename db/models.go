package db

import (
	"time"

	"gorm.io/gorm"
)

// Session records one catalog-update run in the journal database.
type Session struct {
	gorm.Model
	CatalogVersion   int       // snapshot version the session produced, 0 for dry runs
	StartedAt        time.Time // when the crawl began
	FinishedAt       time.Time // when the crawl ended
	PagesFetched     int       // listing pages downloaded
	ModsSeen         int       // mods confirmed present by the listing phase
	DetailPages      int       // detail pages downloaded and parsed
	DownloadFailures int       // permanent detail-page failures
	Aborted          bool      // detail phase hit the failure limit
	DryRun           bool      // session ran without saving a snapshot
}

// FetchFailure records one permanent detail-page download failure.
type FetchFailure struct {
	gorm.Model
	SessionID uint   // references Session.ID
	ModID     int64  // the mod whose page failed
	URL       string // the detail URL that failed
	Reason    string // downloader error text
}
