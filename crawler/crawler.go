package crawler

import (
	"fmt"
	"os"
	"time"

	"workshop-catalog-updater/catalog"
	"workshop-catalog-updater/config"
	"workshop-catalog-updater/scrape"

	"go.uber.org/zap"
)

// Progress is one status update pushed to the TUI while a session runs.
type Progress struct {
	Type    string // "phase", "page", "mod", "error", "done"
	Message string
	Page    int
	ModID   int64
}

// Stats summarizes what a session did, for logging and the session journal.
type Stats struct {
	PagesFetched     int
	ModsSeen         int
	DetailPages      int
	DownloadFailures int
	Aborted          bool
}

// Crawler drives one full catalog-update session: the listing phase over
// every configured listing URL, then the detail phase over every known mod.
// It owns no catalog state of its own; all mutation goes through the Updater.
type Crawler struct {
	cfg      config.Config
	dl       Downloader
	up       *catalog.Updater
	log      *zap.SugaredLogger
	progress chan<- Progress

	// seen tracks which mods the listing phase confirmed present this
	// session; the detail phase's unlisted decision depends on it.
	seen  map[int64]bool
	stats Stats

	// OnFetchFailure, when set, is told about every permanent detail-page
	// download failure (the session journal records them).
	OnFetchFailure func(modID int64, url string, err error)
}

// New creates a crawler for one session.
func New(cfg config.Config, dl Downloader, up *catalog.Updater, log *zap.SugaredLogger) *Crawler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Crawler{
		cfg:  cfg,
		dl:   dl,
		up:   up,
		log:  log,
		seen: make(map[int64]bool),
	}
}

// SetProgress attaches a progress channel for the TUI.
func (c *Crawler) SetProgress(ch chan<- Progress) { c.progress = ch }

// Stats returns the session counters gathered so far.
func (c *Crawler) Stats() Stats { return c.stats }

func (c *Crawler) emit(p Progress) {
	if c.progress != nil {
		c.progress <- p
	}
}

// Run executes the listing phase, then the detail phase, then the author
// retirement pass. The listing phase always finishes before any detail page
// is fetched because the unlisted decision depends on it.
func (c *Crawler) Run() error {
	if c.up.ReviewDate().IsZero() {
		c.up.SetReviewDate(time.Now())
	}
	defer func() {
		if err := c.dl.DeleteTemp(); err != nil {
			c.log.Warnw("Failed to delete temp download", zap.Error(err))
		}
	}()

	c.emit(Progress{Type: "phase", Message: "Scanning listing pages"})
	c.runListingPhase()

	c.emit(Progress{Type: "phase", Message: "Fetching detail pages"})
	c.runDetailPhase()

	c.up.EvaluateRetirement(c.cfg.AuthorRetirementMonths)

	c.emit(Progress{Type: "done"})
	return nil
}

// listingSource is one listing URL plus its incompatible classification.
type listingSource struct {
	URL          string
	Incompatible bool
}

// listingSources builds the session's listing URLs: a regular and an
// incompatible listing per configured game-version tag.
func (c *Crawler) listingSources() []listingSource {
	base := fmt.Sprintf("%s/workshop/browse/?appid=%d&browsesort=recentlyupdated&section=readytouseitems",
		c.cfg.SteamBaseURL, c.cfg.AppID)
	var sources []listingSource
	for _, tag := range c.cfg.VersionTags() {
		sources = append(sources,
			listingSource{URL: fmt.Sprintf("%s&requiredtags[]=%s", base, tag)},
			listingSource{URL: fmt.Sprintf("%s&requiredtags[]=%s&requiredtags[]=Incompatible", base, tag), Incompatible: true},
		)
	}
	if len(sources) == 0 {
		sources = append(sources,
			listingSource{URL: base},
			listingSource{URL: base + "&requiredtags[]=Incompatible", Incompatible: true},
		)
	}
	return sources
}

func (c *Crawler) runListingPhase() {
	for _, src := range c.listingSources() {
		c.crawlListing(src)
	}
}

// crawlListing pages through one listing URL until a page yields zero
// recognized entries (the previous page was the true last one) or the page
// cap is hit.
func (c *Crawler) crawlListing(src listingSource) {
	for page := 1; page <= c.cfg.MaxListingPages; page++ {
		url := fmt.Sprintf("%s&p=%d", src.URL, page)
		text, err := c.fetchPage(url)
		if err != nil {
			c.log.Warnw("Listing page download failed, ending this listing",
				zap.String("url", url), zap.Error(err))
			c.emit(Progress{Type: "error", Message: err.Error(), Page: page})
			return
		}
		c.stats.PagesFetched++
		entries := scrape.ExtractListing(text, c.log)
		if len(entries) == 0 {
			return
		}
		c.emit(Progress{Type: "page", Page: page, Message: fmt.Sprintf("%d mods", len(entries))})
		for _, entry := range entries {
			c.processListingEntry(entry, src.Incompatible)
		}
	}
	c.log.Warnw("Listing truncated at page cap", zap.String("url", src.URL),
		zap.Int("max_pages", c.cfg.MaxListingPages))
}

func (c *Crawler) processListingEntry(entry scrape.ListingEntry, incompatible bool) {
	m := c.up.AddMod(entry.ModID, entry.Name, incompatible)
	if m == nil {
		return
	}
	if !c.seen[entry.ModID] {
		c.seen[entry.ModID] = true
		c.stats.ModsSeen++
	}

	ch := catalog.ModChanges{Name: &entry.Name}
	// The listing a mod appears on forces the incompatible stability on or
	// off; finer stability classifications are curator territory.
	if incompatible {
		ch.Stability = stabilityPtr(catalog.StabilityIncompatible)
	} else if m.Stability == catalog.StabilityIncompatible {
		ch.Stability = stabilityPtr(catalog.StabilityNotReviewed)
	}
	if entry.AuthorID != 0 {
		ch.AuthorID = &entry.AuthorID
	}
	if entry.AuthorURL != "" {
		ch.AuthorURL = &entry.AuthorURL
	}
	c.up.UpdateMod(m, ch, true)
	c.up.GetOrAddAuthor(entry.AuthorID, entry.AuthorURL, entry.AuthorName)
}

// runDetailPhase fetches every non-builtin mod's own page. Failures are
// counted; under the limit the mod is skipped, at the limit the whole phase
// aborts so a systemic outage cannot burn the session mod by mod.
func (c *Crawler) runDetailPhase() {
	mods := c.up.Catalog().Mods
	for _, m := range mods {
		if m.ID.Kind != catalog.KindRegular {
			continue
		}
		id := m.ID.Numeric()
		url := fmt.Sprintf("%s/sharedfiles/filedetails/?id=%d", c.cfg.SteamBaseURL, id)

		// A page whose own ID is missing gets exactly one re-download.
		facts, err := retryOnce(
			func() (scrape.DetailFacts, error) { return c.fetchDetail(url) },
			func(f scrape.DetailFacts) bool { return f.Removed || f.PageModID == id },
		)
		if err != nil {
			c.stats.DownloadFailures++
			c.log.Warnw("Detail page download failed, skipping mod",
				zap.Int64("mod", id), zap.Error(err))
			c.emit(Progress{Type: "error", ModID: id, Message: err.Error()})
			if c.OnFetchFailure != nil {
				c.OnFetchFailure(id, url, err)
			}
			if c.stats.DownloadFailures >= c.cfg.DownloadFailureLimit {
				c.stats.Aborted = true
				c.log.Errorw("Download failure limit reached, aborting detail phase",
					zap.Int("failures", c.stats.DownloadFailures))
				return
			}
			continue
		}
		c.stats.DetailPages++
		c.emit(Progress{Type: "mod", ModID: id, Message: m.Name})
		c.applyDetail(m, facts)
	}
}

func (c *Crawler) fetchPage(url string) (string, error) {
	if err := c.dl.Fetch(url); err != nil {
		return "", err
	}
	data, err := os.ReadFile(c.dl.TempFile())
	if err != nil {
		return "", fmt.Errorf("failed to read downloaded page: %w", err)
	}
	return string(data), nil
}

func (c *Crawler) fetchDetail(url string) (scrape.DetailFacts, error) {
	text, err := c.fetchPage(url)
	if err != nil {
		return scrape.DetailFacts{}, err
	}
	return scrape.ExtractDetail(text, c.up.ReviewDate(), c.log), nil
}

// applyDetail routes one detail page's facts into catalog mutations.
func (c *Crawler) applyDetail(m *catalog.Mod, facts scrape.DetailFacts) {
	id := m.ID.Numeric()

	if facts.Removed {
		c.up.AddStatus(m, catalog.StatusRemoved, true)
		return
	}
	c.up.RemoveStatus(m, catalog.StatusRemoved, true)

	// The page exists; a mod the listing phase never confirmed is unlisted.
	unlisted := facts.Unlisted || !c.seen[id]
	if unlisted {
		c.up.AddStatus(m, catalog.StatusUnlisted, true)
	} else {
		c.up.RemoveStatus(m, catalog.StatusUnlisted, true)
	}

	var ch catalog.ModChanges
	if facts.Name != "" {
		ch.Name = &facts.Name
	}
	// Listed mods already carry author identity from the listing phase; the
	// detail page's author block is only trusted for unlisted ones.
	if unlisted && (facts.AuthorID != 0 || facts.AuthorURL != "") {
		c.up.GetOrAddAuthor(facts.AuthorID, facts.AuthorURL, facts.AuthorName)
		if facts.AuthorID != 0 {
			ch.AuthorID = &facts.AuthorID
		}
		if facts.AuthorURL != "" {
			ch.AuthorURL = &facts.AuthorURL
		}
	}
	if facts.GameVersion != "" {
		ch.GameVersion = &facts.GameVersion
	}
	if !facts.Published.IsZero() {
		ch.Published = &facts.Published
	}
	if !facts.Updated.IsZero() {
		ch.Updated = &facts.Updated
	}
	c.up.UpdateMod(m, ch, true)

	// The mod's latest activity also advances its author's last-seen time.
	lastActivity := facts.Updated
	if lastActivity.IsZero() {
		lastActivity = facts.Published
	}
	if author := c.up.Catalog().GetAuthor(m.AuthorID, m.AuthorURL); author != nil {
		c.up.TouchAuthor(author, lastActivity)
	}

	for _, dlc := range facts.RequiredDLC {
		c.up.AddRequiredDLC(m, dlc, true)
	}
	for _, required := range facts.RequiredMods {
		c.up.AddRequiredMod(m, required, true)
	}

	if facts.NoDescription(m.Name) {
		c.up.AddStatus(m, catalog.StatusNoDescription, true)
	} else {
		c.up.RemoveStatus(m, catalog.StatusNoDescription, true)
	}

	if facts.SourceURL != "" {
		previous := m.SourceURL
		c.up.UpdateMod(m, catalog.ModChanges{SourceURL: &facts.SourceURL}, true)
		if m.SourceURL != previous && len(facts.DiscardedURLs) > 0 {
			c.log.Infow("Source url candidates discarded",
				zap.Int64("mod", id),
				zap.String("chosen", facts.SourceURL),
				zap.Strings("discarded", facts.DiscardedURLs))
		}
	}
}

func stabilityPtr(s catalog.Stability) *catalog.Stability { return &s }
