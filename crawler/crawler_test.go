package crawler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"workshop-catalog-updater/catalog"
	"workshop-catalog-updater/config"
)

// fakeDownloader serves canned pages from a map. Every fetched URL is
// recorded so tests can assert fetch counts and ordering.
type fakeDownloader struct {
	t        *testing.T
	pages    map[string]string
	fetched  []string
	tempPath string
}

func newFakeDownloader(t *testing.T) *fakeDownloader {
	return &fakeDownloader{
		t:        t,
		pages:    make(map[string]string),
		tempPath: filepath.Join(t.TempDir(), "download.tmp"),
	}
}

func (d *fakeDownloader) Fetch(url string) error {
	d.fetched = append(d.fetched, url)
	body, ok := d.pages[url]
	if !ok {
		return fmt.Errorf("request for %s failed: status 404", url)
	}
	if err := os.WriteFile(d.tempPath, []byte(body), 0644); err != nil {
		d.t.Fatalf("fake downloader write: %v", err)
	}
	return nil
}

func (d *fakeDownloader) TempFile() string { return d.tempPath }

func (d *fakeDownloader) DeleteTemp() error {
	if err := os.Remove(d.tempPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// fetchCount counts fetches of URLs containing the fragment.
func (d *fakeDownloader) fetchCount(fragment string) int {
	n := 0
	for _, url := range d.fetched {
		if strings.Contains(url, fragment) {
			n++
		}
	}
	return n
}

func testConfig() config.Config {
	return config.Config{
		SteamBaseURL:           "https://steamcommunity.test",
		AppID:                  294100,
		GameVersion:            "1.5",
		GameVersionTags:        "1.5",
		MaxListingPages:        10,
		DownloadFailureLimit:   3,
		AuthorRetirementMonths: 24,
	}
}

const listingBase = "https://steamcommunity.test/workshop/browse/?appid=294100&browsesort=recentlyupdated&section=readytouseitems&requiredtags[]=1.5"

func listingURL(page int) string {
	return fmt.Sprintf("%s&p=%d", listingBase, page)
}

func incompatibleListingURL(page int) string {
	return fmt.Sprintf("%s&requiredtags[]=Incompatible&p=%d", listingBase, page)
}

func detailURL(id int64) string {
	return fmt.Sprintf("https://steamcommunity.test/sharedfiles/filedetails/?id=%d", id)
}

func listingPage(entries ...[2]string) string {
	var b strings.Builder
	b.WriteString("<html>\n<body>\n")
	for _, e := range entries {
		fmt.Fprintf(&b, `<a href="https://steamcommunity.com/sharedfiles/filedetails/?id=%s&searchtext="><div class="workshopItemTitle ellipsis">%s</div></a>`+"\n", e[0], e[1])
		b.WriteString("<div class=\"workshopItemSubscription\"></div>\n")
		fmt.Fprintf(&b, `<a class="workshop_author_link" href="https://steamcommunity.com/id/author-of-%s/myworkshopfiles/?appid=294100">Author %s</a>`+"\n", e[0], e[0])
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func detailPage(id int64, name string, extra ...string) string {
	lines := []string{
		"<html>", "<body>",
		fmt.Sprintf(`<link rel="canonical" href="https://steamcommunity.com/sharedfiles/filedetails/?id=%d">`, id),
		fmt.Sprintf(`<div class="workshopItemTitle">%s</div>`, name),
		`<a href="?requiredtags[]=1.5">1.5</a>`,
		`<div class="detailsStatsContainerRight">`,
		`<div class="detailsStatRight">1.2 MB</div>`,
		`<div class="detailsStatRight">18 Oct, 2020 @ 11:53am</div>`,
		`<div class="detailsStatRight">14 Aug, 2023 @ 3:36pm</div>`,
		fmt.Sprintf(`<div class="workshopItemDescription" id="highlightContent">A perfectly ordinary description of %s, long enough to count as real.</div>`, name),
	}
	lines = append(lines, extra...)
	lines = append(lines, "</body>", "</html>")
	return strings.Join(lines, "\n")
}

func emptyPage() string {
	return "<html>\n<body>\n</body>\n</html>\n"
}

// newTestCrawler wires a crawler over an empty catalog and the fake
// downloader. The incompatible listing is pre-stubbed empty since most tests
// do not care about it.
func newTestCrawler(t *testing.T, dl *fakeDownloader) (*Crawler, *catalog.Updater) {
	t.Helper()
	dl.pages[incompatibleListingURL(1)] = emptyPage()
	up := catalog.NewUpdater(catalog.New("1.5"), nil)
	return New(testConfig(), dl, up, nil), up
}

func TestRunListingThenDetail(t *testing.T) {
	dl := newFakeDownloader(t)
	dl.pages[listingURL(1)] = listingPage([2]string{"1000001", "Alpha Mod"}, [2]string{"1000002", "Beta Mod"})
	dl.pages[listingURL(2)] = listingPage([2]string{"1000003", "Gamma Mod"})
	dl.pages[listingURL(3)] = emptyPage()
	for id, name := range map[int64]string{1000001: "Alpha Mod", 1000002: "Beta Mod", 1000003: "Gamma Mod"} {
		dl.pages[detailURL(id)] = detailPage(id, name)
	}
	c, up := newTestCrawler(t, dl)

	if err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	stats := c.Stats()
	if stats.ModsSeen != 3 {
		t.Errorf("ModsSeen = %d, want 3", stats.ModsSeen)
	}
	// two populated pages plus the empty probe, plus the empty incompatible probe
	if stats.PagesFetched != 4 {
		t.Errorf("PagesFetched = %d, want 4", stats.PagesFetched)
	}
	if stats.DetailPages != 3 {
		t.Errorf("DetailPages = %d, want 3", stats.DetailPages)
	}
	if got := dl.fetchCount("&p=4"); got != 0 {
		t.Errorf("pagination did not stop after the empty page, fetched page 4 %d times", got)
	}

	// every detail fetch must come after every listing fetch
	lastListing, firstDetail := -1, len(dl.fetched)
	for i, url := range dl.fetched {
		if strings.Contains(url, "workshop/browse") && i > lastListing {
			lastListing = i
		}
		if strings.Contains(url, "sharedfiles/filedetails") && i < firstDetail {
			firstDetail = i
		}
	}
	if firstDetail < lastListing {
		t.Error("a detail page was fetched before the listing phase finished")
	}

	m := up.Catalog().GetMod(1000001)
	if m == nil {
		t.Fatal("mod 1000001 missing from catalog")
	}
	if m.GameVersion != "1.5" {
		t.Errorf("GameVersion = %q", m.GameVersion)
	}
	if m.HasStatus(catalog.StatusUnlisted) {
		t.Error("listed mod flagged unlisted")
	}
	if a := up.Catalog().GetAuthor(0, "author-of-1000001"); a == nil {
		t.Error("listing author not recorded")
	}
}

func TestRunIncompatibleListing(t *testing.T) {
	dl := newFakeDownloader(t)
	dl.pages[listingURL(1)] = emptyPage()
	dl.pages[incompatibleListingURL(1)] = listingPage([2]string{"1000009", "Broken Mod"})
	dl.pages[incompatibleListingURL(2)] = emptyPage()
	dl.pages[detailURL(1000009)] = detailPage(1000009, "Broken Mod")
	up := catalog.NewUpdater(catalog.New("1.5"), nil)
	c := New(testConfig(), dl, up, nil)

	if err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	m := up.Catalog().GetMod(1000009)
	if m == nil {
		t.Fatal("mod missing")
	}
	if m.Stability != catalog.StabilityIncompatible {
		t.Errorf("Stability = %v, want incompatible", m.Stability)
	}
}

func TestDetailPhaseUnlistedFromSeenSet(t *testing.T) {
	dl := newFakeDownloader(t)
	dl.pages[listingURL(1)] = listingPage([2]string{"1000001", "Listed Mod"})
	dl.pages[listingURL(2)] = emptyPage()
	dl.pages[detailURL(1000001)] = detailPage(1000001, "Listed Mod")
	dl.pages[detailURL(1000002)] = detailPage(1000002, "Ghost Mod")
	c, up := newTestCrawler(t, dl)

	// a mod carried over from a previous session that the listing no longer shows
	up.AddMod(1000002, "Ghost Mod", false)

	if err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if m := up.Catalog().GetMod(1000001); m.HasStatus(catalog.StatusUnlisted) {
		t.Error("listed mod flagged unlisted")
	}
	if m := up.Catalog().GetMod(1000002); !m.HasStatus(catalog.StatusUnlisted) {
		t.Error("mod absent from every listing not flagged unlisted")
	}
}

func TestDetailPhaseRemoved(t *testing.T) {
	dl := newFakeDownloader(t)
	dl.pages[listingURL(1)] = emptyPage()
	dl.pages[detailURL(1000005)] = "<html>\n<body>\nThere was a problem accessing the item.\n</body>\n</html>"
	c, up := newTestCrawler(t, dl)
	up.AddMod(1000005, "Vanished Mod", false)

	if err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m := up.Catalog().GetMod(1000005); !m.HasStatus(catalog.StatusRemoved) {
		t.Error("removed mod not flagged")
	}
}

func TestDetailPhaseRetriesInconsistentPage(t *testing.T) {
	dl := newFakeDownloader(t)
	dl.pages[listingURL(1)] = listingPage([2]string{"1000001", "Flaky Mod"})
	dl.pages[listingURL(2)] = emptyPage()
	// page that claims a different mod id than the one requested
	dl.pages[detailURL(1000001)] = detailPage(9999999, "Flaky Mod")
	c, _ := newTestCrawler(t, dl)

	if err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := dl.fetchCount("id=1000001"); got != 2 {
		t.Errorf("inconsistent page fetched %d times, want exactly 2", got)
	}
}

func TestDetailPhaseFailureLimitAborts(t *testing.T) {
	dl := newFakeDownloader(t)
	dl.pages[listingURL(1)] = listingPage(
		[2]string{"1000001", "One"}, [2]string{"1000002", "Two"},
		[2]string{"1000003", "Three"}, [2]string{"1000004", "Four"},
	)
	dl.pages[listingURL(2)] = emptyPage()
	// no detail pages stubbed: every detail fetch fails
	c, up := newTestCrawler(t, dl)

	var reported []int64
	c.OnFetchFailure = func(modID int64, url string, err error) {
		reported = append(reported, modID)
	}

	if err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	stats := c.Stats()
	if !stats.Aborted {
		t.Error("session not marked aborted")
	}
	if stats.DownloadFailures != 3 {
		t.Errorf("DownloadFailures = %d, want the limit of 3", stats.DownloadFailures)
	}
	if len(reported) != 3 {
		t.Errorf("OnFetchFailure called %d times, want 3", len(reported))
	}
	// the fourth mod was never attempted
	if got := dl.fetchCount("id=1000004"); got != 0 {
		t.Errorf("detail phase continued past the failure limit, fetched mod four %d times", got)
	}
	// listing-phase data survives the abort
	if m := up.Catalog().GetMod(1000001); m == nil || m.Name != "One" {
		t.Error("listing-phase state lost after abort")
	}
}

func TestSecondIdenticalSessionIsQuiet(t *testing.T) {
	pages := func(dl *fakeDownloader) {
		dl.pages[listingURL(1)] = listingPage([2]string{"1000001", "Stable Mod"})
		dl.pages[listingURL(2)] = emptyPage()
		dl.pages[detailURL(1000001)] = detailPage(1000001, "Stable Mod")
	}

	dl := newFakeDownloader(t)
	pages(dl)
	c, up := newTestCrawler(t, dl)
	if err := c.Run(); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if up.Notes().IsEmpty() {
		t.Fatal("first session produced no notes")
	}

	dl2 := newFakeDownloader(t)
	pages(dl2)
	dl2.pages[incompatibleListingURL(1)] = emptyPage()
	up2 := catalog.NewUpdater(up.Catalog(), nil)
	c2 := New(testConfig(), dl2, up2, nil)
	if err := c2.Run(); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !up2.Notes().IsEmpty() {
		t.Errorf("second identical session produced notes:\n%s", up2.Notes().Render(2))
	}
}

func TestRetryOnce(t *testing.T) {
	t.Run("consistent result returned directly", func(t *testing.T) {
		calls := 0
		got, err := retryOnce(
			func() (int, error) { calls++; return 7, nil },
			func(int) bool { return true },
		)
		if err != nil || got != 7 || calls != 1 {
			t.Errorf("got %d, err %v, calls %d", got, err, calls)
		}
	})

	t.Run("inconsistent result fetched again", func(t *testing.T) {
		calls := 0
		got, err := retryOnce(
			func() (int, error) { calls++; return calls, nil },
			func(v int) bool { return v == 2 },
		)
		if err != nil || got != 2 || calls != 2 {
			t.Errorf("got %d, err %v, calls %d", got, err, calls)
		}
	})

	t.Run("failed retry keeps the first result", func(t *testing.T) {
		calls := 0
		got, err := retryOnce(
			func() (int, error) {
				calls++
				if calls == 2 {
					return 0, fmt.Errorf("boom")
				}
				return 1, nil
			},
			func(int) bool { return false },
		)
		if err != nil || got != 1 {
			t.Errorf("got %d, err %v, want the first result without error", got, err)
		}
	})

	t.Run("first error propagates", func(t *testing.T) {
		_, err := retryOnce(
			func() (int, error) { return 0, fmt.Errorf("boom") },
			func(int) bool { return true },
		)
		if err == nil {
			t.Error("error swallowed")
		}
	})
}
