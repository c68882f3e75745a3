package scrape

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ListingEntry is the set of facts one listing-page entry yields.
type ListingEntry struct {
	ModID      int64
	Name       string
	AuthorID   int64  // steam profile id, 0 when the author uses a custom url
	AuthorURL  string // custom url slug, "" when the author has a numeric id
	AuthorName string
}

// ExtractListing scans one listing page and returns every recognized mod
// entry, in page order. Unrecognizable entries are logged and skipped; they
// never abort the scan. An empty result means the page is past the end of
// the listing.
func ExtractListing(text string, log *zap.SugaredLogger) []ListingEntry {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	cur := NewCursor(text)
	var entries []ListingEntry
	for cur.More() {
		line := cur.Next()
		if !containsMarker(line, listingEntryMarker) {
			continue
		}
		entry, ok := parseListingEntry(line, cur, log)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func parseListingEntry(line string, cur *Cursor, log *zap.SugaredLogger) (ListingEntry, bool) {
	idText, ok := textBetween(line, modIDLeft, modIDRight)
	if !ok {
		log.Warnw("Listing entry without mod id", zap.String("line", truncate(line)))
		return ListingEntry{}, false
	}
	id, err := strconv.ParseInt(idText, 10, 64)
	if err != nil {
		log.Warnw("Listing entry with unparseable mod id", zap.String("id", idText))
		return ListingEntry{}, false
	}
	name, ok := textBetween(line, listingNameLeft, listingNameRight)
	if !ok {
		log.Warnw("Listing entry without name", zap.Int64("id", id))
		return ListingEntry{}, false
	}

	entry := ListingEntry{ModID: id, Name: name}

	// The author link sits two lines below the identifying line.
	cur.Skip(1)
	authorLine := cur.Next()
	if !containsMarker(authorLine, authorMarker) {
		log.Warnw("Listing entry without author line", zap.Int64("id", id))
		return entry, true // the mod itself is still usable
	}
	fillAuthor(authorLine, &entry.AuthorID, &entry.AuthorURL, &entry.AuthorName)
	return entry, true
}

// fillAuthor extracts author identity from a workshop author link line.
// Exactly one of the numeric ID and the custom URL will be present.
func fillAuthor(line string, id *int64, url *string, name *string) {
	if idText, ok := textBetween(line, authorIDLeft, authorKeyRight); ok {
		if n, err := strconv.ParseInt(idText, 10, 64); err == nil {
			*id = n
		}
	} else if slug, ok := textBetween(line, authorURLLeft, authorKeyRight); ok {
		*url = slug
	}
	if n, ok := textBetween(line, authorNameLeft, authorNameRight); ok {
		*name = n
	}
}

func containsMarker(line, marker string) bool {
	return strings.Contains(line, marker)
}

func truncate(line string) string {
	const max = 120
	if len(line) <= max {
		return line
	}
	return line[:max] + "..."
}
