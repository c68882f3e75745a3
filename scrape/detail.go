package scrape

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DetailFacts is everything one detail page yields, each field unset when the
// page did not carry it. The crawler decides what to do with the facts; the
// extractor never touches the catalog.
type DetailFacts struct {
	PageModID int64 // the id the page claims for itself, 0 when missing
	Removed   bool  // the item is gone from the workshop
	Unlisted  bool  // the page exists but carries the unlisted banner

	AuthorID   int64
	AuthorURL  string
	AuthorName string

	Name        string
	GameVersion string
	Published   time.Time
	Updated     time.Time

	RequiredDLC  []string
	RequiredMods []int64

	DescriptionLength int
	SourceURL         string
	DiscardedURLs     []string
}

// NoDescription classifies the page's visible description against the mod's
// name: anything not meaningfully longer than the name counts as missing.
func (f DetailFacts) NoDescription(name string) bool {
	return f.DescriptionLength <= len(name)+5
}

// ExtractDetail scans one detail page front to back. Year-less workshop
// dates are resolved against reviewDate's year.
func ExtractDetail(text string, reviewDate time.Time, log *zap.SugaredLogger) DetailFacts {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	var facts DetailFacts
	picker := newSourcePicker()
	cur := NewCursor(text)
	requiredBlocks := 0

	for cur.More() {
		line := cur.Next()
		switch {
		case containsMarker(line, detailRemovedMarker):
			facts.Removed = true
			return facts

		case containsMarker(line, canonicalMarker):
			if idText, ok := textBetween(line, modIDLeft, `"`); ok {
				if n, err := strconv.ParseInt(idText, 10, 64); err == nil {
					facts.PageModID = n
				}
			}

		case containsMarker(line, detailUnlistedMarker):
			facts.Unlisted = true

		case containsMarker(line, authorMarker):
			fillAuthor(line, &facts.AuthorID, &facts.AuthorURL, &facts.AuthorName)

		case containsMarker(line, detailNameMarker):
			if name, ok := textBetween(line, detailNameLeft, detailNameRight); ok {
				facts.Name = name
			}

		case facts.GameVersion == "" && containsMarker(line, versionTagMarker):
			if tag, ok := textBetween(line, versionTagLeft, versionTagRight); ok {
				facts.GameVersion = tag
			}

		case containsMarker(line, statsMarker):
			parseStats(cur, reviewDate, &facts, log)

		case containsMarker(line, dlcMarker):
			if id, ok := textBetween(line, dlcIDLeft, dlcIDRight); ok {
				facts.RequiredDLC = append(facts.RequiredDLC, id)
			}

		case containsMarker(line, requiredModMarker):
			if requiredBlocks >= maxRequiredModBlocks {
				log.Warnw("Required-mod scan bounded, ignoring further blocks",
					zap.Int64("mod", facts.PageModID))
				continue
			}
			requiredBlocks++
			if idText, ok := textBetween(line, requiredModIDLeft, requiredModIDRight); ok {
				if n, err := strconv.ParseInt(idText, 10, 64); err == nil {
					facts.RequiredMods = append(facts.RequiredMods, n)
				}
			}
			// remaining lines of the block carry only the display name
			cur.Skip(requiredModBlockLines - 1)

		case containsMarker(line, descriptionMarker):
			parseDescription(line, cur, picker, &facts)
		}
	}

	facts.SourceURL, facts.DiscardedURLs = picker.final()
	return facts
}

// parseStats consumes the three stat lines after the stats marker: file size
// (ignored), publish date, and update date. The update line is absent for
// mods never updated after publishing.
func parseStats(cur *Cursor, reviewDate time.Time, facts *DetailFacts, log *zap.SugaredLogger) {
	stats := cur.Take(3)
	if len(stats) < 2 {
		log.Warnw("Stats block too short", zap.Int("lines", len(stats)))
		return
	}
	// stats[0] is the file size
	if posted, ok := textBetween(stats[1], statValueLeft, statValueRight); ok {
		if t, err := parseWorkshopDate(posted, reviewDate.Year()); err == nil {
			facts.Published = t
		} else {
			log.Warnw("Unparseable publish date", zap.String("value", posted))
		}
	}
	if len(stats) < 3 {
		return
	}
	if updated, ok := textBetween(stats[2], statValueLeft, statValueRight); ok {
		if t, err := parseWorkshopDate(updated, reviewDate.Year()); err == nil {
			facts.Updated = t
		}
	}
}

// parseDescription collects the visible description text and offers every
// embedded repository link to the source-URL picker.
func parseDescription(first string, cur *Cursor, picker *sourcePicker, facts *DetailFacts) {
	collect := func(line string) {
		facts.DescriptionLength += len(stripTags(line))
		for _, cand := range repositoryLinks(line) {
			picker.offer(cand)
		}
	}

	if body, ok := textBetween(first, descriptionMarker, descriptionEnd); ok {
		collect(body)
		return
	}
	if idx := strings.Index(first, descriptionMarker); idx >= 0 {
		collect(first[idx+len(descriptionMarker):])
	}
	for cur.More() {
		line := cur.Peek()
		if end := strings.Index(line, descriptionEnd); end >= 0 {
			collect(line[:end])
			cur.Skip(1)
			return
		}
		collect(cur.Next())
	}
}

// stripTags removes HTML-ish tag runs so only visible text is measured.
func stripTags(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Workshop date formats; the second form omits the year for dates within the
// current year.
var workshopDateLayouts = []string{
	"2 Jan, 2006 @ 3:04pm",
	"2 Jan, 2006",
}

var workshopYearlessLayouts = []string{
	"2 Jan @ 3:04pm",
	"2 Jan",
}

func parseWorkshopDate(s string, fallbackYear int) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range workshopDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else if firstErr == nil {
			firstErr = err
		}
	}
	for _, layout := range workshopYearlessLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.AddDate(fallbackYear, 0, 0), nil
		}
	}
	return time.Time{}, firstErr
}
