package scrape

import "strings"

// Marker substrings of the workshop page format. The upstream pages are
// stable but have no real grammar; every field's value sits between a
// field-specific left and right delimiter on a marked line.
const (
	// Listing pages. The identifying line carries both the mod ID and the
	// display name; the author link follows two lines later.
	listingEntryMarker = "workshopItemTitle"
	modIDLeft          = "filedetails/?id="
	modIDRight         = "&"
	listingNameLeft    = `ellipsis">`
	listingNameRight   = "</div>"

	authorMarker    = "workshop_author_link"
	authorIDLeft    = "steamcommunity.com/profiles/"
	authorURLLeft   = "steamcommunity.com/id/"
	authorKeyRight  = "/myworkshopfiles"
	authorNameLeft  = `">`
	authorNameRight = "</a>"

	// Detail pages.
	canonicalMarker      = `rel="canonical"`
	detailRemovedMarker  = "There was a problem accessing the item"
	detailUnlistedMarker = "Current visibility: Unlisted"
	detailNameMarker     = `<div class="workshopItemTitle">`
	detailNameLeft       = `workshopItemTitle">`
	detailNameRight      = "</div>"
	versionTagMarker     = "requiredtags[]="
	versionTagLeft       = "requiredtags[]="
	versionTagRight      = `"`
	statsMarker          = "detailsStatsContainerRight"
	statValueLeft        = `detailsStatRight">`
	statValueRight       = "</div>"
	dlcMarker            = "requiredDLCItem"
	dlcIDLeft            = "store.steampowered.com/app/"
	dlcIDRight           = `"`
	requiredModMarker    = "workshop/filedetails/?id="
	requiredModIDLeft    = "workshop/filedetails/?id="
	requiredModIDRight   = `"`
	descriptionMarker    = `workshopItemDescription" id="highlightContent">`
	descriptionEnd       = "</div>"
)

// requiredModBlockLines is how many lines each required-mod block spans; the
// ID line is followed by the open div, the name, and the closing tag.
const requiredModBlockLines = 4

// maxRequiredModBlocks bounds the required-mod scan so a malformed page
// cannot spin the state machine forever.
const maxRequiredModBlocks = 50

// textBetween extracts the substring between the first occurrence of left
// and the next occurrence of right. The second return is false when either
// delimiter is missing.
func textBetween(line, left, right string) (string, bool) {
	start := strings.Index(line, left)
	if start < 0 {
		return "", false
	}
	rest := line[start+len(left):]
	end := strings.Index(rest, right)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}
