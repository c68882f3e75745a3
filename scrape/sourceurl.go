package scrape

import "strings"

// Well-known accounts whose repositories mods link instead of their own
// source (library and placeholder repos). Any other candidate beats these,
// and one of these is never kept as the final answer.
var placeholderAccounts = []string{
	"github.com/pardeike",
	"github.com/unlimitedhugs",
}

// Low-signal path segments: links into issue trackers, wikis, docs, readmes,
// guides and translation pages lose against a plain repository link.
var lowSignalSegments = []string{
	"/issues",
	"/wiki",
	"/docs",
	"readme",
	"guide",
	"translation",
}

// sourcePicker keeps a single current-best repository candidate per page.
// The heuristic is best-effort on purpose; wrong picks are what the manual
// exclusion mechanism is for. Note the deliberate asymmetry: the stoplist
// comparison keeps the later candidate, the plain tie-break keeps the
// earlier one.
type sourcePicker struct {
	best      string
	discarded []string
}

func newSourcePicker() *sourcePicker {
	return &sourcePicker{}
}

// offer compares one candidate, in page order, against the current best.
func (p *sourcePicker) offer(candidate string) {
	if candidate == "" {
		return
	}
	if p.best == "" {
		p.best = candidate
		return
	}
	if strings.EqualFold(p.best, candidate) {
		// Duplicates vanish silently; they are not worth a diagnostic.
		return
	}
	switch {
	case isPlaceholder(p.best) && !isPlaceholder(candidate):
		p.discard(p.best)
		p.best = candidate
	case isPlaceholder(candidate):
		p.discard(candidate)
	case isLowSignal(p.best) && !isLowSignal(candidate):
		p.discard(p.best)
		p.best = candidate
	case isLowSignal(candidate) && !isLowSignal(p.best):
		p.discard(candidate)
	default:
		p.discard(candidate)
	}
}

// final returns the surviving candidate and everything discarded along the
// way. A placeholder that was the only link on the page is dropped here.
func (p *sourcePicker) final() (string, []string) {
	if isPlaceholder(p.best) {
		p.best = ""
	}
	return p.best, p.discarded
}

func (p *sourcePicker) discard(url string) {
	p.discarded = append(p.discarded, url)
}

func isPlaceholder(url string) bool {
	lower := strings.ToLower(url)
	for _, account := range placeholderAccounts {
		if strings.Contains(lower, account) {
			return true
		}
	}
	return false
}

func isLowSignal(url string) bool {
	path := strings.ToLower(url)
	if i := strings.Index(path, "://"); i >= 0 {
		path = path[i+3:]
	}
	if i := strings.Index(path, "/"); i >= 0 {
		path = path[i:]
	} else {
		path = ""
	}
	for _, segment := range lowSignalSegments {
		if strings.Contains(path, segment) {
			return true
		}
	}
	return false
}

// repositoryHosts are the only hosts considered source-repository links.
var repositoryHosts = []string{
	"https://github.com/",
	"https://gitlab.com/",
}

// urlTerminators end an embedded link inside markup or BBCode.
const urlTerminators = `"'<>] ` + "\t"

// repositoryLinks extracts every candidate repository URL embedded in one
// description line, in page order.
func repositoryLinks(line string) []string {
	var out []string
	rest := line
	for {
		idx, host := -1, ""
		for _, h := range repositoryHosts {
			if i := strings.Index(rest, h); i >= 0 && (idx < 0 || i < idx) {
				idx, host = i, h
			}
		}
		if idx < 0 {
			return out
		}
		tail := rest[idx:]
		end := strings.IndexAny(tail, urlTerminators)
		if end < 0 {
			end = len(tail)
		}
		url := strings.TrimRight(tail[:end], "/.")
		if len(url) > len(host) {
			out = append(out, url)
		}
		rest = rest[idx+end:]
	}
}
