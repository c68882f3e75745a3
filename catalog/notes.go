package catalog

import (
	"fmt"
	"strings"
	"time"
)

// ChangeNotes accumulates one human-readable line per effective mutation made
// during an update session. The session owns the accumulator; nothing here is
// global state.
type ChangeNotes struct {
	reviewDate time.Time
	added      []string
	changes    []string
}

func NewChangeNotes() *ChangeNotes {
	return &ChangeNotes{}
}

// SetReviewDate stamps the session-wide "as of" time used in the rendered
// document header.
func (n *ChangeNotes) SetReviewDate(t time.Time) {
	n.reviewDate = t
}

// Added records a line for a brand-new entity.
func (n *ChangeNotes) Added(format string, args ...any) {
	n.added = append(n.added, fmt.Sprintf(format, args...))
}

// Changed records a line for an effective field mutation.
func (n *ChangeNotes) Changed(format string, args ...any) {
	n.changes = append(n.changes, fmt.Sprintf(format, args...))
}

// Len is the total number of recorded lines.
func (n *ChangeNotes) Len() int {
	return len(n.added) + len(n.changes)
}

// IsEmpty reports whether the session produced no effective change at all.
func (n *ChangeNotes) IsEmpty() bool {
	return n.Len() == 0
}

// Render produces the plain-text change-notes document written next to each
// snapshot.
func (n *ChangeNotes) Render(version int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Change notes for catalog version %d", version)
	if !n.reviewDate.IsZero() {
		fmt.Fprintf(&b, ", reviewed %s", n.reviewDate.Format("2006-01-02"))
	}
	b.WriteString("\n")

	if len(n.added) > 0 {
		b.WriteString("\nADDED\n")
		for _, line := range n.added {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}
	if len(n.changes) > 0 {
		b.WriteString("\nCHANGES\n")
		for _, line := range n.changes {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}
	if n.IsEmpty() {
		b.WriteString("\nNo effective changes this session.\n")
	}
	return b.String()
}
