package scrape

import "strings"

// Cursor is a forward-only view over the lines of one downloaded page. The
// extractor state machines express their transitions as peeks and bounded
// takes instead of re-reading the raw text.
type Cursor struct {
	lines []string
	pos   int
}

// NewCursor splits the page into lines, tolerating both \n and \r\n endings.
func NewCursor(text string) *Cursor {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return &Cursor{lines: lines}
}

// More reports whether any line remains.
func (c *Cursor) More() bool {
	return c.pos < len(c.lines)
}

// Peek returns the current line without consuming it, "" at end of page.
func (c *Cursor) Peek() string {
	if !c.More() {
		return ""
	}
	return c.lines[c.pos]
}

// Next consumes and returns the current line, "" at end of page.
func (c *Cursor) Next() string {
	line := c.Peek()
	if c.More() {
		c.pos++
	}
	return line
}

// Skip consumes up to n lines.
func (c *Cursor) Skip(n int) {
	c.pos += n
	if c.pos > len(c.lines) {
		c.pos = len(c.lines)
	}
}

// Take consumes and returns up to n lines; short at end of page.
func (c *Cursor) Take(n int) []string {
	var out []string
	for range n {
		if !c.More() {
			break
		}
		out = append(out, c.Next())
	}
	return out
}
